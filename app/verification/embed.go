package verification

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x7289DA

// displayEmoji turns a configured custom emoji (name:id or a:name:id) into the
// mention form Discord renders. Unicode emoji are returned as is.
func displayEmoji(emoji string) string {
	switch {
	case !strings.Contains(emoji, ":"):
		return emoji
	case strings.HasPrefix(emoji, "a:") && strings.Count(emoji, ":") == 2:
		return "<" + emoji + ">"
	default:
		return "<:" + emoji + ">"
	}
}

func verificationEmbed(emoji, footer string, now time.Time) *discordgo.MessageEmbed {
	emoji = displayEmoji(emoji)
	return &discordgo.MessageEmbed{
		Title:       "Server Verification",
		Description: fmt.Sprintf("Welcome to the server! To gain access to all channels, please react with the %s emoji below.", emoji),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "How to Verify:",
				Value: fmt.Sprintf("1. Click on the %s reaction below this message.\n2. You will automatically be granted the verified role.", emoji),
			},
		},
		Timestamp: now.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Powered by " + footer,
		},
		Color: embedColor,
	}
}
