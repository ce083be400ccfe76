package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/imAETHER/ReactVerify/app/models"
)

const (
	defaultEmoji  = "✅"
	defaultFooter = "ReactVerify"
)

type Bot struct {
	Token        string
	LivenessPort string
	EventTimeout time.Duration
}

func (b *Bot) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Discord bot token",
			Category:    "Bot",
			Sources:     cli.EnvVars("DISCORD_TOKEN"),
			Destination: &b.Token,
		},
		&cli.StringFlag{
			Name:        "liveness-port",
			Usage:       "Port answering liveness probes",
			Category:    "Bot",
			Value:       "3001",
			Sources:     cli.EnvVars("PORT"),
			Destination: &b.LivenessPort,
		},
		&cli.DurationFlag{
			Name:        "event-timeout",
			Usage:       "Time budget for handling one reaction",
			Category:    "Bot",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("EVENT_TIMEOUT"),
			Destination: &b.EventTimeout,
		},
	}
}

func (b *Bot) Validate() error {
	if b.Token == "" {
		return goerr.New("DISCORD_TOKEN is required")
	}
	return nil
}

func (b Bot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("liveness_port", b.LivenessPort),
		slog.Duration("event_timeout", b.EventTimeout),
	)
}

// Verification holds either a single panel from flags or a path to a JSON
// list of panels for multi-guild setups.
type Verification struct {
	GuildID    string
	ChannelID  string
	MessageID  string
	RoleID     string
	Emoji      string
	Footer     string
	PanelsFile string
}

func (v *Verification) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "guild-id",
			Usage:       "Guild the verification panel lives in",
			Category:    "Verification",
			Sources:     cli.EnvVars("VERIFY_GUILD_ID"),
			Destination: &v.GuildID,
		},
		&cli.StringFlag{
			Name:        "channel-id",
			Usage:       "Channel holding the verification message",
			Category:    "Verification",
			Sources:     cli.EnvVars("VERIFICATION_CHANNEL_ID"),
			Destination: &v.ChannelID,
		},
		&cli.StringFlag{
			Name:        "message-id",
			Usage:       "Existing verification message, a new one is posted when empty or gone",
			Category:    "Verification",
			Sources:     cli.EnvVars("VERIFICATION_MESSAGE_ID"),
			Destination: &v.MessageID,
		},
		&cli.StringFlag{
			Name:        "role-id",
			Usage:       "Role granted on verification",
			Category:    "Verification",
			Sources:     cli.EnvVars("VERIFIED_ROLE_ID"),
			Destination: &v.RoleID,
		},
		&cli.StringFlag{
			Name:        "emoji",
			Usage:       "Verification emoji, unicode or name:id for custom emoji",
			Category:    "Verification",
			Value:       defaultEmoji,
			Sources:     cli.EnvVars("VERIFICATION_EMOJI"),
			Destination: &v.Emoji,
		},
		&cli.StringFlag{
			Name:        "footer",
			Usage:       "Name shown in the verification embed footer",
			Category:    "Verification",
			Value:       defaultFooter,
			Sources:     cli.EnvVars("VERIFY_FOOTER"),
			Destination: &v.Footer,
		},
		&cli.StringFlag{
			Name:        "panels-file",
			Usage:       "JSON file with a list of verification panels, overrides the single panel flags",
			Category:    "Verification",
			Sources:     cli.EnvVars("VERIFY_PANELS_FILE"),
			Destination: &v.PanelsFile,
		},
	}
}

// Panels returns the validated panel settings.
func (v *Verification) Panels() ([]models.VerificationSettings, error) {
	var panels []models.VerificationSettings

	if v.PanelsFile != "" {
		raw, err := os.ReadFile(v.PanelsFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read panels file", goerr.V("path", v.PanelsFile))
		}
		if err := json.Unmarshal(raw, &panels); err != nil {
			return nil, goerr.Wrap(err, "failed to parse panels file", goerr.V("path", v.PanelsFile))
		}
	} else {
		panels = []models.VerificationSettings{{
			GuildID:   v.GuildID,
			ChannelID: v.ChannelID,
			MessageID: v.MessageID,
			RoleID:    v.RoleID,
			Emoji:     v.Emoji,
			Footer:    v.Footer,
		}}
	}

	if len(panels) == 0 {
		return nil, goerr.New("no verification panels configured")
	}

	seen := make(map[string]bool, len(panels))
	for i := range panels {
		p := &panels[i]
		if p.ChannelID == "" {
			return nil, goerr.New("verification channel ID is required", goerr.V("panel", i))
		}
		if p.RoleID == "" {
			return nil, goerr.New("verified role ID is required", goerr.V("panel", i))
		}
		if seen[p.ChannelID] {
			return nil, goerr.New("duplicate verification channel", goerr.V("channel_id", p.ChannelID))
		}
		seen[p.ChannelID] = true

		if p.Emoji == "" {
			p.Emoji = defaultEmoji
		}
		if p.Footer == "" {
			p.Footer = defaultFooter
		}
	}

	return panels, nil
}
