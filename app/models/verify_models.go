package models

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// VerificationSettings describes one verification panel. It is built once at
// startup and never mutated.
type VerificationSettings struct {
	GuildID   string `json:"guildId"`
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
	RoleID    string `json:"roleId"`
	Emoji     string `json:"emoji"`
	Footer    string `json:"footer"`
}

// ReactionEvent is the part of a MessageReactionAdd the verifier looks at.
// Partial is set when the gateway did not ship the member payload, so the
// bot flag and guild are not known yet.
type ReactionEvent struct {
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	Emoji     discordgo.Emoji
	Bot       bool
	Partial   bool
}

// VerificationLog records how a reaction on a verification message was decided.
type VerificationLog struct {
	ID        string    `db:"id" json:"id"`
	GuildID   string    `db:"guild_id" json:"guildId"`
	ChannelID string    `db:"channel_id" json:"channelId"`
	MessageID string    `db:"message_id" json:"messageId"`
	UserID    string    `db:"user_id" json:"userId"`
	Outcome   string    `db:"outcome" json:"outcome"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// VerificationMessage is the last verification message the bot posted in a channel.
type VerificationMessage struct {
	ChannelID string    `db:"channel_id" json:"channelId"`
	GuildID   string    `db:"guild_id" json:"guildId"`
	MessageID string    `db:"message_id" json:"messageId"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
