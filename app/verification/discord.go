package verification

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrMessageNotFound = goerr.New("verification message not found")
	ErrChannelNotFound = goerr.New("verification channel not found")
	ErrRoleNotFound    = goerr.New("verified role not found")
)

// Discord is the slice of the Discord API the verifier needs. Every call is a
// suspension point and reports its own error.
type Discord interface {
	ChannelMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	User(ctx context.Context, userID string) (*discordgo.User, error)
	GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	GuildRole(ctx context.Context, guildID, roleID string) (*discordgo.Role, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error
}

// Session implements Discord on top of a discordgo session.
type Session struct {
	s *discordgo.Session
}

func NewSession(s *discordgo.Session) *Session {
	return &Session{s: s}
}

func (d *Session) ChannelMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	msg, err := d.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(classify(err), "failed to fetch message", goerr.V("channel_id", channelID), goerr.V("message_id", messageID))
	}
	return msg, nil
}

func (d *Session) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	msg, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(classify(err), "failed to send message", goerr.V("channel_id", channelID))
	}
	return msg, nil
}

func (d *Session) EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error {
	if _, err := d.s.ChannelMessageEditComplex(
		discordgo.NewMessageEdit(channelID, messageID).SetEmbed(embed),
		discordgo.WithContext(ctx),
	); err != nil {
		return goerr.Wrap(classify(err), "failed to edit message", goerr.V("channel_id", channelID), goerr.V("message_id", messageID))
	}
	return nil
}

func (d *Session) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := d.s.State.Channel(channelID); err == nil {
		return ch, nil
	}

	ch, err := d.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(classify(err), "failed to fetch channel", goerr.V("channel_id", channelID))
	}
	return ch, nil
}

func (d *Session) User(ctx context.Context, userID string) (*discordgo.User, error) {
	user, err := d.s.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch user", goerr.V("user_id", userID))
	}
	return user, nil
}

func (d *Session) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	member, err := d.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch guild member", goerr.V("guild_id", guildID), goerr.V("user_id", userID))
	}
	return member, nil
}

// GuildRole looks in the state cache first and falls back to listing the
// guild's roles.
func (d *Session) GuildRole(ctx context.Context, guildID, roleID string) (*discordgo.Role, error) {
	if role, err := d.s.State.Role(guildID, roleID); err == nil {
		return role, nil
	}

	roles, err := d.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch guild roles", goerr.V("guild_id", guildID))
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, goerr.Wrap(ErrRoleNotFound, "role is not in guild", goerr.V("guild_id", guildID), goerr.V("role_id", roleID))
}

func (d *Session) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := d.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to add role", goerr.V("guild_id", guildID), goerr.V("user_id", userID), goerr.V("role_id", roleID))
	}
	return nil
}

func (d *Session) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	if err := d.s.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to remove reaction", goerr.V("message_id", messageID), goerr.V("user_id", userID))
	}
	return nil
}

// classify maps Discord "unknown" REST errors onto the package sentinels so
// callers can tell absence apart from a failed request. Other errors pass
// through unchanged.
func classify(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMessage:
			return ErrMessageNotFound
		case discordgo.ErrCodeUnknownChannel:
			return ErrChannelNotFound
		}
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return ErrMessageNotFound
	}
	return err
}
