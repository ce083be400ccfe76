// Package verification posts the verification message and turns reactions on
// it into role grants.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/imAETHER/ReactVerify/app/database"
	"github.com/imAETHER/ReactVerify/app/models"
)

type Outcome string

const (
	OutcomeIgnored         Outcome = "ignored"
	OutcomeFailed          Outcome = "failed"
	OutcomeWrongEmoji      Outcome = "wrong_emoji"
	OutcomeRoleMissing     Outcome = "role_missing"
	OutcomeGranted         Outcome = "granted"
	OutcomeAlreadyVerified Outcome = "already_verified"
)

// Verifier owns one verification panel. The settings are fixed; only the
// message ID changes, and only when Bootstrap has to post a new message.
type Verifier struct {
	discord  Discord
	store    database.Store
	settings models.VerificationSettings
	now      func() time.Time

	mu        sync.RWMutex
	messageID string
}

func New(discord Discord, store database.Store, settings models.VerificationSettings) *Verifier {
	return &Verifier{
		discord:   discord,
		store:     store,
		settings:  settings,
		now:       time.Now,
		messageID: settings.MessageID,
	}
}

func (v *Verifier) Settings() models.VerificationSettings {
	return v.settings
}

// MessageID is the message reactions are currently matched against.
func (v *Verifier) MessageID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.messageID
}

func (v *Verifier) setMessageID(id string) {
	v.mu.Lock()
	v.messageID = id
	v.mu.Unlock()
}

// Bootstrap makes sure the verification message exists: it is edited in place
// when Discord still has it and sent anew only when Discord reports it unknown.
// Any other fetch failure is returned without posting anything.
func (v *Verifier) Bootstrap(ctx context.Context) error {
	logger := ctxlog.From(ctx).With(slog.String("channel_id", v.settings.ChannelID))

	stored, err := v.store.FindVerificationMessage(ctx, v.settings.ChannelID)
	if err != nil {
		logger.Warn("Failed to read stored verification message, using configured one", slog.Any("err", err))
	} else if stored != nil && stored.MessageID != "" {
		v.setMessageID(stored.MessageID)
	}

	embed := verificationEmbed(v.settings.Emoji, v.settings.Footer, v.now())

	messageID := v.MessageID()
	if messageID != "" {
		msg, err := v.discord.ChannelMessage(ctx, v.settings.ChannelID, messageID)
		switch {
		case err == nil:
			if err := v.discord.EditEmbed(ctx, msg.ChannelID, msg.ID, embed); err != nil {
				return goerr.Wrap(err, "failed to update verification message")
			}
			logger.Info("Existing verification message updated", slog.String("message_id", msg.ID))
			return nil
		case errors.Is(err, ErrMessageNotFound):
			logger.Info("Verification message not found, creating a new one", slog.String("message_id", messageID))
		default:
			return goerr.Wrap(err, "failed to fetch verification message")
		}
	}

	msg, err := v.discord.SendEmbed(ctx, v.settings.ChannelID, embed)
	if err != nil {
		return goerr.Wrap(err, "failed to send verification message")
	}
	v.setMessageID(msg.ID)
	logger.Info("New verification message sent", slog.String("message_id", msg.ID))

	if err := v.store.SaveVerificationMessage(ctx, models.VerificationMessage{
		ChannelID: v.settings.ChannelID,
		GuildID:   msg.GuildID,
		MessageID: msg.ID,
		UpdatedAt: v.now(),
	}); err != nil {
		logger.Warn("Failed to store verification message", slog.Any("err", err))
	}
	return nil
}

// HandleReaction applies the grant policy to one reaction. Errors are returned
// for the caller to log; nothing is retried.
func (v *Verifier) HandleReaction(ctx context.Context, ev models.ReactionEvent) (Outcome, error) {
	if ev.MessageID != v.MessageID() {
		return OutcomeIgnored, nil
	}
	if ev.Bot || !v.guildMatches(ev.GuildID) {
		return OutcomeIgnored, nil
	}

	if ev.Partial {
		var err error
		if ev, err = v.complete(ctx, ev); err != nil {
			return OutcomeFailed, err
		}
		if ev.Bot || !v.guildMatches(ev.GuildID) {
			return OutcomeIgnored, nil
		}
	}

	logger := ctxlog.From(ctx).With(slog.String("user_id", ev.UserID), slog.String("guild_id", ev.GuildID))

	if !v.emojiMatches(ev.Emoji) {
		outcome, err := OutcomeWrongEmoji, v.removeReaction(ctx, ev)
		v.record(ctx, ev, outcome)
		return outcome, err
	}

	member, err := v.discord.GuildMember(ctx, ev.GuildID, ev.UserID)
	if err != nil {
		return OutcomeFailed, goerr.Wrap(err, "failed to resolve member")
	}

	role, err := v.discord.GuildRole(ctx, ev.GuildID, v.settings.RoleID)
	if errors.Is(err, ErrRoleNotFound) {
		logger.Error("Verified role not found", slog.String("role_id", v.settings.RoleID))
		outcome, err := OutcomeRoleMissing, v.removeReaction(ctx, ev)
		v.record(ctx, ev, outcome)
		return outcome, err
	}
	if err != nil {
		return OutcomeFailed, goerr.Wrap(err, "failed to resolve verified role")
	}

	outcome := OutcomeAlreadyVerified
	if !slices.Contains(member.Roles, role.ID) {
		if err := v.discord.AddRole(ctx, ev.GuildID, ev.UserID, role.ID); err != nil {
			return OutcomeFailed, goerr.Wrap(err, "failed to grant verified role")
		}
		outcome = OutcomeGranted
		logger.Info("Assigned verified role")
	} else {
		logger.Info("Member already has the verified role")
	}

	err = v.removeReaction(ctx, ev)
	v.record(ctx, ev, outcome)
	return outcome, err
}

// complete fills in what a partial event lacks: the bot flag and, for
// uncached channels, the guild.
func (v *Verifier) complete(ctx context.Context, ev models.ReactionEvent) (models.ReactionEvent, error) {
	user, err := v.discord.User(ctx, ev.UserID)
	if err != nil {
		return ev, goerr.Wrap(err, "failed to fetch reaction user")
	}
	ev.Bot = user.Bot

	if ev.GuildID == "" {
		ch, err := v.discord.Channel(ctx, ev.ChannelID)
		if err != nil {
			return ev, goerr.Wrap(err, "failed to fetch reaction channel")
		}
		ev.GuildID = ch.GuildID
	}

	ev.Partial = false
	return ev, nil
}

// guildMatches is true when the panel is not pinned to a guild or the guild is
// not known yet.
func (v *Verifier) guildMatches(guildID string) bool {
	return v.settings.GuildID == "" || guildID == "" || guildID == v.settings.GuildID
}

// emojiMatches accepts the bare name for unicode emoji and name:id for custom ones.
func (v *Verifier) emojiMatches(e discordgo.Emoji) bool {
	return e.Name == v.settings.Emoji || e.APIName() == v.settings.Emoji
}

func (v *Verifier) removeReaction(ctx context.Context, ev models.ReactionEvent) error {
	return v.discord.RemoveReaction(ctx, ev.ChannelID, ev.MessageID, ev.Emoji.APIName(), ev.UserID)
}

func (v *Verifier) record(ctx context.Context, ev models.ReactionEvent, outcome Outcome) {
	if err := v.store.AddVerificationLog(ctx, models.VerificationLog{
		ID:        uuid.NewString(),
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		MessageID: ev.MessageID,
		UserID:    ev.UserID,
		Outcome:   string(outcome),
		CreatedAt: v.now(),
	}); err != nil {
		ctxlog.From(ctx).Warn("Failed to log a verification result", slog.Any("err", err))
	}
}

// EventFromReaction converts a gateway reaction. Reactions without a member
// payload are marked partial.
func EventFromReaction(r *discordgo.MessageReactionAdd) models.ReactionEvent {
	ev := models.ReactionEvent{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		UserID:    r.UserID,
		Emoji:     r.Emoji,
	}
	if r.Member != nil && r.Member.User != nil {
		ev.Bot = r.Member.User.Bot
	} else {
		ev.Partial = true
	}
	return ev
}
