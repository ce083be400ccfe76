package controllers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/imAETHER/ReactVerify/app/models"
	"github.com/imAETHER/ReactVerify/app/verification"
)

const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessageReactions

func NewDiscordSession(token string) (*discordgo.Session, error) {
	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create bot")
	}
	discord.Identify.Intents = intents
	return discord, nil
}

// DiscordController routes gateway events to the verification panels.
type DiscordController struct {
	logger       *slog.Logger
	verifiers    []*verification.Verifier
	eventTimeout time.Duration
	bootstrap    sync.Once
}

func NewDiscordController(logger *slog.Logger, verifiers []*verification.Verifier, eventTimeout time.Duration) *DiscordController {
	return &DiscordController{
		logger:       logger,
		verifiers:    verifiers,
		eventTimeout: eventTimeout,
	}
}

func (d *DiscordController) Register(s *discordgo.Session) {
	s.AddHandler(d.onReady)
	s.AddHandler(d.onReactionAdd)
}

func (d *DiscordController) onReady(s *discordgo.Session, r *discordgo.Ready) {
	color.Green("[i | Login] Connected to %s", r.User.String())

	if err := s.UpdateWatchStatus(0, "for verification"); err != nil {
		d.logger.Warn("Failed to set bot status", slog.Any("err", err))
	}

	// Ready fires again on reconnect; the message is only set up once per process.
	d.bootstrap.Do(func() {
		d.Bootstrap(ctxlog.With(context.Background(), d.logger))
	})
}

// Bootstrap sets up every panel's verification message. A failing panel is
// logged and does not stop the others.
func (d *DiscordController) Bootstrap(ctx context.Context) {
	for _, v := range d.verifiers {
		if err := v.Bootstrap(ctx); err != nil {
			d.logger.Error("Error setting up verification message",
				slog.String("channel_id", v.Settings().ChannelID),
				slog.Any("err", err),
			)
		}
	}
}

func (d *DiscordController) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}
	d.HandleReaction(context.Background(), verification.EventFromReaction(r))
}

// HandleReaction hands the event to the panel owning the reacted message, if any.
func (d *DiscordController) HandleReaction(ctx context.Context, ev models.ReactionEvent) {
	for _, v := range d.verifiers {
		if v.MessageID() != ev.MessageID {
			continue
		}

		ctx, cancel := context.WithTimeout(ctx, d.eventTimeout)
		logger := d.logger.With(
			slog.String("event_id", uuid.NewString()),
			slog.String("message_id", ev.MessageID),
		)

		outcome, err := v.HandleReaction(ctxlog.With(ctx, logger), ev)
		cancel()

		if err != nil {
			logger.Error("Error handling reaction", slog.String("outcome", string(outcome)), slog.Any("err", err))
			return
		}
		logger.Debug("Reaction handled", slog.String("outcome", string(outcome)))
		return
	}
}
