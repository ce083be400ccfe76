package database

import (
	"context"

	"github.com/imAETHER/ReactVerify/app/models"
)

// Store keeps the bot's verification messages and decision logs across restarts.
type Store interface {
	// FindVerificationMessage returns nil when nothing was stored for the channel.
	FindVerificationMessage(ctx context.Context, channelID string) (*models.VerificationMessage, error)
	SaveVerificationMessage(ctx context.Context, msg models.VerificationMessage) error
	AddVerificationLog(ctx context.Context, entry models.VerificationLog) error
	// ListVerificationLogs returns the channel's logs newest first. A limit of
	// zero or less returns everything kept.
	ListVerificationLogs(ctx context.Context, channelID string, limit int) ([]models.VerificationLog, error)
	Close() error
}
