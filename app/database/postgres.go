package database

import (
	"context"
	"errors"
	"log/slog"

	"github.com/imAETHER/ReactVerify/app/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS verification_messages (
	channel_id TEXT PRIMARY KEY,
	guild_id   TEXT NOT NULL DEFAULT '',
	message_id TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS verification_logs (
	id         TEXT PRIMARY KEY,
	guild_id   TEXT NOT NULL DEFAULT '',
	channel_id TEXT NOT NULL,
	message_id TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS verification_logs_channel_created_idx
	ON verification_logs (channel_id, created_at DESC);`

type Postgres struct {
	conn *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	slog.Info("Connecting to database..")

	conn, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to db")
	}

	if _, err := conn.Exec(ctx, schema); err != nil {
		conn.Close()
		return nil, goerr.Wrap(err, "failed to create tables")
	}

	slog.Info("Connected to database :)")
	return &Postgres{conn: conn}, nil
}

func (p *Postgres) FindVerificationMessage(ctx context.Context, channelID string) (*models.VerificationMessage, error) {
	rows, err := p.conn.Query(ctx, "SELECT channel_id, guild_id, message_id, updated_at FROM verification_messages WHERE channel_id = @channel_id", pgx.NamedArgs{
		"channel_id": channelID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find a verification message", goerr.V("channel_id", channelID))
	}

	msg, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.VerificationMessage])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to deserialize a verification message", goerr.V("channel_id", channelID))
	}

	return msg, nil
}

func (p *Postgres) SaveVerificationMessage(ctx context.Context, msg models.VerificationMessage) error {
	args := pgx.NamedArgs{
		"channel_id": msg.ChannelID,
		"guild_id":   msg.GuildID,
		"message_id": msg.MessageID,
		"updated_at": msg.UpdatedAt,
	}

	if _, err := p.conn.Exec(ctx, `INSERT INTO verification_messages (channel_id, guild_id, message_id, updated_at)
		VALUES (@channel_id, @guild_id, @message_id, @updated_at)
		ON CONFLICT (channel_id) DO UPDATE SET guild_id = @guild_id, message_id = @message_id, updated_at = @updated_at`, args); err != nil {
		return goerr.Wrap(err, "failed to save verification message", goerr.V("channel_id", msg.ChannelID))
	}
	return nil
}

func (p *Postgres) AddVerificationLog(ctx context.Context, entry models.VerificationLog) error {
	args := pgx.NamedArgs{
		"id":         entry.ID,
		"guild_id":   entry.GuildID,
		"channel_id": entry.ChannelID,
		"message_id": entry.MessageID,
		"user_id":    entry.UserID,
		"outcome":    entry.Outcome,
		"created_at": entry.CreatedAt,
	}

	if _, err := p.conn.Exec(ctx, "INSERT INTO verification_logs (id, guild_id, channel_id, message_id, user_id, outcome, created_at) VALUES (@id, @guild_id, @channel_id, @message_id, @user_id, @outcome, @created_at)", args); err != nil {
		return goerr.Wrap(err, "failed to log a verification result to db", goerr.V("user_id", entry.UserID))
	}
	return nil
}

func (p *Postgres) ListVerificationLogs(ctx context.Context, channelID string, limit int) ([]models.VerificationLog, error) {
	args := pgx.NamedArgs{
		"channel_id": channelID,
		"limit":      nil,
	}
	// LIMIT NULL means no limit.
	if limit > 0 {
		args["limit"] = limit
	}

	rows, err := p.conn.Query(ctx, `SELECT id, guild_id, channel_id, message_id, user_id, outcome, created_at
		FROM verification_logs WHERE channel_id = @channel_id
		ORDER BY created_at DESC LIMIT @limit`, args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list verification logs", goerr.V("channel_id", channelID))
	}

	logs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.VerificationLog])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to deserialize verification logs", goerr.V("channel_id", channelID))
	}
	return logs, nil
}

func (p *Postgres) Close() error {
	p.conn.Close()
	return nil
}
