package database_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imAETHER/ReactVerify/app/database"
	"github.com/imAETHER/ReactVerify/app/models"
)

func testStore(t *testing.T, newStore func(t *testing.T) database.Store) {
	t.Run("missing message returns nil", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		msg, err := store.FindVerificationMessage(context.Background(), "chan-"+uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	t.Run("save then find", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		ctx := context.Background()
		want := models.VerificationMessage{
			ChannelID: "chan-" + uuid.NewString(),
			GuildID:   "guild-1",
			MessageID: "msg-1",
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.SaveVerificationMessage(ctx, want))

		got, err := store.FindVerificationMessage(ctx, want.ChannelID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.MessageID, got.MessageID)
		assert.Equal(t, want.GuildID, got.GuildID)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("save overwrites previous message", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		ctx := context.Background()
		channelID := "chan-" + uuid.NewString()
		require.NoError(t, store.SaveVerificationMessage(ctx, models.VerificationMessage{ChannelID: channelID, MessageID: "old", UpdatedAt: time.Now()}))
		require.NoError(t, store.SaveVerificationMessage(ctx, models.VerificationMessage{ChannelID: channelID, MessageID: "new", UpdatedAt: time.Now()}))

		got, err := store.FindVerificationMessage(ctx, channelID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "new", got.MessageID)
	})

	t.Run("verification logs are listed newest first", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		ctx := context.Background()
		channelID := "chan-" + uuid.NewString()
		base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		var ids []string
		for i, outcome := range []string{"wrong_emoji", "granted", "already_verified"} {
			entry := models.VerificationLog{
				ID:        uuid.NewString(),
				GuildID:   "guild-1",
				ChannelID: channelID,
				MessageID: "msg-1",
				UserID:    "user-1",
				Outcome:   outcome,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, store.AddVerificationLog(ctx, entry))
			ids = append(ids, entry.ID)
		}
		require.NoError(t, store.AddVerificationLog(ctx, models.VerificationLog{
			ID:        uuid.NewString(),
			ChannelID: "chan-" + uuid.NewString(),
			MessageID: "msg-2",
			UserID:    "user-2",
			Outcome:   "granted",
			CreatedAt: base,
		}))

		logs, err := store.ListVerificationLogs(ctx, channelID, 0)
		require.NoError(t, err)
		require.Len(t, logs, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{logs[0].ID, logs[1].ID, logs[2].ID})
		assert.Equal(t, "already_verified", logs[0].Outcome)
		assert.Equal(t, "user-1", logs[0].UserID)
		assert.Equal(t, "guild-1", logs[0].GuildID)
		assert.True(t, base.Add(2*time.Minute).Equal(logs[0].CreatedAt))

		limited, err := store.ListVerificationLogs(ctx, channelID, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, ids[2], limited[0].ID)
		assert.Equal(t, ids[1], limited[1].ID)
	})

	t.Run("no logs for unknown channel", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		logs, err := store.ListVerificationLogs(context.Background(), "chan-"+uuid.NewString(), 10)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) database.Store {
		return database.NewMemory()
	})
}

func TestMemoryStore_KeepsNewestLogs(t *testing.T) {
	store := database.NewMemory()
	ctx := context.Background()

	for i := 0; i < database.MemoryLogLimit+50; i++ {
		require.NoError(t, store.AddVerificationLog(ctx, models.VerificationLog{
			ID:        fmt.Sprintf("log-%d", i),
			ChannelID: "chan-1",
			Outcome:   "granted",
		}))
	}

	logs, err := store.ListVerificationLogs(ctx, "chan-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, database.MemoryLogLimit)
	assert.Equal(t, fmt.Sprintf("log-%d", database.MemoryLogLimit+49), logs[0].ID)
	assert.Equal(t, "log-50", logs[len(logs)-1].ID)
}

func TestBoltStore(t *testing.T) {
	testStore(t, func(t *testing.T) database.Store {
		store, err := database.OpenBolt(filepath.Join(t.TempDir(), "verify.db"))
		require.NoError(t, err)
		return store
	})
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verify.db")
	ctx := context.Background()

	store, err := database.OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveVerificationMessage(ctx, models.VerificationMessage{ChannelID: "chan-1", MessageID: "msg-1", UpdatedAt: time.Now()}))
	require.NoError(t, store.AddVerificationLog(ctx, models.VerificationLog{ID: "log-1", ChannelID: "chan-1", UserID: "user-1", Outcome: "granted"}))
	require.NoError(t, store.Close())

	store, err = database.OpenBolt(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.FindVerificationMessage(ctx, "chan-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "msg-1", got.MessageID)

	logs, err := store.ListVerificationLogs(ctx, "chan-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log-1", logs[0].ID)
	assert.Equal(t, "granted", logs[0].Outcome)
}

func TestPostgresStore(t *testing.T) {
	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("Skipping Postgres test: TEST_DATABASE_URL must be set")
	}

	testStore(t, func(t *testing.T) database.Store {
		store, err := database.ConnectPostgres(context.Background(), connStr)
		require.NoError(t, err)
		return store
	})
}
