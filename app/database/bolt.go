package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/imAETHER/ReactVerify/app/models"
	"github.com/m-mizutani/goerr/v2"
	bolt "go.etcd.io/bbolt"
)

var (
	messagesBucket = []byte("messages")
	logsBucket     = []byte("logs")
)

// Logs live in one nested bucket per channel, keyed by a big-endian sequence
// so cursor order is insertion order.
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Bolt is a single-file store for deployments without Postgres.
type Bolt struct {
	db *bolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bolt db", goerr.V("path", path))
	}

	// Buckets are created up front so read transactions never have to.
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{messagesBucket, logsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to create bolt buckets")
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) FindVerificationMessage(_ context.Context, channelID string) (*models.VerificationMessage, error) {
	var msg *models.VerificationMessage
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(messagesBucket).Get([]byte(channelID))
		if v == nil {
			return nil
		}
		msg = &models.VerificationMessage{}
		return json.Unmarshal(v, msg)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read verification message", goerr.V("channel_id", channelID))
	}
	return msg, nil
}

func (b *Bolt) SaveVerificationMessage(_ context.Context, msg models.VerificationMessage) error {
	bts, err := json.Marshal(msg)
	if err != nil {
		return goerr.Wrap(err, "failed to encode verification message")
	}

	if err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(messagesBucket).Put([]byte(msg.ChannelID), bts)
	}); err != nil {
		return goerr.Wrap(err, "failed to save verification message", goerr.V("channel_id", msg.ChannelID))
	}
	return nil
}

func (b *Bolt) AddVerificationLog(_ context.Context, entry models.VerificationLog) error {
	bts, err := json.Marshal(entry)
	if err != nil {
		return goerr.Wrap(err, "failed to encode verification log")
	}

	if err := b.db.Update(func(tx *bolt.Tx) error {
		channel, err := tx.Bucket(logsBucket).CreateBucketIfNotExists([]byte(entry.ChannelID))
		if err != nil {
			return err
		}
		seq, err := channel.NextSequence()
		if err != nil {
			return err
		}
		return channel.Put(sequenceKey(seq), bts)
	}); err != nil {
		return goerr.Wrap(err, "failed to save verification log", goerr.V("id", entry.ID))
	}
	return nil
}

func (b *Bolt) ListVerificationLogs(_ context.Context, channelID string, limit int) ([]models.VerificationLog, error) {
	var logs []models.VerificationLog
	err := b.db.View(func(tx *bolt.Tx) error {
		channel := tx.Bucket(logsBucket).Bucket([]byte(channelID))
		if channel == nil {
			return nil
		}

		c := channel.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry models.VerificationLog
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			logs = append(logs, entry)
			if limit > 0 && len(logs) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read verification logs", goerr.V("channel_id", channelID))
	}
	return logs, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
