package database

import (
	"context"
	"sync"

	"github.com/imAETHER/ReactVerify/app/models"
)

// MemoryLogLimit is how many verification logs the memory store keeps. Older
// entries are dropped first.
const MemoryLogLimit = 1000

type Memory struct {
	mu       sync.RWMutex
	messages map[string]models.VerificationMessage
	logs     []models.VerificationLog
}

func NewMemory() *Memory {
	return &Memory{
		messages: make(map[string]models.VerificationMessage),
	}
}

func (m *Memory) FindVerificationMessage(_ context.Context, channelID string) (*models.VerificationMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.messages[channelID]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

func (m *Memory) SaveVerificationMessage(_ context.Context, msg models.VerificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages[msg.ChannelID] = msg
	return nil
}

func (m *Memory) AddVerificationLog(_ context.Context, entry models.VerificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.logs) >= MemoryLogLimit {
		n := copy(m.logs, m.logs[len(m.logs)-MemoryLogLimit+1:])
		m.logs = m.logs[:n]
	}
	m.logs = append(m.logs, entry)
	return nil
}

func (m *Memory) ListVerificationLogs(_ context.Context, channelID string, limit int) ([]models.VerificationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var logs []models.VerificationLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].ChannelID != channelID {
			continue
		}
		logs = append(logs, m.logs[i])
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}

func (m *Memory) Close() error {
	return nil
}
