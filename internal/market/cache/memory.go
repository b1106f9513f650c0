package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is the default in-process store. Payloads are kept as JSON so
// reads can never alias a cached value.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *logger.Logger
}

// NewMemory creates an empty in-memory store.
func NewMemory(log *logger.Logger) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		logger:  log,
	}
}

// Get decodes the entry for key into dest.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	e, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(e.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key for ttl, replacing any previous entry.
func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = entry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()

	return nil
}

// Delete removes the entry for key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return nil
}

// CleanExpired removes entries past their TTL. Expired entries are
// already invisible to Get; this frees their memory.
func (m *Memory) CleanExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			count++
		}
	}

	if count > 0 {
		m.logger.WithField("count", count).Info("Cleaned expired cache entries")
	}

	return count, nil
}

// Len returns the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
