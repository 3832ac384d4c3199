package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alexnjoya/mindlink/internal/models"
)

// MemoryStore keeps live sessions in process. Entries are stored encoded so
// that no caller can mutate a stored session without saving it.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	data      []byte
	touchedAt time.Time
}

// NewMemoryStore creates an in-process store whose entries expire after ttl
// of inactivity
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.LiveSession, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || m.expired(entry, m.now()) {
		return nil, ErrNotFound
	}

	var s models.LiveSession
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode live session %s: %w", id, err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *models.LiveSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode live session %s: %w", s.ID, err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = memoryEntry{data: data, touchedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Prune(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, entry := range m.sessions {
		if m.expired(entry, now) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned, nil
}

// Len returns the number of stored sessions, expired or not
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(entry.touchedAt) > m.ttl
}
