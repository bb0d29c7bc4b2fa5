package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryStore is the TokenStore used when no Redis is configured
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a store whose tokens live for ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func memoryKey(sid string, ch Channel) string {
	return sid + ":" + string(ch)
}

func (s *MemoryStore) Get(_ context.Context, sid string, ch Channel) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey(sid, ch)
	entry, ok := s.entries[key]
	now := s.now()
	if !ok || !now.Before(entry.expires) {
		return "", nil
	}
	entry.expires = now.Add(s.ttl)
	s.entries[key] = entry
	return entry.token, nil
}

func (s *MemoryStore) Set(_ context.Context, sid string, ch Channel, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memoryKey(sid, ch)] = memoryEntry{token: token, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sid string, ch Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, memoryKey(sid, ch))
	return nil
}

// Sweep drops expired tokens and returns how many were removed
func (s *MemoryStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
