package session

import (
	"context"
	"sync"
	"time"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

type memEntry struct {
	token     string
	user      domain.User
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Used for development and tests.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]memEntry
	ttl time.Duration
	now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{m: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) get(id string) (memEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[id]
	if !ok || s.now().After(e.expiresAt) {
		return memEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Token(_ context.Context, id string) (string, bool, error) {
	e, ok := s.get(id)
	return e.token, ok, nil
}

func (s *MemoryStore) User(_ context.Context, id string) (domain.User, bool, error) {
	e, ok := s.get(id)
	return e.user, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, id, token string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = memEntry{token: token, user: user, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}
