package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. With a zero TTL sessions live
// until deleted or the process exits.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore returns a MemoryStore; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &MemoryStore{cache: cache.New(ttl, ttl/2)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Session, error) {
	if x, found := m.cache.Get(userID); found {
		s := x.(Session)
		return &s, nil
	}
	return New(userID), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	m.cache.Set(s.UserID, *s, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.cache.Delete(userID)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int { return m.cache.ItemCount() }
