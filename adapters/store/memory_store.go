package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/taskboard/ports"
)

// MemoryStore is an in-memory implementation of the RevocationStore
// interface. Expired entries are dropped lazily.
type MemoryStore struct {
	revoked map[string]time.Time
	now     func() time.Time
	mu      sync.Mutex
}

// NewMemoryStore creates a new in-memory store. A nil clock means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		now:     now,
	}
}

var _ ports.RevocationStore = (*MemoryStore)(nil)

// Revoke marks a token as revoked until ttl elapses
func (s *MemoryStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)
	s.revoked[revocationKey(token)] = now.Add(ttl)

	return nil
}

// IsRevoked checks if a token has a live revocation entry
func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := revocationKey(token)
	expiresAt, exists := s.revoked[key]
	if !exists {
		return false, nil
	}

	if !s.now().Before(expiresAt) {
		delete(s.revoked, key)
		return false, nil
	}

	return true, nil
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.revoked)
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for key, expiresAt := range s.revoked {
		if !now.Before(expiresAt) {
			delete(s.revoked, key)
		}
	}
}
