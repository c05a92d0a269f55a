package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/garuda/ports"
)

// MemoryStore is an in-memory implementation of the SessionStore interface.
// The set is empty at startup, so a restart invalidates every session.
type MemoryStore struct {
	sessions map[string]time.Time
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() ports.SessionStore {
	return &MemoryStore{
		sessions: make(map[string]time.Time),
	}
}

// Put records a session ID as valid until the TTL elapses
func (s *MemoryStore) Put(ctx context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry := time.Now().Add(ttl)
	s.sessions[sessionID] = expiry

	// Drop the entry once it can no longer be valid
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		if storedExpiry, exists := s.sessions[sessionID]; exists && !storedExpiry.After(expiry) {
			delete(s.sessions, sessionID)
		}
	}()

	return nil
}

// Exists checks whether a session ID is currently valid
func (s *MemoryStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, exists := s.sessions[sessionID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		return false, nil
	}

	return true, nil
}

// Delete removes a session ID from the valid set
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
