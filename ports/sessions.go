package ports

import (
	"context"
	"time"
)

// SessionStore is the process-wide set of valid session IDs
type SessionStore interface {
	// Put records a session ID as valid for the given TTL
	Put(ctx context.Context, sessionID string, ttl time.Duration) error

	// Exists reports whether a session ID is currently valid
	Exists(ctx context.Context, sessionID string) (bool, error)

	// Delete removes a session ID from the valid set
	Delete(ctx context.Context, sessionID string) error
}
