package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/garuda/core"
	"github.com/layer-3/garuda/ports"
)

// SessionService mints and validates session tokens. A token is valid only
// while its ID is a member of the session store, so restarting the process
// with the in-memory store ends every session.
type SessionService struct {
	tokenizer ports.SessionTokenizer
	store     ports.SessionStore
	events    ports.EventPublisher
	logger    *zap.Logger

	sessionTTL time.Duration
}

// NewSessionService creates a new session issuer
func NewSessionService(
	tokenizer ports.SessionTokenizer,
	store ports.SessionStore,
	events ports.EventPublisher,
	logger *zap.Logger,
	sessionTTL time.Duration,
) *SessionService {
	return &SessionService{
		tokenizer:  tokenizer,
		store:      store,
		events:     events,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

// Issue mints a session token. Called only on a verified authentication
// verdict.
func (s *SessionService) Issue(ctx context.Context, identity string) (string, error) {
	now := time.Now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.store.Put(ctx, session.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}

	if err := s.events.PublishLogin(ctx, identity, session.ID); err != nil {
		s.logger.Warn("failed to publish login event", zap.Error(err))
	}

	s.logger.Info("session issued", zap.String("identity", identity), zap.String("session_id", session.ID))
	return token, nil
}

// Validate checks a presented token. The three outcomes stay distinct: no
// token at all, a token past its expiry, and a token that is unknown to the
// valid set.
func (s *SessionService) Validate(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrNoToken
	}

	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, core.ErrSessionExpired
	}

	valid, err := s.store.Exists(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		return nil, core.ErrSessionUnknown
	}

	return session, nil
}

// Revoke ends a session and publishes a logout event
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := s.events.PublishLogout(ctx, session.Identity, session.ID); err != nil {
		s.logger.Warn("failed to publish logout event", zap.Error(err))
	}

	s.logger.Info("session revoked", zap.String("identity", session.Identity), zap.String("session_id", session.ID))
	return nil
}
