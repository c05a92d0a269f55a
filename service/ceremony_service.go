package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"go.uber.org/zap"

	"github.com/layer-3/garuda/core"
	"github.com/layer-3/garuda/ports"
)

// SessionIssuer mints session tokens for verified authentications. The
// ceremony engine depends on the verdict surface only, not the token
// internals.
type SessionIssuer interface {
	Issue(ctx context.Context, identity string) (string, error)
}

// CeremonyService orchestrates the registration and authentication
// ceremonies. All operations for one identity are serialized; different
// identities proceed in parallel.
type CeremonyService struct {
	ledger     ports.Ledger
	challenges ports.ChallengeSource
	verifier   ports.CredentialVerifier
	sessions   SessionIssuer
	events     ports.EventPublisher
	logger     *zap.Logger

	challengeTTL time.Duration
	locks        sync.Map // identity -> *sync.Mutex
}

// NewCeremonyService creates a new ceremony engine
func NewCeremonyService(
	ledger ports.Ledger,
	challenges ports.ChallengeSource,
	verifier ports.CredentialVerifier,
	sessions SessionIssuer,
	events ports.EventPublisher,
	logger *zap.Logger,
) *CeremonyService {
	return &CeremonyService{
		ledger:       ledger,
		challenges:   challenges,
		verifier:     verifier,
		sessions:     sessions,
		events:       events,
		logger:       logger,
		challengeTTL: 5 * time.Minute,
	}
}

// WithChallengeTTL overrides how long an issued challenge stays answerable
func (s *CeremonyService) WithChallengeTTL(ttl time.Duration) *CeremonyService {
	s.challengeTTL = ttl
	return s
}

// BeginRegistration starts a registration ceremony and returns the credential
// creation options the client signs over
func (s *CeremonyService) BeginRegistration(ctx context.Context, identity string) (*protocol.CredentialCreation, error) {
	identity, err := core.NormalizeIdentity(identity)
	if err != nil {
		return nil, err
	}

	unlock := s.lockIdentity(identity)
	defer unlock()

	account, err := s.ledger.UpsertPendingAccount(ctx, identity)
	if err != nil {
		return nil, err
	}

	challenge, err := s.newChallenge(core.CeremonyRegistration)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.SetPendingChallenge(ctx, identity, challenge); err != nil {
		return nil, err
	}

	options, err := s.verifier.RegistrationOptions(account, challenge)
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration challenge issued", zap.String("identity", identity))
	return options, nil
}

// CompleteRegistration verifies an attestation response against the pending
// challenge and attaches the new credential. The challenge is consumed
// whatever the outcome.
func (s *CeremonyService) CompleteRegistration(ctx context.Context, identity string, response []byte) error {
	identity, err := core.NormalizeIdentity(identity)
	if err != nil {
		return err
	}

	unlock := s.lockIdentity(identity)
	defer unlock()

	account, err := s.ledger.Get(ctx, identity)
	if err != nil {
		return err
	}

	challenge, err := s.consumeChallenge(ctx, account, core.CeremonyRegistration)
	if err != nil {
		return err
	}

	parsed, err := s.verifier.ParseRegistration(response)
	if err != nil {
		return err
	}

	credential, err := s.verifier.VerifyRegistration(account, challenge, parsed)
	if err != nil {
		s.logger.Warn("registration rejected", zap.String("identity", identity), zap.Error(err))
		return err
	}

	if err := s.ledger.AttachCredential(ctx, identity, *credential); err != nil {
		return err
	}

	credentialID := base64.RawURLEncoding.EncodeToString(credential.ID)
	if err := s.events.PublishRegistered(ctx, identity, credentialID); err != nil {
		s.logger.Warn("failed to publish registration event", zap.Error(err))
	}

	s.logger.Info("registration completed", zap.String("identity", identity))
	return nil
}

// BeginAuthentication starts an authentication ceremony. An account without
// a credential can never complete one, so it fails fast here instead of
// issuing an unverifiable challenge.
func (s *CeremonyService) BeginAuthentication(ctx context.Context, identity string) (*protocol.CredentialAssertion, error) {
	identity, err := core.NormalizeIdentity(identity)
	if err != nil {
		return nil, err
	}

	unlock := s.lockIdentity(identity)
	defer unlock()

	account, err := s.ledger.Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !account.Registered() {
		return nil, core.ErrNoCredential
	}

	challenge, err := s.newChallenge(core.CeremonyAuthentication)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.SetPendingChallenge(ctx, identity, challenge); err != nil {
		return nil, err
	}

	options, err := s.verifier.AuthenticationOptions(account, challenge)
	if err != nil {
		return nil, err
	}

	s.logger.Info("authentication challenge issued", zap.String("identity", identity))
	return options, nil
}

// CompleteAuthentication verifies an assertion response, enforces counter
// monotonicity, and returns a session token. The signature is verified
// first; a regressed counter then fails the ceremony despite cryptographic
// validity.
func (s *CeremonyService) CompleteAuthentication(ctx context.Context, identity string, response []byte) (string, error) {
	identity, err := core.NormalizeIdentity(identity)
	if err != nil {
		return "", err
	}

	unlock := s.lockIdentity(identity)
	defer unlock()

	account, err := s.ledger.Get(ctx, identity)
	if err != nil {
		return "", err
	}

	challenge, err := s.consumeChallenge(ctx, account, core.CeremonyAuthentication)
	if err != nil {
		return "", err
	}
	if !account.Registered() {
		return "", core.ErrNoCredential
	}

	parsed, err := s.verifier.ParseAssertion(response)
	if err != nil {
		return "", err
	}

	// Cross-account credential confusion is detected before any
	// cryptographic work happens
	if !bytes.Equal(parsed.RawID, account.Credential.ID) {
		s.logger.Warn("credential id mismatch", zap.String("identity", identity))
		return "", core.ErrCredentialMismatch
	}

	newCount, err := s.verifier.VerifyAssertion(account, challenge, parsed)
	if err != nil {
		s.logger.Warn("authentication rejected", zap.String("identity", identity), zap.Error(err))
		return "", err
	}

	if err := s.ledger.AdvanceCounter(ctx, identity, newCount); err != nil {
		s.logger.Warn("authentication failed after valid signature",
			zap.String("identity", identity), zap.Uint32("counter", newCount), zap.Error(err))
		return "", err
	}

	token, err := s.sessions.Issue(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Info("authentication completed", zap.String("identity", identity))
	return token, nil
}

// consumeChallenge removes the pending challenge and returns it if it is
// usable for the given ceremony kind. Consumption happens regardless of
// outcome; a challenge is strictly one-shot.
func (s *CeremonyService) consumeChallenge(ctx context.Context, account *core.Account, kind core.CeremonyKind) (core.Challenge, error) {
	pending := account.Pending
	if pending == nil {
		return core.Challenge{}, core.ErrChallengeMismatch
	}

	if err := s.ledger.ClearPendingChallenge(ctx, account.Identity); err != nil {
		return core.Challenge{}, err
	}
	account.Pending = nil

	if pending.Kind != kind {
		return core.Challenge{}, core.ErrChallengeMismatch
	}
	if pending.Expired(time.Now()) {
		return core.Challenge{}, core.ErrChallengeMismatch
	}

	return *pending, nil
}

func (s *CeremonyService) newChallenge(kind core.CeremonyKind) (core.Challenge, error) {
	nonce, err := s.challenges.Generate()
	if err != nil {
		return core.Challenge{}, fmt.Errorf("failed to generate challenge: %w", err)
	}

	now := time.Now()
	return core.Challenge{
		Nonce:     nonce,
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}, nil
}

// lockIdentity gives each identity a single writer across a whole ceremony
// step
func (s *CeremonyService) lockIdentity(identity string) func() {
	lock, _ := s.locks.LoadOrStore(identity, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
