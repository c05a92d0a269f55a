package ledger

import (
	"context"
	"sync"

	"github.com/layer-3/garuda/core"
	"github.com/layer-3/garuda/ports"
)

// MemoryLedger is an in-memory implementation of the Ledger interface
type MemoryLedger struct {
	accounts map[string]*core.Account
	mu       sync.RWMutex
}

// NewMemoryLedger creates a new in-memory account ledger
func NewMemoryLedger() ports.Ledger {
	return &MemoryLedger{
		accounts: make(map[string]*core.Account),
	}
}

// UpsertPendingAccount creates the account if absent. An account that already
// holds a credential is fully registered and must not be re-created.
func (l *MemoryLedger) UpsertPendingAccount(ctx context.Context, identity string) (*core.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, exists := l.accounts[identity]
	if !exists {
		account = &core.Account{Identity: identity}
		l.accounts[identity] = account
	}
	if account.Registered() {
		return nil, core.ErrAccountExists
	}

	return cloneAccount(account), nil
}

// Get returns a copy of the account record
func (l *MemoryLedger) Get(ctx context.Context, identity string) (*core.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	account, exists := l.accounts[identity]
	if !exists {
		return nil, core.ErrAccountNotFound
	}

	return cloneAccount(account), nil
}

// SetPendingChallenge stores a challenge, silently superseding any prior one
func (l *MemoryLedger) SetPendingChallenge(ctx context.Context, identity string, challenge core.Challenge) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, exists := l.accounts[identity]
	if !exists {
		return core.ErrAccountNotFound
	}

	account.Pending = &challenge
	return nil
}

// ClearPendingChallenge consumes the pending challenge
func (l *MemoryLedger) ClearPendingChallenge(ctx context.Context, identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, exists := l.accounts[identity]
	if !exists {
		return core.ErrAccountNotFound
	}

	account.Pending = nil
	return nil
}

// AttachCredential records the registered credential
func (l *MemoryLedger) AttachCredential(ctx context.Context, identity string, credential core.Credential) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, exists := l.accounts[identity]
	if !exists {
		return core.ErrAccountNotFound
	}

	account.Credential = &credential
	return nil
}

// AdvanceCounter enforces strict counter growth. A non-increasing counter on
// a fresh assertion is the cloned-authenticator signal.
func (l *MemoryLedger) AdvanceCounter(ctx context.Context, identity string, newCount uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, exists := l.accounts[identity]
	if !exists {
		return core.ErrAccountNotFound
	}
	if account.Credential == nil {
		return core.ErrNoCredential
	}
	if newCount <= account.Credential.SignCount {
		return core.ErrReplayDetected
	}

	account.Credential.SignCount = newCount
	return nil
}

func cloneAccount(account *core.Account) *core.Account {
	clone := &core.Account{Identity: account.Identity}
	if account.Pending != nil {
		pending := *account.Pending
		pending.Nonce = append([]byte(nil), account.Pending.Nonce...)
		clone.Pending = &pending
	}
	if account.Credential != nil {
		credential := *account.Credential
		credential.ID = append([]byte(nil), account.Credential.ID...)
		credential.PublicKey = append([]byte(nil), account.Credential.PublicKey...)
		clone.Credential = &credential
	}
	return clone
}
