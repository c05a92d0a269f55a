package ports

import (
	"context"

	"github.com/layer-3/garuda/core"
)

// Ledger is keyed storage of account records. Implementations must make each
// operation atomic with respect to concurrent readers; serialization of whole
// ceremonies is the engine's job.
type Ledger interface {
	// UpsertPendingAccount creates the account if absent and returns it.
	// Returns core.ErrAccountExists if a credential is already attached.
	UpsertPendingAccount(ctx context.Context, identity string) (*core.Account, error)

	// Get returns a copy of the account or core.ErrAccountNotFound.
	Get(ctx context.Context, identity string) (*core.Account, error)

	// SetPendingChallenge stores a challenge, superseding any prior one.
	SetPendingChallenge(ctx context.Context, identity string, challenge core.Challenge) error

	// ClearPendingChallenge consumes the pending challenge, if any.
	ClearPendingChallenge(ctx context.Context, identity string) error

	// AttachCredential records the registered credential.
	// Returns core.ErrAccountNotFound if the account is absent.
	AttachCredential(ctx context.Context, identity string, credential core.Credential) error

	// AdvanceCounter moves the signature counter forward. Returns
	// core.ErrReplayDetected unless newCount is strictly greater than the
	// stored counter.
	AdvanceCounter(ctx context.Context, identity string, newCount uint32) error
}
