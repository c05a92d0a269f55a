package core

import (
	"encoding/base64"
	"strings"
	"time"
)

// CeremonyKind distinguishes the two WebAuthn ceremonies
type CeremonyKind string

const (
	CeremonyRegistration   CeremonyKind = "registration"
	CeremonyAuthentication CeremonyKind = "authentication"
)

// Challenge is a single-use random value bound to one account and one ceremony
type Challenge struct {
	Nonce     []byte       // Random value the client must sign over
	Kind      CeremonyKind // Which ceremony the challenge belongs to
	IssuedAt  time.Time    // When the challenge was created
	ExpiresAt time.Time    // When the challenge stops being acceptable
}

// Encoded returns the nonce the way WebAuthn clients echo it back,
// base64 raw-url without padding.
func (c Challenge) Encoded() string {
	return base64.RawURLEncoding.EncodeToString(c.Nonce)
}

// Expired reports whether the challenge is past its TTL at the given time.
func (c Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// CredentialFlags mirrors the authenticator flags recorded at registration
type CredentialFlags struct {
	UserPresent    bool
	UserVerified   bool
	BackupEligible bool
	BackupState    bool
}

// Credential is the single public-key credential registered for an account
type Credential struct {
	ID        []byte          // Credential ID, unique across all accounts
	PublicKey []byte          // COSE public key used to verify assertions
	SignCount uint32          // Monotonic signature counter
	Flags     CredentialFlags // Authenticator flags from registration
}

// Account is one ledger record keyed by normalized identity
type Account struct {
	Identity   string      // Normalized unique key, immutable
	Pending    *Challenge  // In-flight challenge, at most one
	Credential *Credential // Present once registration succeeds
}

// Registered reports whether the account has completed registration.
func (a *Account) Registered() bool {
	return a != nil && a.Credential != nil
}

// Session represents an authenticated user session
type Session struct {
	ID        string    // Unique session identifier, member of the valid set
	Identity  string    // Account the session belongs to
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}

// NormalizeIdentity trims whitespace and lowercases an identity so that
// lookups are case-insensitive.
func NormalizeIdentity(identity string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(identity))
	if normalized == "" {
		return "", ErrInvalidIdentity
	}
	return normalized, nil
}
