package ports

import (
	"github.com/go-webauthn/webauthn/protocol"

	"github.com/layer-3/garuda/core"
)

// CredentialVerifier is the boundary behind which attestation-format parsing
// and public-key cryptography live. Implementations are deterministic and
// side-effect free; all ledger mutation stays in the engine.
type CredentialVerifier interface {
	// RegistrationOptions builds the credential creation options a client
	// signs over during registration.
	RegistrationOptions(account *core.Account, challenge core.Challenge) (*protocol.CredentialCreation, error)

	// AuthenticationOptions builds the credential request options for an
	// authentication ceremony, pinned to the stored credential.
	AuthenticationOptions(account *core.Account, challenge core.Challenge) (*protocol.CredentialAssertion, error)

	// ParseRegistration decodes an attestation response body.
	ParseRegistration(body []byte) (*protocol.ParsedCredentialCreationData, error)

	// ParseAssertion decodes an assertion response body.
	ParseAssertion(body []byte) (*protocol.ParsedCredentialAssertionData, error)

	// VerifyRegistration validates the attestation against the pending
	// challenge and returns the extracted credential.
	VerifyRegistration(account *core.Account, challenge core.Challenge, parsed *protocol.ParsedCredentialCreationData) (*core.Credential, error)

	// VerifyAssertion validates the assertion signature against the stored
	// public key and returns the authenticator's reported signature counter.
	// Counter monotonicity is enforced by the caller, after this succeeds.
	VerifyAssertion(account *core.Account, challenge core.Challenge, parsed *protocol.ParsedCredentialAssertionData) (uint32, error)
}
