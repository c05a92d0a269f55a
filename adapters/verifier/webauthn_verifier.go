package verifier

import (
	"bytes"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/layer-3/garuda/core"
)

// WebAuthnVerifier implements the CredentialVerifier interface on top of
// go-webauthn. Challenges come from the ceremony engine, not the library;
// session data is reconstructed from the ledger-held challenge at verify
// time.
type WebAuthnVerifier struct {
	webAuthn *webauthn.WebAuthn
}

// NewWebAuthnVerifier creates a verifier for the given relying party
func NewWebAuthnVerifier(displayName, rpID string, origins []string) (*WebAuthnVerifier, error) {
	webAuthn, err := webauthn.New(&webauthn.Config{
		RPDisplayName: displayName,
		RPID:          rpID,
		RPOrigins:     origins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure relying party: %w", err)
	}

	return &WebAuthnVerifier{webAuthn: webAuthn}, nil
}

// RegistrationOptions builds the credential creation options for a
// registration ceremony
func (v *WebAuthnVerifier) RegistrationOptions(account *core.Account, challenge core.Challenge) (*protocol.CredentialCreation, error) {
	return &protocol.CredentialCreation{
		Response: protocol.PublicKeyCredentialCreationOptions{
			Challenge: protocol.URLEncodedBase64(challenge.Nonce),
			RelyingParty: protocol.RelyingPartyEntity{
				CredentialEntity: protocol.CredentialEntity{Name: v.webAuthn.Config.RPDisplayName},
				ID:               v.webAuthn.Config.RPID,
			},
			User: protocol.UserEntity{
				CredentialEntity: protocol.CredentialEntity{Name: account.Identity},
				DisplayName:      account.Identity,
				ID:               protocol.URLEncodedBase64(account.Identity),
			},
			Parameters: []protocol.CredentialParameter{
				{Type: protocol.PublicKeyCredentialType, Algorithm: webauthncose.AlgES256},
				{Type: protocol.PublicKeyCredentialType, Algorithm: webauthncose.AlgEdDSA},
				{Type: protocol.PublicKeyCredentialType, Algorithm: webauthncose.AlgRS256},
			},
			Timeout:     timeoutMillis(challenge),
			Attestation: protocol.PreferNoAttestation,
		},
	}, nil
}

// AuthenticationOptions builds the credential request options for an
// authentication ceremony, pinned to the stored credential
func (v *WebAuthnVerifier) AuthenticationOptions(account *core.Account, challenge core.Challenge) (*protocol.CredentialAssertion, error) {
	if !account.Registered() {
		return nil, core.ErrNoCredential
	}

	return &protocol.CredentialAssertion{
		Response: protocol.PublicKeyCredentialRequestOptions{
			Challenge:      protocol.URLEncodedBase64(challenge.Nonce),
			Timeout:        timeoutMillis(challenge),
			RelyingPartyID: v.webAuthn.Config.RPID,
			AllowedCredentials: []protocol.CredentialDescriptor{
				{
					Type:         protocol.PublicKeyCredentialType,
					CredentialID: protocol.URLEncodedBase64(account.Credential.ID),
				},
			},
			UserVerification: protocol.VerificationPreferred,
		},
	}, nil
}

// ParseRegistration decodes an attestation response body
func (v *WebAuthnVerifier) ParseRegistration(body []byte) (*protocol.ParsedCredentialCreationData, error) {
	parsed, err := protocol.ParseCredentialCreationResponseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse attestation response: %w", core.ErrVerificationFailed)
	}
	return parsed, nil
}

// ParseAssertion decodes an assertion response body
func (v *WebAuthnVerifier) ParseAssertion(body []byte) (*protocol.ParsedCredentialAssertionData, error) {
	parsed, err := protocol.ParseCredentialRequestResponseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse assertion response: %w", core.ErrVerificationFailed)
	}
	return parsed, nil
}

// VerifyRegistration validates the attestation against the pending challenge
// and extracts the new credential
func (v *WebAuthnVerifier) VerifyRegistration(account *core.Account, challenge core.Challenge, parsed *protocol.ParsedCredentialCreationData) (*core.Credential, error) {
	// The signed clientData must carry the challenge this ceremony issued
	if parsed.Response.CollectedClientData.Challenge != challenge.Encoded() {
		return nil, core.ErrChallengeMismatch
	}

	credential, err := v.webAuthn.CreateCredential(accountUser{account}, v.sessionData(account, challenge, nil), parsed)
	if err != nil {
		return nil, fmt.Errorf("attestation rejected: %w", core.ErrVerificationFailed)
	}

	return &core.Credential{
		ID:        credential.ID,
		PublicKey: credential.PublicKey,
		SignCount: credential.Authenticator.SignCount,
		Flags: core.CredentialFlags{
			UserPresent:    credential.Flags.UserPresent,
			UserVerified:   credential.Flags.UserVerified,
			BackupEligible: credential.Flags.BackupEligible,
			BackupState:    credential.Flags.BackupState,
		},
	}, nil
}

// VerifyAssertion validates the assertion signature against the stored
// public key and reports the authenticator's new signature counter
func (v *WebAuthnVerifier) VerifyAssertion(account *core.Account, challenge core.Challenge, parsed *protocol.ParsedCredentialAssertionData) (uint32, error) {
	if !account.Registered() {
		return 0, core.ErrNoCredential
	}
	if !bytes.Equal(parsed.RawID, account.Credential.ID) {
		return 0, core.ErrCredentialMismatch
	}
	if parsed.Response.CollectedClientData.Challenge != challenge.Encoded() {
		return 0, core.ErrChallengeMismatch
	}

	session := v.sessionData(account, challenge, [][]byte{account.Credential.ID})
	credential, err := v.webAuthn.ValidateLogin(accountUser{account}, session, parsed)
	if err != nil {
		return 0, fmt.Errorf("assertion rejected: %w", core.ErrVerificationFailed)
	}

	return credential.Authenticator.SignCount, nil
}

func (v *WebAuthnVerifier) sessionData(account *core.Account, challenge core.Challenge, allowedIDs [][]byte) webauthn.SessionData {
	return webauthn.SessionData{
		Challenge:            challenge.Encoded(),
		RelyingPartyID:       v.webAuthn.Config.RPID,
		UserID:               []byte(account.Identity),
		AllowedCredentialIDs: allowedIDs,
		Expires:              challenge.ExpiresAt,
		UserVerification:     protocol.VerificationPreferred,
	}
}

// accountUser adapts a ledger account to the webauthn.User interface
type accountUser struct {
	account *core.Account
}

func (u accountUser) WebAuthnID() []byte {
	return []byte(u.account.Identity)
}

func (u accountUser) WebAuthnName() string {
	return u.account.Identity
}

func (u accountUser) WebAuthnDisplayName() string {
	return u.account.Identity
}

func (u accountUser) WebAuthnIcon() string {
	return ""
}

func (u accountUser) WebAuthnCredentials() []webauthn.Credential {
	if !u.account.Registered() {
		return nil
	}
	stored := u.account.Credential
	return []webauthn.Credential{
		{
			ID:        stored.ID,
			PublicKey: stored.PublicKey,
			Flags: webauthn.CredentialFlags{
				UserPresent:    stored.Flags.UserPresent,
				UserVerified:   stored.Flags.UserVerified,
				BackupEligible: stored.Flags.BackupEligible,
				BackupState:    stored.Flags.BackupState,
			},
			Authenticator: webauthn.Authenticator{
				SignCount: stored.SignCount,
			},
		},
	}
}

func timeoutMillis(challenge core.Challenge) int {
	if challenge.ExpiresAt.IsZero() {
		return 0
	}
	return int(challenge.ExpiresAt.Sub(challenge.IssuedAt).Milliseconds())
}
