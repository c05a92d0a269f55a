package core

import "errors"

var (
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already registered")
	ErrNoCredential       = errors.New("no credential registered")
	ErrChallengeMismatch  = errors.New("no matching pending challenge")
	ErrCredentialMismatch = errors.New("credential id mismatch")
	ErrVerificationFailed = errors.New("credential verification failed")
	ErrReplayDetected     = errors.New("signature counter regressed")
	ErrNoToken            = errors.New("no session token presented")
	ErrSessionExpired     = errors.New("session has expired")
	ErrSessionUnknown     = errors.New("session is not recognized")
)
