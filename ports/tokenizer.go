package ports

import "github.com/layer-3/garuda/core"

// SessionTokenizer converts between sessions and bearer tokens
type SessionTokenizer interface {
	// SessionToToken serializes a session into a signed token
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession parses and validates a token. Returns
	// core.ErrSessionExpired for well-formed but expired tokens and
	// core.ErrSessionUnknown for anything unparseable.
	TokenToSession(token string) (*core.Session, error)
}
