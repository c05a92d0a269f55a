package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the standard claims for session tokens. The JWT ID is
// the session ID whose membership in the valid-session set is checked on
// every request.
type SessionClaims struct {
	jwt.RegisteredClaims
}
