package ports

// ChallengeSource produces cryptographically random challenge nonces.
// Each call is independent of prior outputs.
type ChallengeSource interface {
	Generate() ([]byte, error)
}
