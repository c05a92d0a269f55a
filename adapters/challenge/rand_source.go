package challenge

import (
	"crypto/rand"
	"fmt"

	"github.com/layer-3/garuda/ports"
)

// NonceLength is the challenge size in bytes. WebAuthn requires at least 16;
// 32 matches what browser libraries generate.
const NonceLength = 32

// RandSource generates challenge nonces from crypto/rand
type RandSource struct{}

// NewRandSource creates a new random challenge source
func NewRandSource() ports.ChallengeSource {
	return RandSource{}
}

// Generate returns a fresh random nonce
func (RandSource) Generate() ([]byte, error) {
	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}
