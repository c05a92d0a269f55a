package challenge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	source := NewRandSource()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		nonce, err := source.Generate()
		require.NoError(t, err)
		require.Len(t, nonce, NonceLength)

		require.False(t, seen[string(nonce)], "nonce repeated")
		seen[string(nonce)] = true
	}
}
