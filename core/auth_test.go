package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"a@x.com", "a@x.com", nil},
		{"  A@X.Com ", "a@x.com", nil},
		{"\tUSER@EXAMPLE.COM\n", "user@example.com", nil},
		{"", "", ErrInvalidIdentity},
		{"   ", "", ErrInvalidIdentity},
	}

	for _, tt := range tests {
		got, err := NormalizeIdentity(tt.in)
		if tt.err != nil {
			require.ErrorIs(t, err, tt.err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestChallengeExpired(t *testing.T) {
	now := time.Now()

	challenge := Challenge{ExpiresAt: now.Add(time.Minute)}
	require.False(t, challenge.Expired(now))
	require.True(t, challenge.Expired(now.Add(2*time.Minute)))

	// Zero expiry means no TTL
	require.False(t, Challenge{}.Expired(now))
}

func TestAccountRegistered(t *testing.T) {
	require.False(t, (&Account{Identity: "a@x.com"}).Registered())
	require.True(t, (&Account{Identity: "a@x.com", Credential: &Credential{}}).Registered())
}
