package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	t.Parallel()

	t.Run("requires secret key", func(t *testing.T) {
		_, err := New(Config{})

		require.Error(t, err)
	})

	t.Run("issue and parse roundtrip", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret"})
		require.NoError(t, err)

		token, expiresAt, err := m.Issue("cms-host")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.WithinDuration(t, time.Now().Add(defaultTokenTTL), expiresAt, 5*time.Second)

		service, err := m.Parse(token)
		require.NoError(t, err)
		require.Equal(t, "cms-host", service)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret"})
		require.NoError(t, err)
		other, err := New(Config{SecretKey: "other-secret"})
		require.NoError(t, err)

		token, _, err := m.Issue("cms-host")
		require.NoError(t, err)

		_, err = other.Parse(token)
		require.Error(t, err, "token signed with another key must not validate")
	})

	t.Run("expired token fails", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret", TTL: -time.Hour})
		require.NoError(t, err)

		token, _, err := m.Issue("cms-host")
		require.NoError(t, err)

		_, err = m.Parse(token)
		require.Error(t, err)
	})

	t.Run("garbage fails", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret"})
		require.NoError(t, err)

		_, err = m.Parse("not.a.token")
		require.Error(t, err)
	})
}
