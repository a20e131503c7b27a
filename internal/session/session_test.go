// ABOUTME: Tests for the local token store
// ABOUTME: Covers save/load, env precedence, JWT inspection, expiry and invalidation

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("gateway-secret"))
	require.NoError(t, err)
	return token
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv(EnvToken, "")
	return NewStore(filepath.Join(t.TempDir(), "tertulia", "token"), nil)
}

func TestStore_NoToken(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	token := signToken(t, "user-1", time.Now().Add(time.Hour))

	require.NoError(t, s.Save(token))

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_OpaqueTokenIsAccepted(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("not-a-jwt"))

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", got)
}

func TestStore_ExpiredTokenIsCleared(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(signToken(t, "user-1", time.Now().Add(-time.Minute))))

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrExpired)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "token file should be removed")

	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStore_Invalidate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("abc"))

	s.Invalidate()

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	// Invalidating twice is harmless
	s.Invalidate()
}

func TestStore_EnvTokenTakesPrecedence(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("file-token"), 0o600))

	s := NewStore(path, nil)

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", got)

	// A rejected env token stays rejected for the rest of the run
	s.Invalidate()
	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	// A new login replaces it
	require.NoError(t, s.Save("fresh"))
	got, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	claims, err := Inspect(signToken(t, "user-42", exp))
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))

	claims, err = Inspect(signToken(t, "user-42", time.Time{}))
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.IsZero())

	_, err = Inspect("garbage")
	assert.Error(t, err)
}
