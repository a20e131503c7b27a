// ABOUTME: Local bearer-token store for the gateway session
// ABOUTME: Reads the token from env or a file, inspects JWT expiry, and clears it on invalidation

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvToken overrides the token file when set.
const EnvToken = "TERTULIA_TOKEN"

// Session errors
var (
	ErrNoToken = errors.New("no access token, log in first")
	ErrExpired = errors.New("access token expired, log in again")
)

// Claims is what the client can learn from an access token without the signing key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Store keeps the access token on disk, like a browser keeps it in local storage.
type Store struct {
	mu          sync.Mutex
	path        string
	envToken    string
	invalidated bool
	now         func() time.Time
	logger      *slog.Logger
}

// NewStore creates a token store backed by path. The TERTULIA_TOKEN
// environment variable, when set, takes precedence over the file.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:     path,
		envToken: strings.TrimSpace(os.Getenv(EnvToken)),
		now:      time.Now,
		logger:   logger.With("component", "session"),
	}
}

// DefaultPath returns <dir>/token.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "token")
}

// Path returns the token file path.
func (s *Store) Path() string {
	return s.path
}

// Token returns the stored token. Tokens that are JWTs with an exp claim in
// the past are rejected locally with ErrExpired and cleared.
func (s *Store) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.readLocked()
	if err != nil {
		return "", err
	}

	claims, err := Inspect(token)
	if err == nil && !claims.ExpiresAt.IsZero() && !s.now().Before(claims.ExpiresAt) {
		s.clearLocked()
		return "", ErrExpired
	}

	return token, nil
}

func (s *Store) readLocked() (string, error) {
	if s.invalidated {
		return "", ErrNoToken
	}
	if s.envToken != "" {
		return s.envToken, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes the token to disk with owner-only permissions.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	// A fresh login supersedes both an earlier invalidation and the env token.
	s.invalidated = false
	s.envToken = ""
	s.logger.Debug("token saved", "path", s.path)
	return nil
}

// Invalidate forgets the token. Called whenever the gateway rejects it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove token file", "path", s.path, "error", err)
	}
	// An env token cannot be removed, so remember it was rejected.
	if s.envToken != "" {
		s.invalidated = true
		s.envToken = ""
	}
	s.logger.Info("session invalidated")
}

// Inspect decodes a JWT access token without verifying its signature. The
// client never holds the signing key; this is only used for the subject and
// for rejecting expired tokens before a round trip.
func Inspect(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("reading exp claim: %w", err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
