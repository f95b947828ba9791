package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// TokenKeys are checked in order when loading; the browser client stored the
// token under any of these names.
var TokenKeys = []string{"token", "authToken", "auth_token"}

// TokenStore persists tokens by key.
type TokenStore interface {
	LoadToken(ctx context.Context, key string) (string, error)
	SaveToken(ctx context.Context, key, token string) error
	ClearToken(ctx context.Context, key string) error
}

// Store holds the bearer token the client sends to the backend. The signature
// is never verified here; only an expired exp claim makes a token unusable.
type Store struct {
	mu      sync.RWMutex
	token   string
	persist TokenStore
	now     func() time.Time
}

func NewStore(persist TokenStore) *Store {
	return &Store{
		persist: persist,
		now:     time.Now,
	}
}

// Load reads the first non-empty token under TokenKeys.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	for _, key := range TokenKeys {
		token, err := s.persist.LoadToken(ctx, key)
		if err != nil {
			return err
		}
		if token = strings.TrimSpace(token); token != "" {
			s.mu.Lock()
			s.token = token
			s.mu.Unlock()
			return nil
		}
	}
	return nil
}

func (s *Store) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	if expired(token, s.now()) {
		return errors.New("token is expired")
	}

	if s.persist != nil {
		if err := s.persist.SaveToken(ctx, TokenKeys[0], token); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.persist == nil {
		return nil
	}
	for _, key := range TokenKeys {
		if err := s.persist.ClearToken(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Token returns the held token when it is usable.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" || expired(token, s.now()) {
		return "", false
	}
	return token, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens and JWTs without exp are left to the backend to judge.
func expired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	expiresAt, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return false
	}
	return !now.Before(expiresAt.Time)
}
