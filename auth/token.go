// Package auth keeps the API session token on disk and hands it to
// transport clients.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shafreeck/studio/clock"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrTokenExpired = errors.New("session expired, please log in again")
)

// DefaultLeeway is how long before its exp a token is treated as expired.
const DefaultLeeway = 30 * time.Second

type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// Claims are the parts of an access token shown by whoami.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

type TokenStore struct {
	path   string
	clock  clock.Clock
	leeway time.Duration
}

type Option func(s *TokenStore)

func WithClock(c clock.Clock) Option {
	return func(s *TokenStore) { s.clock = c }
}

func WithLeeway(d time.Duration) Option {
	return func(s *TokenStore) { s.leeway = d }
}

func NewTokenStore(path string, opts ...Option) *TokenStore {
	s := &TokenStore{path: path, clock: clock.Real(), leeway: DefaultLeeway}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenStore) Path() string {
	return s.path
}

func (s *TokenStore) Save(access, refresh string) error {
	if access == "" {
		return errors.New("empty access token")
	}
	data, err := json.MarshalIndent(Token{
		AccessToken:  access,
		RefreshToken: refresh,
		SavedAt:      s.clock.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load returns the stored token or ErrNotLoggedIn when there is none.
func (s *TokenStore) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	return &tok, nil
}

func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Valid reports whether access is usable. Tokens that are not JWTs or
// carry no exp claim are opaque to the client and always valid.
func (s *TokenStore) Valid(access string) bool {
	claims, err := ParseClaims(access)
	if err != nil || claims.ExpiresAt.IsZero() {
		return true
	}
	return claims.ExpiresAt.After(s.clock.Now().Add(s.leeway))
}

// AuthorizationHeader returns the bearer header for the stored token.
func (s *TokenStore) AuthorizationHeader(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := s.Load()
	if err != nil {
		return "", err
	}
	if !s.Valid(tok.AccessToken) {
		return "", ErrTokenExpired
	}
	return "Bearer " + tok.AccessToken, nil
}

// ParseClaims reads the claims of a JWT without verifying its signature.
// The server verifies tokens, the client only needs the expiry.
func ParseClaims(access string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return nil, err
	}

	var c Claims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	c.Subject, _ = claims.GetSubject()
	if email, ok := claims["email"].(string); ok {
		c.Email = email
	}
	return &c, nil
}
