// Package auth answers whether the user holds a usable account token.
//
// Tokens are issued and verified by the account service. Locally they are
// only decoded to read the expiry and profile, so no signing key is needed.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Profile is the user data the account service embeds in its tokens.
type Profile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Claims is the token payload.
type Claims struct {
	Data Profile `json:"data"`
	jwt.RegisteredClaims
}

// Session holds the current token, if any.
type Session struct {
	token string
	now   func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session for token. An empty token means logged out.
func New(token string, opts ...Option) *Session {
	s := &Session{
		token: strings.TrimSpace(token),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load prefers token and falls back to the contents of tokenFile. A missing
// token file is not an error; the session is simply logged out.
func Load(token, tokenFile string, opts ...Option) (*Session, error) {
	if strings.TrimSpace(token) != "" || tokenFile == "" {
		return New(token, opts...), nil
	}

	data, err := os.ReadFile(tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return New("", opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return New(string(data), opts...), nil
}

// CurrentToken returns the raw token and whether one is present.
func (s *Session) CurrentToken() (string, bool) {
	return s.token, s.token != ""
}

// IsLoggedIn reports whether a token is present, decodes, and has not expired.
func (s *Session) IsLoggedIn() bool {
	claims, err := s.claims()
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return s.now().Before(claims.ExpiresAt.Time)
}

// Profile returns the user data carried in the token.
func (s *Session) Profile() (Profile, error) {
	claims, err := s.claims()
	if err != nil {
		return Profile{}, err
	}
	return claims.Data, nil
}

func (s *Session) claims() (*Claims, error) {
	if s.token == "" {
		return nil, errors.New("no token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}
