package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := Claims{
		Data: Profile{ID: "u1", Username: "reader", Email: "reader@example.com"},
	}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func clock() Option {
	return WithClock(func() time.Time { return now })
}

func TestIsLoggedIn(t *testing.T) {
	future := now.Add(time.Hour)
	past := now.Add(-time.Minute)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "valid", token: signToken(t, &future), want: true},
		{name: "no expiry", token: signToken(t, nil), want: true},
		{name: "expired", token: signToken(t, &past), want: false},
		{name: "empty", token: "", want: false},
		{name: "garbage", token: "not.a.jwt", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.token, clock())
			assert.Equal(t, tt.want, s.IsLoggedIn())
		})
	}
}

func TestCurrentToken(t *testing.T) {
	tok, ok := New("  abc  ").CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = New("").CurrentToken()
	assert.False(t, ok)
}

func TestProfile(t *testing.T) {
	future := now.Add(time.Hour)
	s := New(signToken(t, &future), clock())

	p, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, "reader", p.Username)
	assert.Equal(t, "u1", p.ID)

	_, err = New("").Profile()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	future := now.Add(time.Hour)
	token := signToken(t, &future)
	dir := t.TempDir()
	file := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(file, []byte(token+"\n"), 0o600))

	t.Run("explicit token wins", func(t *testing.T) {
		s, err := Load("explicit", file)
		require.NoError(t, err)
		tok, _ := s.CurrentToken()
		assert.Equal(t, "explicit", tok)
	})

	t.Run("token file", func(t *testing.T) {
		s, err := Load("", file, clock())
		require.NoError(t, err)
		tok, _ := s.CurrentToken()
		assert.Equal(t, token, tok)
		assert.True(t, s.IsLoggedIn())
	})

	t.Run("missing file", func(t *testing.T) {
		s, err := Load("", filepath.Join(dir, "nope"))
		require.NoError(t, err)
		assert.False(t, s.IsLoggedIn())
	})

	t.Run("unreadable path", func(t *testing.T) {
		_, err := Load("", dir)
		assert.Error(t, err)
	})
}
