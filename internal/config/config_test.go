package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	origDebug, origSurface := Debug, SurfaceSaveErrors
	viper.Reset()
	t.Cleanup(func() {
		Debug, SurfaceSaveErrors = origDebug, origSurface
		viper.Reset()
	})
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	InitConfig()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 5*time.Second, cfg.Search.MinInterval)
	assert.Equal(t, 20, cfg.GoogleBooks.MaxResults)
	assert.Equal(t, 10*time.Second, cfg.GoogleBooks.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "./bookfinder.db", cfg.Storage.DBFile)
	assert.Equal(t, "bookfinder:saved_book_ids", cfg.Redis.Key)
	assert.Equal(t, 2, cfg.Save.RPS)
	assert.False(t, cfg.Save.SurfaceErrors)
	assert.Empty(t, cfg.Save.Endpoint)
	assert.Equal(t, "./bookfinder.log", cfg.LogFile)
}

func TestLoadOverrides(t *testing.T) {
	resetViper(t)
	InitConfig()

	viper.Set("search.min_interval", "2s")
	viper.Set("storage.backend", "redis")
	viper.Set("redis.addr", "cache:6379")
	viper.Set("save.endpoint", "http://localhost:3001/graphql")
	viper.Set("auth.token", "tok")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Search.MinInterval)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "http://localhost:3001/graphql", cfg.Save.Endpoint)
	assert.Equal(t, "tok", cfg.Auth.Token)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
		want string
	}{
		{name: "zero interval", key: "search.min_interval", val: "0s", want: "search.min_interval"},
		{name: "negative debounce", key: "search.debounce", val: "-1s", want: "search.debounce"},
		{name: "too many results", key: "googlebooks.max_results", val: 41, want: "googlebooks.max_results"},
		{name: "unknown backend", key: "storage.backend", val: "etcd", want: "storage.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			InitConfig()
			viper.Set(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSetDebug(t *testing.T) {
	resetViper(t)

	testCases := []struct {
		name     string
		input    bool
		expected bool
	}{
		{name: "set to true", input: true, expected: true},
		{name: "set to false", input: false, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetDebug(tc.input)
			assert.Equal(t, tc.expected, Debug)
		})
	}
}
