package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// Debug enables debug level logging
	Debug bool
	// SurfaceSaveErrors shows failed saves in the UI instead of only logging them
	SurfaceSaveErrors bool
)

// Config is the resolved application configuration.
type Config struct {
	Search      SearchConfig
	GoogleBooks GoogleBooksConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Save        SaveConfig
	Auth        AuthConfig
	LogFile     string
}

// SearchConfig controls the search cycle.
type SearchConfig struct {
	Debounce    time.Duration
	MinInterval time.Duration
}

// GoogleBooksConfig configures the catalog client.
type GoogleBooksConfig struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
}

// StorageConfig selects where saved ids are kept.
type StorageConfig struct {
	Backend string
	DBFile  string
}

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// SaveConfig configures the remote save endpoint. An empty endpoint keeps
// saved books in the local database.
type SaveConfig struct {
	Endpoint      string
	RPS           int
	SurfaceErrors bool
}

// AuthConfig locates the account token.
type AuthConfig struct {
	Token     string
	TokenFile string
}

// SetDefaults registers default values for every key.
func SetDefaults() {
	viper.SetDefault("search.debounce", "500ms")
	viper.SetDefault("search.min_interval", "5s")

	viper.SetDefault("googlebooks.base_url", "https://www.googleapis.com/books/v1")
	viper.SetDefault("googlebooks.max_results", 20)
	viper.SetDefault("googlebooks.timeout", "10s")

	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.dbfile", "./bookfinder.db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key", "bookfinder:saved_book_ids")

	viper.SetDefault("save.rps", 2)
	viper.SetDefault("save.surface_errors", false)

	viper.SetDefault("log.file", "./bookfinder.log")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()
	SurfaceSaveErrors = viper.GetBool("save.surface_errors")
}

// SetDebug sets the Debug flag
func SetDebug(debug bool) {
	Debug = debug
}

// Load reads the current viper state into a Config and validates it.
func Load() (Config, error) {
	cfg := Config{
		Search: SearchConfig{
			Debounce:    viper.GetDuration("search.debounce"),
			MinInterval: viper.GetDuration("search.min_interval"),
		},
		GoogleBooks: GoogleBooksConfig{
			BaseURL:    viper.GetString("googlebooks.base_url"),
			APIKey:     viper.GetString("googlebooks.api_key"),
			MaxResults: viper.GetInt("googlebooks.max_results"),
			Timeout:    viper.GetDuration("googlebooks.timeout"),
		},
		Storage: StorageConfig{
			Backend: viper.GetString("storage.backend"),
			DBFile:  viper.GetString("storage.dbfile"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Key:      viper.GetString("redis.key"),
		},
		Save: SaveConfig{
			Endpoint:      viper.GetString("save.endpoint"),
			RPS:           viper.GetInt("save.rps"),
			SurfaceErrors: viper.GetBool("save.surface_errors") || SurfaceSaveErrors,
		},
		Auth: AuthConfig{
			Token:     viper.GetString("auth.token"),
			TokenFile: viper.GetString("auth.tokenfile"),
		},
		LogFile: viper.GetString("log.file"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative, got %s", c.Search.Debounce)
	}
	if c.Search.MinInterval <= 0 {
		return fmt.Errorf("search.min_interval must be positive, got %s", c.Search.MinInterval)
	}
	if c.GoogleBooks.BaseURL == "" {
		return fmt.Errorf("googlebooks.base_url is required")
	}
	if c.GoogleBooks.MaxResults < 1 || c.GoogleBooks.MaxResults > 40 {
		return fmt.Errorf("googlebooks.max_results must be between 1 and 40, got %d", c.GoogleBooks.MaxResults)
	}
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.DBFile == "" {
			return fmt.Errorf("storage.dbfile is required for the sqlite backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("storage.backend must be sqlite or redis, got %q", c.Storage.Backend)
	}
	return nil
}
