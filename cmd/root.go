package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/bookfinder/internal/config"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the bookfinder application
type CLI struct {
	// Global flags
	Debug bool `help:"Enable debug logging"`

	// Storage flags
	Storage string `help:"Saved book storage backend (sqlite or redis)"`
	DBFile  string `name:"db-file" help:"Path to SQLite database file"`

	Search SearchCmd `cmd:"" default:"1" help:"Search for books interactively"`
	Query  QueryCmd  `cmd:"" help:"Run a single search and print the results"`
	Saved  SavedCmd  `cmd:"" help:"Inspect or clear saved books"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(os.Stdout, slog.LevelInfo)
	if err := initConfig(); err != nil {
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookfinder"),
		kong.Description("Search the Google Books catalog and keep a list of saved books."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)
	if config.Debug {
		initLogging(os.Stdout, slog.LevelDebug)
	}

	err := ctx.Run()
	if apperrors.IsStopProcessingError(err) {
		slog.Info("Stopped", "reason", err)
		return
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() error {
	// .env values become environment variables; existing variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	config.InitConfig()

	// Enable environment variable support
	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"googlebooks.api_key": "GOOGLE_BOOKS_API_KEY",
		"auth.token":          "BOOKFINDER_TOKEN",
		"save.endpoint":       "BOOKFINDER_SAVE_ENDPOINT",
		"redis.addr":          "REDIS_ADDR",
		"redis.password":      "REDIS_PASSWORD",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "key", key, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Info("Config file not found, writing default config file...")
		if err := viper.SafeWriteConfig(); err != nil {
			slog.Error("Error writing config file", "error", err)
		}
	}

	// Pick up values from the file
	config.InitConfig()
	return nil
}

func updateGlobalConfig(cli *CLI) {
	config.SetDebug(cli.Debug)

	if cli.Storage != "" {
		viper.Set("storage.backend", cli.Storage)
	}
	if cli.DBFile != "" {
		viper.Set("storage.dbfile", cli.DBFile)
	}
}

func initLogging(w io.Writer, level slog.Level) {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

func logLevel() slog.Level {
	if config.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
