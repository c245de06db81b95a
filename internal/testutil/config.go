package testutil

import (
	"testing"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	Debug             bool
	SurfaceSaveErrors bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		Debug:             config.Debug,
		SurfaceSaveErrors: config.SurfaceSaveErrors,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.Debug = state.Debug
	config.SurfaceSaveErrors = state.SurfaceSaveErrors
}

// ResetConfig resets viper and the config globals, registers the defaults,
// and restores everything when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.InitConfig()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetupTestStorage points the sqlite backend and log file into env.
// Returns the database path.
func SetupTestStorage(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("bookfinder.db")
	viper.Set("storage.backend", "sqlite")
	viper.Set("storage.dbfile", dbPath)
	viper.Set("log.file", env.Path("bookfinder.log"))
	return dbPath
}
