// package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env variable names kept compatible with the project's .env.sample.
const (
	EnvAppID   = "app_api_id"
	EnvAppHash = "app_api_hash"
)

// Config holds all application configuration.
type Config struct {
	// telegram api credentials (https://my.telegram.org)
	AppID   int
	AppHash string

	// logging
	LogLevel string
}

// Load reads configuration from a .env file (if present) and the process
// environment. Credentials are required; everything else has defaults.
func Load() (*Config, error) {
	// missing .env is fine, the variables may come from the environment
	_ = godotenv.Load()

	rawID := os.Getenv(EnvAppID)
	appHash := os.Getenv(EnvAppHash)

	if rawID == "" || appHash == "" {
		return nil, fmt.Errorf(
			"missing required environment variables: %s and %s. "+
				"Please copy .env.sample to .env and set these values",
			EnvAppID, EnvAppHash,
		)
	}

	appID, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid integer, got: %q", EnvAppID, rawID)
	}
	if appID <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer, got: %d", EnvAppID, appID)
	}

	return &Config{
		AppID:    appID,
		AppHash:  appHash,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
