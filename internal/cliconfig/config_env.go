package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory before the environment is
// applied.
const DotEnvFile = ".env"

// TokenEnv is consulted only when no token came from the file or flags.
const TokenEnv = "DISCORD_TOKEN"

// ApplyEnvConfig applies DISCLINE_* environment variables. They override the
// file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("gateway-url", os.Getenv("DISCLINE_GATEWAY_URL"), &cfg.GatewayURL)
	s.setString("api-url", os.Getenv("DISCLINE_API_BASE_URL"), &cfg.APIBaseURL)
	s.setString("log-level", os.Getenv("DISCLINE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("DISCLINE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("max-messages", os.Getenv("DISCLINE_MAX_MESSAGES"), &cfg.MaxMessages); err != nil {
		return err
	}
	return nil
}

// ApplyTokenFallback fills an empty token from DISCORD_TOKEN. A token from
// the config file or --token always wins.
func ApplyTokenFallback(cfg *Config) {
	if cfg.Token != "" {
		return
	}
	cfg.Token = os.Getenv(TokenEnv)
}

// LoadDotEnv adds the variables in path to the process environment.
// Variables already set win over the file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
