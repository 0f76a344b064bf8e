package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the on-disk TOML layout. Durations are strings.
type FileConfig struct {
	Auth    AuthSection    `toml:"auth"`
	UI      UISection      `toml:"ui"`
	Cache   CacheSection   `toml:"cache"`
	Network NetworkSection `toml:"network"`
	Log     LogSection     `toml:"log"`
}

type AuthSection struct {
	Token string `toml:"token"`
}

type UISection struct {
	Theme   string `toml:"theme"`
	VimMode *bool  `toml:"vim_mode"`
}

type CacheSection struct {
	MaxMessages int `toml:"max_messages"`
}

type NetworkSection struct {
	GatewayURL  string `toml:"gateway_url"`
	APIBaseURL  string `toml:"api_base_url"`
	HTTPTimeout string `toml:"http_timeout"`
	Intents     uint32 `toml:"intents"`
}

type LogSection struct {
	Level string `toml:"level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns <user config dir>/discline/config.toml, or ""
// when the platform has no config directory.
func DefaultConfigPath() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "discline", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("token", fc.Auth.Token, &cfg.Token)
	s.setString("gateway-url", fc.Network.GatewayURL, &cfg.GatewayURL)
	s.setString("api-url", fc.Network.APIBaseURL, &cfg.APIBaseURL)
	s.setString("log-level", fc.Log.Level, &cfg.LogLevel)
	s.setString("theme", fc.UI.Theme, &cfg.Theme)

	if err := s.setDuration("timeout", fc.Network.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setUint32("intents", fc.Network.Intents, &cfg.Intents)
	s.setInt("max-messages", fc.Cache.MaxMessages, &cfg.MaxMessages)
	s.setBool("vim-mode", fc.UI.VimMode, &cfg.VimMode)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
