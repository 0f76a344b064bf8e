package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/internal/gateway"
	"github.com/ovasconcelos/discline/internal/rest"
	"github.com/ovasconcelos/discline/pkg/log"
)

// DefaultMaxMessages is the per-channel history kept by interactive clients.
const DefaultMaxMessages = 100

// Config holds CLI configuration for discline.
type Config struct {
	Token string

	GatewayURL  string
	APIBaseURL  string
	HTTPTimeout time.Duration
	Intents     uint32

	LogLevel string

	Theme       string
	VimMode     bool
	MaxMessages int
}

// DefaultConfig returns a Config with default values. The token is left
// empty; it comes from the file, the --token flag or DISCORD_TOKEN.
func DefaultConfig() Config {
	return Config{
		GatewayURL:  gateway.DefaultURL,
		APIBaseURL:  rest.DefaultBaseURL,
		HTTPTimeout: rest.DefaultTimeout,
		Intents:     uint32(gateway.DefaultIntents),
		LogLevel:    "info",
		Theme:       "default",
		MaxMessages: DefaultMaxMessages,
	}
}

// Validate checks the configuration and normalizes URLs and the token.
func (c *Config) Validate() error {
	c.Token = strings.TrimSpace(c.Token)
	if c.Token == "" {
		return domain.ErrMissingToken
	}

	if err := checkURL("gateway-url", c.GatewayURL, "ws", "wss"); err != nil {
		return err
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if err := checkURL("api-url", c.APIBaseURL, "http", "https"); err != nil {
		return err
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("%w: max_messages must be positive", domain.ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func checkURL(name, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, name, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q must be a %s URL", domain.ErrInvalidConfig, name, raw, strings.Join(schemes, "/"))
}

// configSetter applies values unless the corresponding flag was set
// explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setUint32 sets a uint32 value if non-zero and flag not changed.
func (s *configSetter) setUint32(flag string, value uint32, dst *uint32) {
	if value == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value and sets dst if positive.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
