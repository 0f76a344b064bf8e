package app

import (
	"context"

	"github.com/ovasconcelos/discline/pkg/log"
)

// Plugin extends a session with work that shares its lifetime.
// Plugins are initialized in registration order on Start and shut down in
// reverse order on Stop.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. Background goroutines must exit when
	// ctx is done.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown releases the plugin's resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to each plugin on Initialize.
type PluginConfig struct {
	// ConfigPath is the TOML file the session was configured from, if any.
	ConfigPath string

	// Token is the token the session started with.
	Token string

	Logger log.Logger

	// Reload switches the session to a new token. The current connection is
	// dropped and the next one identifies with token.
	Reload func(token string) error
}
