package configwatcher

import "github.com/ovasconcelos/discline/internal/app"

// WithConfigWatcher returns a session Option that reloads the token when
// the config file changes.
//
// Usage:
//
//	s, err := app.NewSession(cfg, handler,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) app.Option {
	return app.WithPlugins(New(cfg))
}
