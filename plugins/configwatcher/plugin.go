// Package configwatcher reloads a session's token when its config file
// changes on disk.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ovasconcelos/discline/internal/app"
	"github.com/ovasconcelos/discline/internal/cliconfig"
	"github.com/ovasconcelos/discline/pkg/log"
)

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay coalesces the burst of events an editor save produces.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Plugin watches the directory holding the config file. fsnotify watches on
// the file itself are lost when editors replace it with a rename.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	path     string
	token    string
	logger   log.Logger
	reload   func(token string) error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching cfg.ConfigPath. The watch is active when it
// returns. Without a path or reload hook the plugin stays idle.
func (p *Plugin) Initialize(ctx context.Context, cfg app.PluginConfig) error {
	logger := log.OrNoop(cfg.Logger)

	if cfg.ConfigPath == "" || cfg.Reload == nil {
		logger.Warn("config watcher disabled: no config file")
		return nil
	}

	path := filepath.Clean(cfg.ConfigPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.path = path
	p.token = strings.TrimSpace(cfg.Token)
	p.logger = logger
	p.reload = cfg.Reload
	p.cancel = cancel
	p.mu.Unlock()

	logger.Info("config watcher started", log.String("path", path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			p.debounceCheck(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceCheck(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.check()
	})
}

// check re-reads the file and calls the reload hook when the token changed.
func (p *Plugin) check() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config watcher: reload failed", log.String("path", p.path), log.Err(err))
		return
	}

	token := strings.TrimSpace(fc.Auth.Token)
	p.mu.Lock()
	if token == "" || token == p.token {
		p.mu.Unlock()
		return
	}
	p.token = token
	reload := p.reload
	p.mu.Unlock()

	if err := reload(token); err != nil {
		p.logger.Error("config watcher: token reload failed", log.Err(err))
		return
	}
	p.logger.Info("config watcher: token reloaded")
}
