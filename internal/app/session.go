// Package app supervises gateway sessions: it owns the connect, pump and
// reconnect loop, the lifecycle state machine and session plugins.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/internal/gateway"
	"github.com/ovasconcelos/discline/internal/ports"
	"github.com/ovasconcelos/discline/pkg/log"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	Token      string
	GatewayURL string
	Intents    gateway.Intents

	// ConfigPath is passed through to plugins.
	ConfigPath string

	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// SetDefaults fills zero fields.
func (c *SessionConfig) SetDefaults() {
	if c.GatewayURL == "" {
		c.GatewayURL = gateway.DefaultURL
	}
	if c.Intents == 0 {
		c.Intents = gateway.DefaultIntents
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = DefaultBackoffInitial
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = DefaultBackoffMax
	}
}

// Validate checks the configuration.
func (c SessionConfig) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return domain.ErrMissingToken
	}
	if c.BackoffMax < c.BackoffInitial {
		return fmt.Errorf("%w: backoff max %s below initial %s", domain.ErrInvalidConfig, c.BackoffMax, c.BackoffInitial)
	}
	return nil
}

// EventHandler receives every event a session's connections produce.
// It is called from the session goroutine; slow handlers delay reads.
type EventHandler interface {
	OnEvent(ctx context.Context, ev gateway.Event)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, ev gateway.Event)

// OnEvent calls f(ctx, ev).
func (f EventHandlerFunc) OnEvent(ctx context.Context, ev gateway.Event) { f(ctx, ev) }

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	logger  log.Logger
	dialer  ports.Dialer
	emitter EventEmitter
	plugins []Plugin
}

// WithLogger sets the logger for the session and its connections.
func WithLogger(l log.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithDialer overrides the gateway dialer.
func WithDialer(d ports.Dialer) Option {
	return func(o *sessionOptions) { o.dialer = d }
}

// WithStateListener receives lifecycle transitions.
func WithStateListener(e EventEmitter) Option {
	return func(o *sessionOptions) { o.emitter = e }
}

// WithPlugins registers plugins.
func WithPlugins(p ...Plugin) Option {
	return func(o *sessionOptions) { o.plugins = append(o.plugins, p...) }
}

// Session keeps one gateway connection open at a time. A connection that
// ends with reconnect-required, closed, transport or protocol errors is
// replaced by a brand-new one after a backoff. Authentication failures
// crash the session.
type Session struct {
	cfg       SessionConfig
	handler   EventHandler
	opts      sessionOptions
	logger    log.Logger
	lifecycle *Lifecycle

	mu          sync.Mutex
	token       string
	conn        *gateway.Conn
	cancel      context.CancelFunc
	done        chan struct{}
	err         error
	pluginsLive []Plugin
}

// NewSession creates a stopped session.
func NewSession(cfg SessionConfig, handler EventHandler, opts ...Option) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: nil event handler", domain.ErrInvalidConfig)
	}

	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.OrNoop(o.logger)

	return &Session{
		cfg:       cfg,
		handler:   handler,
		opts:      o,
		logger:    logger,
		lifecycle: NewLifecycle(logger, o.emitter),
		token:     cfg.Token,
	}, nil
}

// Start initializes plugins and runs the session loop in the background.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if !s.lifecycle.CanStart() {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(StateStarting, "Start() called"); err != nil {
		s.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.lifecycle.SetCancel(cancel)
	s.done = done
	s.err = nil

	pluginCfg := PluginConfig{
		ConfigPath: s.cfg.ConfigPath,
		Token:      s.token,
		Logger:     s.logger,
		Reload:     s.Reconnect,
	}
	s.mu.Unlock()

	for _, p := range s.opts.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
			cancel()
			s.shutdownPlugins()
			close(done)
			_ = s.lifecycle.TransitionTo(StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.mu.Lock()
		s.pluginsLive = append(s.pluginsLive, p)
		s.mu.Unlock()
		s.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if err := s.lifecycle.TransitionTo(StateRunning, "session loop starting"); err != nil {
		cancel()
		s.shutdownPlugins()
		close(done)
		return err
	}

	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		defer close(done)

		err := s.run(runCtx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}

		s.logger.Error("session stopped", log.Err(err))
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		cancel()
		_ = s.lifecycle.TransitionTo(StateCrashed, err.Error())
		s.shutdownPlugins()
	}()

	return nil
}

// Stop cancels the session loop, waits for it and shuts down plugins.
// It returns ErrShutdownTimeout if the loop does not exit in time.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(ShutdownTimeout)

	s.shutdownPlugins()

	if err != nil {
		_ = s.lifecycle.TransitionTo(StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the lifecycle state.
func (s *Session) Status() State {
	return s.lifecycle.State()
}

// Done is closed when the session loop exits, either through Stop or a
// crash. It is nil before the first Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error that crashed the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Reconnect switches to token and drops the current connection so the next
// one identifies with it.
func (s *Session) Reconnect(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingToken
	}

	s.mu.Lock()
	s.token = token
	conn := s.conn
	s.mu.Unlock()

	s.logger.Info("token changed, reconnecting")
	if conn != nil {
		_ = conn.Close()
	}
	return nil
}

// run connects, pumps events and reconnects until ctx is done or a fatal
// error occurs.
func (s *Session) run(ctx context.Context) error {
	b := newBackoff(s.cfg.BackoffInitial, s.cfg.BackoffMax)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := gateway.Connect(ctx, s.currentToken(), s.cfg.GatewayURL, s.connectOptions()...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if domain.IsFatal(err) {
				return err
			}
			s.logger.Warn("gateway connect failed",
				log.Err(err),
				log.Duration("retry_in", b.Current()),
			)
			if err := b.Sleep(ctx); err != nil {
				return err
			}
			continue
		}

		s.setConn(conn)
		ready, err := s.pump(ctx, conn)
		s.setConn(nil)
		_ = conn.Close()

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if domain.IsFatal(err) {
			return err
		}

		if ready {
			b.Reset()
		}
		switch {
		case errors.Is(err, domain.ErrReconnectRequired):
			s.logger.Info("gateway requested reconnect")
		default:
			s.logger.Warn("gateway connection lost",
				log.Err(err),
				log.Duration("retry_in", b.Current()),
			)
		}
		if err := b.Sleep(ctx); err != nil {
			return err
		}
	}
}

// pump delivers events from conn until it fails. ready reports whether the
// connection reached READY.
func (s *Session) pump(ctx context.Context, conn *gateway.Conn) (ready bool, err error) {
	for {
		ev, err := conn.NextEvent(ctx)
		if err != nil {
			return ready, err
		}
		if _, ok := ev.(*gateway.ReadyEvent); ok {
			ready = true
		}
		s.handler.OnEvent(ctx, ev)
	}
}

func (s *Session) connectOptions() []gateway.Option {
	opts := []gateway.Option{
		gateway.WithLogger(s.logger),
		gateway.WithIntents(s.cfg.Intents),
	}
	if s.opts.dialer != nil {
		opts = append(opts, gateway.WithDialer(s.opts.dialer))
	}
	return opts
}

func (s *Session) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) setConn(c *gateway.Conn) {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
}

// shutdownPlugins shuts down initialized plugins in reverse order.
func (s *Session) shutdownPlugins() {
	s.mu.Lock()
	plugins := s.pluginsLive
	s.pluginsLive = nil
	s.mu.Unlock()

	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
		} else {
			s.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}
