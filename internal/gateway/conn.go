// Package gateway implements the client side of the real-time gateway:
// the Hello/Identify handshake, the heartbeat scheduler and event dispatch.
//
// A Conn is single-use. Reconnect and invalid-session signals, a closed
// socket and Close all end it for good; callers open a new one with Connect.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ovasconcelos/discline/internal/adapters/ws"
	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/internal/ports"
	"github.com/ovasconcelos/discline/pkg/log"
)

// DefaultURL is the production gateway endpoint.
const DefaultURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway send budget.
const (
	DefaultSendLimit  = 120
	DefaultSendWindow = 60 * time.Second
)

const clientName = "discline"

// Option configures Connect.
type Option func(*options)

type options struct {
	dialer     ports.Dialer
	logger     log.Logger
	intents    Intents
	sendLimit  int
	sendWindow time.Duration
}

// WithDialer sets the socket dialer. The default dials with nhooyr.io/websocket.
func WithDialer(d ports.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIntents overrides DefaultIntents.
func WithIntents(i Intents) Option {
	return func(o *options) { o.intents = i }
}

// WithSendLimit caps outbound frames to n per window.
func WithSendLimit(n int, window time.Duration) Option {
	return func(o *options) {
		o.sendLimit = n
		o.sendWindow = window
	}
}

// Conn is one authenticated gateway connection.
//
// NextEvent must be called from a single goroutine. The accessors are safe
// for concurrent use.
type Conn struct {
	socket  ports.Socket
	logger  log.Logger
	limiter *rate.Limiter

	// writeMu serializes socket writes between the reader and the heartbeat.
	writeMu sync.Mutex

	mu        sync.Mutex
	state     domain.ConnectionState
	seq       uint64
	hasSeq    bool
	sessionID string
	interval  time.Duration
	lastBeat  time.Time
	latency   time.Duration

	cancel        context.CancelFunc
	heartbeatDone chan struct{}
	closeOnce     sync.Once
	closeErr      error
}

// Connect dials url, waits for Hello, sends Identify with token and starts
// the heartbeat. Nothing is written if the first frame is not a valid Hello.
func Connect(ctx context.Context, token, url string, opts ...Option) (*Conn, error) {
	o := options{
		intents:    DefaultIntents,
		sendLimit:  DefaultSendLimit,
		sendWindow: DefaultSendWindow,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = ws.NewDialer()
	}
	if o.sendLimit <= 0 || o.sendWindow <= 0 {
		return nil, fmt.Errorf("%w: send limit must be positive", domain.ErrInvalidConfig)
	}
	logger := log.OrNoop(o.logger)

	socket, err := o.dialer.Dial(ctx, url)
	if err != nil {
		return nil, &domain.TransportError{Op: "dial", Err: err}
	}

	c := &Conn{
		socket:        socket,
		logger:        logger,
		limiter:       rate.NewLimiter(rate.Every(o.sendWindow/time.Duration(o.sendLimit)), o.sendLimit),
		state:         domain.StateAwaitingHello,
		heartbeatDone: make(chan struct{}),
	}

	hello, err := c.awaitHello(ctx)
	if err != nil {
		_ = socket.Close()
		return nil, err
	}

	c.mu.Lock()
	c.interval = time.Duration(hello.HeartbeatInterval) * time.Millisecond
	c.mu.Unlock()

	identify := Identify{
		Token: token,
		Properties: IdentifyProperties{
			OS:      runtime.GOOS,
			Browser: clientName,
			Device:  clientName,
		},
		Intents: o.intents,
	}
	if err := c.send(ctx, outbound{Op: OpIdentify, D: identify}); err != nil {
		_ = socket.Close()
		return nil, &domain.TransportError{Op: "identify", Err: err}
	}
	c.setState(domain.StateIdentified)

	hbCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.heartbeatLoop(hbCtx, c.HeartbeatInterval())

	logger.Debug("gateway identified",
		log.String("url", url),
		log.Duration("heartbeat_interval", c.HeartbeatInterval()),
	)
	return c, nil
}

func (c *Conn) awaitHello(ctx context.Context) (Hello, error) {
	data, err := c.socket.Read(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Hello{}, ctxErr
		}
		if errors.Is(err, domain.ErrProtocol) {
			return Hello{}, fmt.Errorf("awaiting hello: %w", err)
		}
		return Hello{}, fmt.Errorf("%w: awaiting hello: %w", domain.ErrClosed, err)
	}
	f, err := decodeFrame(data)
	if err != nil {
		return Hello{}, err
	}
	return decodeHello(f)
}

// NextEvent returns the next READY or MESSAGE_CREATE dispatch. Heartbeat
// requests, acks and unknown frames are handled internally.
//
// It returns domain.ErrReconnectRequired on op 7, domain.ErrAuthentication
// on op 9 and domain.ErrClosed when the socket ends. The connection is
// closed in all three cases. Cancelling ctx may also close the socket.
// A frame that cannot be decoded returns domain.ErrProtocol and leaves the
// connection open.
func (c *Conn) NextEvent(ctx context.Context) (Event, error) {
	for {
		data, err := c.socket.Read(ctx)
		if errors.Is(err, domain.ErrProtocol) {
			return nil, err
		}
		if err != nil {
			_ = c.Close()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrClosed, err)
		}

		f, err := decodeFrame(data)
		if err != nil {
			return nil, err
		}
		if f.S != nil {
			c.recordSequence(*f.S)
		}

		switch f.Op {
		case OpDispatch:
			ev, err := c.dispatch(f)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				return ev, nil
			}

		case OpHeartbeat:
			if err := c.sendHeartbeat(ctx); err != nil {
				return nil, &domain.TransportError{Op: "heartbeat", Err: err}
			}

		case OpHeartbeatAck:
			c.recordAck()

		case OpReconnect:
			c.logger.Info("gateway requested reconnect")
			_ = c.Close()
			return nil, domain.ErrReconnectRequired

		case OpInvalidSession:
			c.logger.Warn("gateway invalidated session")
			_ = c.Close()
			return nil, fmt.Errorf("%w: invalid session", domain.ErrAuthentication)

		default:
			c.logger.Debug("skipping frame", log.Int("op", int(f.Op)))
		}
	}
}

// Close stops the heartbeat and closes the socket. It is idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.closeErr = c.socket.Close()
		if c.cancel != nil {
			<-c.heartbeatDone
		}
		c.setState(domain.StateDisconnected)
	})
	return c.closeErr
}

// send encodes v and writes it within the send budget.
func (c *Conn) send(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.socket.Write(ctx, data)
}

func (c *Conn) recordSequence(s uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasSeq && s < c.seq {
		return
	}
	c.seq = s
	c.hasSeq = true
}

func (c *Conn) setState(s domain.ConnectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Sequence returns the last dispatch sequence number, if any.
func (c *Conn) Sequence() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq, c.hasSeq
}

// SessionID returns the id from READY, or "" before READY.
func (c *Conn) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// State returns the connection state.
func (c *Conn) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HeartbeatInterval returns the interval announced in Hello.
func (c *Conn) HeartbeatInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Latency returns the time between the last heartbeat and its ack.
// Zero until the first ack.
func (c *Conn) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}
