package app

import (
	"context"
	"sync"
	"time"

	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/pkg/log"
)

// ShutdownTimeout is the maximum time Stop waits for the session loop.
const ShutdownTimeout = 10 * time.Second

// State is the lifecycle state of a session supervisor. It is distinct from
// domain.ConnectionState, which tracks one gateway connection.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// transitions lists the states reachable from each state. A failed
// transition from an idle state reports ErrNotRunning, from an active one
// ErrAlreadyRunning.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// EventEmitter is notified after every successful state change.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle is the supervisor state machine plus the bookkeeping needed for
// a bounded shutdown.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  log.Logger
	emitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateStopped. Both arguments may be nil.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:   StateStopped,
		logger:  log.OrNoop(logger),
		emitter: emitter,
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next if the transition is allowed. The state is
// unchanged on error.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !allowed(prev, next) {
		l.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(prev, next, reason)
	}

	l.logger.Info("state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	return nil
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart reports whether Start may be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop reports whether Stop may be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// SetCancel stores the function that cancels the running session.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel cancels the running session, if any.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// AddWorker registers a goroutine that Stop must wait for.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone marks a registered goroutine as finished.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers. It returns ErrShutdownTimeout if
// they are still running after timeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("shutdown timeout, abandoning session loop",
			log.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
