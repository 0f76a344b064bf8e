package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error returned by the gateway and REST packages matches
// at least one of these with errors.Is. An exhausted retry matches ErrServer
// and the kind of its last failure.
var (
	// ErrTransport is a network or connectivity failure (dial, DNS, timeout).
	ErrTransport = errors.New("discline: transport failure")

	// ErrProtocol is a malformed or out-of-sequence gateway frame.
	ErrProtocol = errors.New("discline: protocol error")

	// ErrAuthentication is an invalid token or an invalid-session signal.
	ErrAuthentication = errors.New("discline: authentication failed")

	// ErrForbidden is returned when the token lacks permission for a resource.
	ErrForbidden = errors.New("discline: forbidden")

	// ErrNotFound is returned when the named resource does not exist.
	ErrNotFound = errors.New("discline: not found")

	// ErrRateLimited is returned on HTTP 429. See RateLimitError for the wait hint.
	ErrRateLimited = errors.New("discline: rate limited")

	// ErrServer is a 5xx response.
	ErrServer = errors.New("discline: server error")

	// ErrClient is a 4xx response not covered by a more specific kind.
	ErrClient = errors.New("discline: client error")

	// ErrDecode is returned when a response body does not match the expected shape.
	ErrDecode = errors.New("discline: decode failed")

	// ErrClosed is returned when the gateway socket ends unexpectedly.
	ErrClosed = errors.New("discline: connection closed")

	// ErrContentTooLong is a client-side rejection of an oversized message.
	ErrContentTooLong = errors.New("discline: content too long")

	// ErrReconnectRequired is returned when the gateway asks the client to
	// reconnect. The connection must be discarded.
	ErrReconnectRequired = errors.New("discline: reconnect required")
)

// Lifecycle and configuration errors.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running session.
	ErrAlreadyRunning = errors.New("discline: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped session.
	ErrNotRunning = errors.New("discline: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("discline: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("discline: invalid configuration")

	// ErrMissingToken is returned when no token was found in the config file,
	// flags or the DISCORD_TOKEN environment variable.
	ErrMissingToken = errors.New("discline: token not found in config.toml or DISCORD_TOKEN env var")
)

// TransportError wraps a network failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Op, e.Err)
}

// Is reports ErrTransport as well as the wrapped cause.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError carries the server's wait hint for a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// APIError is a non-success status that is not mapped to a more specific kind.
// It matches ErrServer for 5xx statuses and ErrClient otherwise. Cause is set
// when retries were exhausted and holds the last attempt's failure.
type APIError struct {
	Status  int
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("discline: api error %d: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("discline: api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() []error {
	kind := ErrClient
	if e.Status >= 500 {
		kind = ErrServer
	}
	if e.Cause != nil {
		return []error{kind, e.Cause}
	}
	return []error{kind}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s with ID %s doesn't exist", ErrNotFound, e.ResourceType, e.ResourceID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ContentTooLongError reports a message rejected before it was sent.
type ContentTooLongError struct {
	Length int
	Limit  int
}

func (e *ContentTooLongError) Error() string {
	return fmt.Sprintf("%s: %d characters (limit %d)", ErrContentTooLong, e.Length, e.Limit)
}

func (e *ContentTooLongError) Unwrap() error { return ErrContentTooLong }

// IsRetryable reports whether err belongs to a class that is retried locally
// with backoff: transport failures and server errors.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrServer)
}

// IsFatal reports whether a gateway error must not lead to a new connection
// with the same credentials.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuthentication)
}
