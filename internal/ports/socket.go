package ports

import "context"

// Socket is a message-oriented connection carrying one JSON frame per message.
// Read has a single consumer. Write must be serialized by the caller.
type Socket interface {
	// Read blocks until the next complete message arrives.
	// Returns an error once the connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends one complete message.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection. Pending Read calls return an error.
	Close() error
}

// Dialer opens sockets.
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, url string) (Socket, error)

// Dial calls f(ctx, url).
func (f DialerFunc) Dial(ctx context.Context, url string) (Socket, error) {
	return f(ctx, url)
}
