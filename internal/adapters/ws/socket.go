// Package ws implements ports.Socket over nhooyr.io/websocket.
package ws

import (
	"context"
	"fmt"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/internal/ports"
)

// DefaultReadLimit bounds a single inbound message. READY payloads for large
// accounts exceed the library default of 32 KiB.
const DefaultReadLimit = 8 << 20

// ErrUnexpectedMessageType is returned when a binary message arrives on a
// JSON-encoded gateway connection. It matches domain.ErrProtocol; the
// connection stays open.
var ErrUnexpectedMessageType = fmt.Errorf("%w: unexpected binary message", domain.ErrProtocol)

// Socket adapts *websocket.Conn to ports.Socket. Frames are text messages.
type Socket struct {
	conn *websocket.Conn
}

// NewSocket wraps an established connection.
func NewSocket(conn *websocket.Conn) *Socket {
	return &Socket{conn: conn}
}

// Read implements ports.Socket.
// Cancelling ctx closes the underlying connection.
func (s *Socket) Read(ctx context.Context) ([]byte, error) {
	typ, data, err := s.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, ErrUnexpectedMessageType
	}
	return data, nil
}

// Write implements ports.Socket.
func (s *Socket) Write(ctx context.Context, data []byte) error {
	return s.conn.Write(ctx, websocket.MessageText, data)
}

// Close implements ports.Socket.
func (s *Socket) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

// Dialer implements ports.Dialer.
type Dialer struct {
	// HTTPClient is used for the upgrade request. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Header is sent with the upgrade request.
	Header http.Header

	// ReadLimit overrides DefaultReadLimit when positive.
	ReadLimit int64
}

// NewDialer returns a Dialer with default settings.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial implements ports.Dialer.
func (d *Dialer) Dial(ctx context.Context, url string) (ports.Socket, error) {
	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient: d.HTTPClient,
		HTTPHeader: d.Header,
	})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	limit := d.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	conn.SetReadLimit(limit)

	return NewSocket(conn), nil
}

// IsNormalClosure reports whether err is a clean close by either peer.
func IsNormalClosure(err error) bool {
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway
}

var (
	_ ports.Socket = (*Socket)(nil)
	_ ports.Dialer = (*Dialer)(nil)
)
