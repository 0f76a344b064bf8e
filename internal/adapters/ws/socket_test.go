package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/ovasconcelos/discline/internal/domain"
)

func echoServer(t *testing.T, handle func(ctx context.Context, c *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusInternalError, "")
		handle(r.Context(), c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialer_RoundTrip(t *testing.T) {
	url := echoServer(t, func(ctx context.Context, c *websocket.Conn) {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		_ = c.Write(ctx, typ, data)
		c.Close(websocket.StatusNormalClosure, "")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sock, err := NewDialer().Dial(ctx, url)
	require.NoError(t, err)
	defer sock.Close()

	require.NoError(t, sock.Write(ctx, []byte(`{"op":1,"d":null}`)))

	got, err := sock.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":1,"d":null}`, string(got))

	_, err = sock.Read(ctx)
	require.Error(t, err)
	assert.True(t, IsNormalClosure(err))
}

func TestSocket_RejectsBinary(t *testing.T) {
	url := echoServer(t, func(ctx context.Context, c *websocket.Conn) {
		_ = c.Write(ctx, websocket.MessageBinary, []byte{0x01})
		_ = c.Write(ctx, websocket.MessageText, []byte(`{"op":11}`))
		_, _, _ = c.Read(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sock, err := NewDialer().Dial(ctx, url)
	require.NoError(t, err)
	defer sock.Close()

	_, err = sock.Read(ctx)
	assert.ErrorIs(t, err, ErrUnexpectedMessageType)
	assert.ErrorIs(t, err, domain.ErrProtocol)

	data, err := sock.Read(ctx)
	require.NoError(t, err, "a binary message must not end the connection")
	assert.JSONEq(t, `{"op":11}`, string(data))
}

func TestDialer_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewDialer().Dial(ctx, "ws://127.0.0.1:1/")
	assert.Error(t, err)
}
