package gateway

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
	"nhooyr.io/websocket/wsjson"

	"github.com/ovasconcelos/discline/internal/domain"
)

func TestConnect_WebsocketServer(t *testing.T) {
	serverErr := make(chan error, 1)
	identified := make(chan map[string]any, 1)
	heartbeat := make(chan map[string]any, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			serverErr <- err
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		if err := wsjson.Write(ctx, c, map[string]any{
			"op": 10,
			"d":  map[string]any{"heartbeat_interval": 50},
		}); err != nil {
			serverErr <- err
			return
		}

		var identify map[string]any
		if err := wsjson.Read(ctx, c, &identify); err != nil {
			serverErr <- err
			return
		}
		identified <- identify

		if err := wsjson.Write(ctx, c, map[string]any{
			"op": 0,
			"t":  "READY",
			"s":  1,
			"d": map[string]any{
				"user": map[string]any{
					"id":            1,
					"username":      "testuser",
					"discriminator": "0000",
					"email":         "test@test.com",
				},
				"guilds":     []any{},
				"session_id": "test-session",
			},
		}); err != nil {
			serverErr <- err
			return
		}

		var hb map[string]any
		if err := wsjson.Read(ctx, c, &hb); err != nil {
			serverErr <- err
			return
		}
		heartbeat <- hb

		if err := wsjson.Write(ctx, c, map[string]any{"op": 11}); err != nil {
			serverErr <- err
			return
		}
		if err := wsjson.Write(ctx, c, map[string]any{"op": 7, "d": nil}); err != nil {
			serverErr <- err
			return
		}
		_, _, _ = c.Read(ctx)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Connect(ctx, "test-token", url)
	require.NoError(t, err)
	defer c.Close()

	select {
	case identify := <-identified:
		assert.EqualValues(t, 2, identify["op"])
		d, ok := identify["d"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "test-token", d["token"])
	case err := <-serverErr:
		t.Fatalf("server: %v", err)
	case <-ctx.Done():
		t.Fatal("no identify received")
	}

	ev, err := c.NextEvent(ctx)
	require.NoError(t, err)
	ready, ok := ev.(*ReadyEvent)
	require.True(t, ok, "expected *ReadyEvent, got %T", ev)
	assert.Equal(t, "testuser", ready.User.Username)
	assert.Equal(t, "test-session", ready.SessionID)

	select {
	case hb := <-heartbeat:
		assert.EqualValues(t, 1, hb["op"])
	case err := <-serverErr:
		t.Fatalf("server: %v", err)
	case <-ctx.Done():
		t.Fatal("no heartbeat received")
	}

	_, err = c.NextEvent(ctx)
	assert.ErrorIs(t, err, domain.ErrReconnectRequired)
}
