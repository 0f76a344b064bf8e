package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ovasconcelos/discline/internal/ports"
)

var errSocketClosed = errors.New("socket closed")

// fakeSocket is an in-memory ports.Socket. Frames pushed with send are
// returned by Read; frames written by the client land in out.
type fakeSocket struct {
	in       chan []byte
	readErrs chan error
	out      chan []byte
	closed   chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	writeErr  error
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		in:       make(chan []byte, 64),
		readErrs: make(chan error, 8),
		out:      make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

func (s *fakeSocket) Read(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-s.in:
		if !ok {
			return nil, io.EOF
		}
		return b, nil
	case err := <-s.readErrs:
		return nil, err
	case <-s.closed:
		return nil, errSocketClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeSocket) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	err := s.writeErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case <-s.closed:
		return errSocketClosed
	default:
	}
	select {
	case s.out <- data:
		return nil
	case <-s.closed:
		return errSocketClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSocket) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *fakeSocket) failWrites(err error) {
	s.mu.Lock()
	s.writeErr = err
	s.mu.Unlock()
}

func (s *fakeSocket) send(raw string) {
	s.in <- []byte(raw)
}

// failRead makes the next Read return err without closing the socket.
func (s *fakeSocket) failRead(err error) {
	s.readErrs <- err
}

func (s *fakeSocket) dialer() ports.Dialer {
	return ports.DialerFunc(func(context.Context, string) (ports.Socket, error) {
		return s, nil
	})
}

type sentFrame struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d"`
}

// nextWrite returns the next frame written by the client.
func (s *fakeSocket) nextWrite(t *testing.T) sentFrame {
	t.Helper()
	select {
	case b := <-s.out:
		var f sentFrame
		require.NoError(t, json.Unmarshal(b, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a client frame")
		return sentFrame{}
	}
}
