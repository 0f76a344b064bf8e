package gateway

import "github.com/ovasconcelos/discline/internal/domain"

// Dispatch event names.
const (
	EventReady         = "READY"
	EventMessageCreate = "MESSAGE_CREATE"
)

// Event is a decoded dispatch returned by Conn.NextEvent.
type Event interface {
	EventName() string
}

// ReadyEvent completes the handshake.
type ReadyEvent struct {
	User      domain.User    `json:"user"`
	Guilds    []domain.Guild `json:"guilds"`
	SessionID string         `json:"session_id"`
}

func (*ReadyEvent) EventName() string { return EventReady }

// MessageCreateEvent is a new message in a visible channel.
type MessageCreateEvent struct {
	domain.Message
}

func (*MessageCreateEvent) EventName() string { return EventMessageCreate }
