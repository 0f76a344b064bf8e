package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ovasconcelos/discline/internal/domain"
)

// Opcode identifies the kind of a gateway frame.
type Opcode int

// Gateway opcodes handled by this package.
const (
	OpDispatch       Opcode = 0
	OpHeartbeat      Opcode = 1
	OpIdentify       Opcode = 2
	OpReconnect      Opcode = 7
	OpInvalidSession Opcode = 9
	OpHello          Opcode = 10
	OpHeartbeatAck   Opcode = 11
)

// Frame is the envelope of every gateway message. S and T are only set on
// dispatch frames.
type Frame struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *uint64         `json:"s"`
	T  *string         `json:"t"`
}

// Hello is the payload of the first frame of a connection.
type Hello struct {
	// HeartbeatInterval is in milliseconds.
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

// Intents selects the dispatch events the gateway delivers.
type Intents uint32

const (
	IntentGuilds         Intents = 1 << 0
	IntentGuildMessages  Intents = 1 << 9
	IntentDirectMessages Intents = 1 << 12
	IntentMessageContent Intents = 1 << 15

	// DefaultIntents covers guild lists and messages in guilds and DMs.
	DefaultIntents = IntentGuilds | IntentGuildMessages | IntentDirectMessages | IntentMessageContent
)

// Identify is sent once per connection after Hello.
type Identify struct {
	Token      string             `json:"token"`
	Properties IdentifyProperties `json:"properties"`
	Intents    Intents            `json:"intents"`
}

// IdentifyProperties describes the client to the gateway.
type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// outbound is a frame sent by the client. A nil D encodes as null.
type outbound struct {
	Op Opcode `json:"op"`
	D  any    `json:"d"`
}

// maxHeartbeatInterval is the largest interval, in milliseconds, that fits
// in a time.Duration.
const maxHeartbeatInterval = int64(math.MaxInt64 / int64(time.Millisecond))

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: decode frame: %v", domain.ErrProtocol, err)
	}
	return f, nil
}

func decodeHello(f Frame) (Hello, error) {
	if f.Op != OpHello {
		return Hello{}, fmt.Errorf("%w: expected hello (op %d), got op %d", domain.ErrProtocol, OpHello, f.Op)
	}
	var h Hello
	if err := json.Unmarshal(f.D, &h); err != nil {
		return Hello{}, fmt.Errorf("%w: decode hello: %v", domain.ErrProtocol, err)
	}
	if h.HeartbeatInterval <= 0 || h.HeartbeatInterval > maxHeartbeatInterval {
		return Hello{}, fmt.Errorf("%w: invalid heartbeat interval %d", domain.ErrProtocol, h.HeartbeatInterval)
	}
	return h, nil
}
