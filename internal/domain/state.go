package domain

// ConnectionState is the lifecycle of one gateway connection. There is no way
// back to Ready once a connection reaches Disconnected.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateAwaitingHello
	StateIdentified
	StateReady
)

// String returns a human-readable representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateAwaitingHello:
		return "AwaitingHello"
	case StateIdentified:
		return "Identified"
	case StateReady:
		return "Ready"
	default:
		return "Unknown"
	}
}
