// Package ports defines the interfaces that connect the protocol core to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [HTTPClient]: HTTP request abstraction used by the REST executor
//   - [Socket]: one message-oriented, bidirectional gateway connection
//   - [Dialer]: opens a Socket to a gateway URL
//
// The gateway and rest packages depend only on these interfaces. The
// websocket adapter (internal/adapters/ws) implements Socket and Dialer;
// tests substitute in-memory fakes.
package ports
