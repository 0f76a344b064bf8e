// Package discline is a Discord client core: a gateway connection that
// keeps a session alive and a REST client for channels and messages.
//
// Example usage:
//
//	conn, err := discline.Connect(ctx, token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//	for {
//	    ev, err := conn.NextEvent(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if m, ok := ev.(*discline.MessageCreateEvent); ok {
//	        fmt.Println(m.Content)
//	    }
//	}
//
// For a connection that reconnects on its own, use NewSession.
package discline

import (
	"context"

	"github.com/ovasconcelos/discline/internal/app"
	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/internal/gateway"
	"github.com/ovasconcelos/discline/internal/rest"
)

// Conn is a single gateway connection.
type Conn = gateway.Conn

// Event is a dispatch event delivered by Conn.NextEvent.
type Event = gateway.Event

// ReadyEvent is delivered once a connection has identified.
type ReadyEvent = gateway.ReadyEvent

// MessageCreateEvent carries a newly created message.
type MessageCreateEvent = gateway.MessageCreateEvent

// Intents selects the dispatch events a connection receives.
type Intents = gateway.Intents

// DefaultIntents covers guilds and guild and direct messages.
const DefaultIntents = gateway.DefaultIntents

// Client calls the REST API.
type Client = rest.Client

// Session supervises a gateway connection and replaces it when it drops.
type Session = app.Session

// SessionConfig configures a Session.
type SessionConfig = app.SessionConfig

// EventHandlerFunc adapts a function to receive session events.
type EventHandlerFunc = app.EventHandlerFunc

// Records returned by the API.
type (
	User      = domain.User
	Guild     = domain.Guild
	Channel   = domain.Channel
	Message   = domain.Message
	ChannelID = domain.ChannelID
	GuildID   = domain.GuildID
	MessageID = domain.MessageID
)

// Options for Connect, NewClient and NewSession.
type (
	GatewayOption = gateway.Option
	ClientOption  = rest.Option
	SessionOption = app.Option
)

// Option constructors re-exported for use outside this module.
var (
	WithGatewayLogger  = gateway.WithLogger
	WithIntents        = gateway.WithIntents
	WithBaseURL        = rest.WithBaseURL
	WithTimeout        = rest.WithTimeout
	WithClientLogger   = rest.WithLogger
	WithSessionLogger  = app.WithLogger
	WithStateListener  = app.WithStateListener
	WithSessionPlugins = app.WithPlugins
)

// GetMessagesQuery selects a window of channel history.
type GetMessagesQuery = rest.GetMessagesQuery

// Error kinds, for use with errors.Is.
var (
	ErrTransport         = domain.ErrTransport
	ErrProtocol          = domain.ErrProtocol
	ErrAuthentication    = domain.ErrAuthentication
	ErrForbidden         = domain.ErrForbidden
	ErrNotFound          = domain.ErrNotFound
	ErrRateLimited       = domain.ErrRateLimited
	ErrServer            = domain.ErrServer
	ErrClient            = domain.ErrClient
	ErrDecode            = domain.ErrDecode
	ErrClosed            = domain.ErrClosed
	ErrReconnectRequired = domain.ErrReconnectRequired
	ErrContentTooLong    = domain.ErrContentTooLong
)

// Connect opens a gateway connection to the default gateway URL and returns
// once it has identified.
func Connect(ctx context.Context, token string, opts ...GatewayOption) (*Conn, error) {
	return gateway.Connect(ctx, token, gateway.DefaultURL, opts...)
}

// NewClient creates a REST client authenticating with token.
func NewClient(token string, opts ...ClientOption) *Client {
	return rest.New(token, opts...)
}

// NewSession creates a stopped session delivering events to fn.
func NewSession(cfg SessionConfig, fn func(ctx context.Context, ev Event), opts ...SessionOption) (*Session, error) {
	return app.NewSession(cfg, app.EventHandlerFunc(fn), opts...)
}
