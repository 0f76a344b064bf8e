// Package rest executes authenticated JSON requests against the REST API.
//
// Every call goes through Request, which retries transport failures and 5xx
// responses up to MaxAttempts times with exponential backoff and maps all
// other failures onto the error kinds in internal/domain.
package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ovasconcelos/discline/internal/ports"
	"github.com/ovasconcelos/discline/pkg/log"
)

const (
	// DefaultBaseURL is the versioned API root.
	DefaultBaseURL = "https://discord.com/api/v10"

	// UserAgent identifies the client on every request.
	UserAgent = "DiscordBot (https://github.com/ovasconcelos/discline, 0.1.0)"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second
)

// Client holds the read-only configuration shared by all requests.
// It is safe for concurrent use.
type Client struct {
	token   string
	baseURL string
	http    ports.HTTPClient
	logger  log.Logger

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the transport.
func WithHTTPClient(h ports.HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout uses a plain http.Client with the given per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client authenticating with a bot token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrNoop(c.logger)
	return c
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}
