package rest

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ovasconcelos/discline/internal/domain"
)

// DefaultRetryAfter applies when a 429 carries no usable retry-after header.
const DefaultRetryAfter = time.Second

// maxErrorBody caps how much of an error response is kept as the message.
const maxErrorBody = 64 << 10

// statusError maps a non-2xx response onto the error taxonomy.
// The caller closes the body.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: invalid token", domain.ErrAuthentication)
	case http.StatusForbidden:
		return fmt.Errorf("%w: missing permissions to access this resource", domain.ErrForbidden)
	case http.StatusNotFound:
		return &domain.NotFoundError{ResourceType: "resource", ResourceID: "unknown"}
	case http.StatusTooManyRequests:
		return &domain.RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.APIError{Status: resp.StatusCode, Message: string(body)}
	}
}

// parseRetryAfter reads whole seconds.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return DefaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
