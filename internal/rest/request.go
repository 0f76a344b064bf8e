package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/pkg/log"
)

// Request sends method to endpoint (relative to the client's base URL) and
// decodes a 2xx JSON response into T. body is JSON-encoded when non-nil.
//
// Transport failures and 5xx responses are retried with backoff; when every
// attempt fails that way the result is a 500 *domain.APIError whose Cause is
// the last failure. Any other non-2xx status is returned at once.
func Request[T any](ctx context.Context, c *Client, method, endpoint string, body any, query url.Values) (T, error) {
	var zero T

	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return zero, fmt.Errorf("encode request body: %w", err)
		}
	}

	op := method + " " + endpoint
	var lastErr error

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt - 1)
			c.logger.Debug("retrying request",
				log.String("op", op),
				log.Int("attempt", attempt+1),
				log.Duration("delay", delay),
				log.Err(lastErr),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bodyReader(payload))
		if err != nil {
			return zero, fmt.Errorf("build request: %w", err)
		}
		c.setHeaders(req, payload != nil)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = &domain.TransportError{Op: op, Err: err}
			if ctx.Err() != nil {
				return zero, lastErr
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return decodeResponse[T](resp)
		}

		err = statusError(resp)
		drainAndClose(resp)
		if resp.StatusCode >= 500 {
			lastErr = err
			continue
		}
		return zero, err
	}

	c.logger.Warn("request failed", log.String("op", op), log.Err(lastErr))
	return zero, &domain.APIError{Status: http.StatusInternalServerError, Message: "max retries reached", Cause: lastErr}
}

func bodyReader(payload []byte) io.Reader {
	if payload == nil {
		return nil
	}
	return bytes.NewReader(payload)
}

// decodeResponse decodes the body into T. An empty body yields the zero T.
func decodeResponse[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()

	var v T
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return v, fmt.Errorf("%w: read body: %v", domain.ErrDecode, err)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return v, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
