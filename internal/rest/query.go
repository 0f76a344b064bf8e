package rest

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ovasconcelos/discline/internal/domain"
)

// MaxMessagesLimit is the largest page GetMessages accepts.
const MaxMessagesLimit = 100

// ErrInvalidQuery is returned before any request when a query is malformed.
var ErrInvalidQuery = errors.New("rest: invalid query")

// GetMessagesQuery pages through a channel's history. At most one of
// Around, Before and After may be set. A zero Limit uses the server default.
type GetMessagesQuery struct {
	Around *domain.MessageID
	Before *domain.MessageID
	After  *domain.MessageID
	Limit  int
}

// WithLimit returns a query for the latest n messages.
func WithLimit(n int) GetMessagesQuery {
	return GetMessagesQuery{Limit: n}
}

// Validate checks the limit range and the anchor exclusivity.
func (q GetMessagesQuery) Validate() error {
	if q.Limit < 0 || q.Limit > MaxMessagesLimit {
		return fmt.Errorf("%w: limit %d outside 1-%d", ErrInvalidQuery, q.Limit, MaxMessagesLimit)
	}
	anchors := 0
	for _, id := range []*domain.MessageID{q.Around, q.Before, q.After} {
		if id != nil {
			anchors++
		}
	}
	if anchors > 1 {
		return fmt.Errorf("%w: around, before and after are mutually exclusive", ErrInvalidQuery)
	}
	return nil
}

// Values encodes the set fields as query parameters.
func (q GetMessagesQuery) Values() url.Values {
	v := url.Values{}
	if q.Around != nil {
		v.Set("around", q.Around.String())
	}
	if q.Before != nil {
		v.Set("before", q.Before.String())
	}
	if q.After != nil {
		v.Set("after", q.After.String())
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}
