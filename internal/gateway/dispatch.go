package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/pkg/log"
)

// dispatch decodes an op 0 frame. A nil event with a nil error means the
// frame carries an event this client does not handle.
func (c *Conn) dispatch(f Frame) (Event, error) {
	if f.T == nil {
		c.logger.Debug("dispatch without event name")
		return nil, nil
	}

	switch name := *f.T; name {
	case EventReady:
		ev := &ReadyEvent{}
		if err := decodeEvent(name, f.D, ev); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.sessionID = ev.SessionID
		c.state = domain.StateReady
		c.mu.Unlock()
		c.logger.Info("gateway ready",
			log.String("session_id", ev.SessionID),
			log.String("user", ev.User.Username),
			log.Int("guilds", len(ev.Guilds)),
		)
		return ev, nil

	case EventMessageCreate:
		ev := &MessageCreateEvent{}
		if err := decodeEvent(name, f.D, ev); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		c.logger.Debug("skipping dispatch", log.String("event", name))
		return nil, nil
	}
}

func decodeEvent(name string, data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrProtocol, name, err)
	}
	return nil
}
