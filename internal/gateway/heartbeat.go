package gateway

import (
	"context"
	"time"

	"github.com/ovasconcelos/discline/pkg/log"
)

// heartbeatLoop sends op 1 every interval until the connection is closed or
// a write fails. The first beat goes out one interval after Hello.
func (c *Conn) heartbeatLoop(ctx context.Context, interval time.Duration) {
	defer close(c.heartbeatDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(ctx); err != nil {
				c.logger.Debug("heartbeat stopped", log.Err(err))
				return
			}
		}
	}
}

// sendHeartbeat writes {"op":1,"d":<last sequence or null>}.
func (c *Conn) sendHeartbeat(ctx context.Context) error {
	var d *uint64
	if seq, ok := c.Sequence(); ok {
		d = &seq
	}
	if err := c.send(ctx, outbound{Op: OpHeartbeat, D: d}); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastBeat = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Conn) recordAck() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.lastBeat.IsZero() {
		c.latency = time.Since(c.lastBeat)
	}
}
