package service

import (
	"context"
	"time"
)

// Run refreshes the dashboard on every tick until ctx is cancelled.
// The initial load is the caller's job (see SessionStore.Open); failures
// are reported by Refresh and simply wait for the next tick.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = c.Refresh(ctx)
		}
	}
}
