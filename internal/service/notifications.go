package service

import (
	"time"

	"cnc_dashboard/internal/models"

	"github.com/google/uuid"
)

// notify queues a transient notification, logs it and re-renders so the
// page shows it. It expires after the configured TTL.
func (c *Controller) notify(kind, message string) {
	now := c.now()
	n := models.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.pruneNotificationsLocked(now)
	c.notifications = append(c.notifications, n)
	c.mu.Unlock()

	c.metrics.RecordNotification(kind)
	if kind == models.NotifyError {
		c.log.Warnw("dashboard_notification", "session", c.id, "kind", kind, "message", message)
	} else {
		c.log.Infow("dashboard_notification", "session", c.id, "kind", kind, "message", message)
	}
	_ = c.Render()
}

// pruneNotificationsLocked drops expired notifications. Caller holds c.mu.
func (c *Controller) pruneNotificationsLocked(now time.Time) {
	kept := c.notifications[:0]
	for _, n := range c.notifications {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	for i := len(kept); i < len(c.notifications); i++ {
		c.notifications[i] = models.Notification{}
	}
	c.notifications = kept
}
