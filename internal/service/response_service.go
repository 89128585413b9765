package service

import (
	"errors"
	"time"

	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/metrics"
)

// Options tunes controllers and the session store.
type Options struct {
	RefreshInterval time.Duration
	NotificationTTL time.Duration
	IdleTTL         time.Duration
	Log             *logger.Logger
	Metrics         *metrics.Metrics
	Now             func() time.Time // defaults to time.Now
}

const (
	defaultRefreshInterval = 30 * time.Second
	defaultNotificationTTL = 3 * time.Second
	defaultIdleTTL         = 10 * time.Minute
	subscriberBuffer       = 16
)

func (o Options) withDefaults() Options {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = defaultRefreshInterval
	}
	if o.NotificationTTL <= 0 {
		o.NotificationTTL = defaultNotificationTTL
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = defaultIdleTTL
	}
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// User-facing notification texts for transport-level failures.
// Logical failures show the backend's own message instead.
const (
	msgLoadDashboardFailed = "Error loading dashboard data"
	msgLoadJobFailed       = "Error loading job data"
	msgSaveJobFailed       = "Error saving job"
	msgFinishJobFailed     = "Error finishing job"
	msgNavigateFailed      = "Error navigating job"
)

var (
	ErrSessionNotFound = errors.New("dashboard session not found")
	ErrNotConfirmed    = errors.New("finishing a job requires confirmation")
	ErrUnknownMachine  = errors.New("machine not present in dashboard data")
)
