package service

import (
	"context"
	"sync"
	"time"

	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/metrics"

	"github.com/google/uuid"
)

type session struct {
	ctrl   *Controller
	cancel context.CancelFunc
}

// SessionStore keeps one Controller per open dashboard page. Each session
// runs its own refresh loop, like a browser tab polling on its own timer.
type SessionStore struct {
	ctx      context.Context
	deps     Deps
	opts     Options
	log      *logger.Logger
	metrics  *metrics.Metrics
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionStore creates an empty store. Session loops stop when ctx ends.
func NewSessionStore(ctx context.Context, deps Deps, opts Options) *SessionStore {
	opts = opts.withDefaults()
	return &SessionStore{
		ctx:      ctx,
		deps:     deps,
		opts:     opts,
		log:      opts.Log.For("sessions"),
		metrics:  opts.Metrics,
		sessions: map[string]*session{},
	}
}

// Open creates a session, performs its initial load with ctx and starts the
// periodic refresh. A failed initial load still yields a usable session;
// the page shows the error notification and an empty dashboard.
func (s *SessionStore) Open(ctx context.Context) (Dashboard, error) {
	id := uuid.NewString()
	ctrl := NewController(id, s.deps.Backend, s.deps.Renderer, s.opts)
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	_ = ctrl.Refresh(ctx)
	if _, err := ctrl.View(); err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(s.ctx)
	s.mu.Lock()
	s.sessions[id] = &session{ctrl: ctrl, cancel: cancel}
	n := len(s.sessions)
	s.mu.Unlock()

	go ctrl.Run(loopCtx, s.opts.RefreshInterval)

	s.metrics.SetActiveSessions(n)
	s.log.Infow("session_opened", "session", id, "active", n)
	return ctrl, nil
}

// Get returns the session with the given id.
func (s *SessionStore) Get(id string) (Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.ctrl, nil
}

// Close stops a session's refresh loop and forgets it.
func (s *SessionStore) Close(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.cancel()
	s.metrics.SetActiveSessions(n)
	s.log.Infow("session_closed", "session", id, "active", n)
}

// Len reports the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes sessions with no subscribers that have been idle for
// longer than the idle TTL. It returns the number closed.
func (s *SessionStore) Sweep(now time.Time) int {
	var stale []string
	s.mu.RLock()
	for id, sess := range s.sessions {
		if sess.ctrl.Subscribers() == 0 && now.Sub(sess.ctrl.LastActive()) > s.opts.IdleTTL {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.Close(id)
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is cancelled.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(s.opts.Now()); n > 0 {
				s.log.Debugw("sessions_swept", "closed", n)
			}
		}
	}
}

// CloseAll stops every session. Used on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = map[string]*session{}
	s.mu.Unlock()
	for _, sess := range all {
		sess.cancel()
	}
	s.metrics.SetActiveSessions(0)
}
