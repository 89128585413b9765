package service

import (
	"context"
	"sync"
	"time"

	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/metrics"
	"cnc_dashboard/internal/models"
	"cnc_dashboard/internal/timefmt"
)

// Controller owns one page's dashboard state: the cached queues, the
// per-machine carousel cursors, the modal form and pending notifications.
//
// Network calls never hold mu. Each operation fetches first and then applies
// its result in one critical section, so a half-applied mutation is never
// visible. There is no request sequencing: when a refresh and a navigate
// race, whichever response lands last wins.
type Controller struct {
	id       string
	backend  Backend
	renderer Renderer
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	ttl      time.Duration

	mu            sync.Mutex
	data          models.DashboardData
	indices       map[string]int
	modal         models.Modal
	notifications []models.Notification
	lastView      []byte
	lastModal     []byte
	lastActive    time.Time

	renderMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewController builds a controller with an empty cache. Nothing is
// fetched until Refresh or Run is called.
func NewController(id string, b Backend, r Renderer, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		id:         id,
		backend:    b,
		renderer:   r,
		log:        opts.Log.For("dashboard"),
		metrics:    opts.Metrics,
		now:        opts.Now,
		ttl:        opts.NotificationTTL,
		data:       models.DashboardData{},
		indices:    map[string]int{},
		lastActive: opts.Now(),
		subs:       map[int]chan Event{},
	}
}

func (c *Controller) ID() string { return c.id }

// Refresh replaces the whole cache with the backend's snapshot. Cursors of
// machines already known survive; new machines start at 0. On failure the
// cache is left as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	data, err := c.backend.DashboardData(ctx)
	if err != nil {
		c.metrics.RecordRefresh(false)
		c.log.Errorw("dashboard_refresh_failed", "err", err, "session", c.id)
		c.notify(models.NotifyError, msgLoadDashboardFailed)
		return err
	}

	if data == nil {
		data = models.DashboardData{}
	}

	c.mu.Lock()
	c.data = data
	for machine := range data {
		if _, ok := c.indices[machine]; !ok {
			c.indices[machine] = 0
		}
	}
	c.mu.Unlock()

	c.metrics.RecordRefresh(true)
	return c.Render()
}

// Render normalises cursors, renders the markup and publishes it.
// A render failure keeps the previous view.
func (c *Controller) Render() error {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	snap := c.Snapshot()
	html, err := c.renderer.RenderDashboard(snap)
	if err != nil {
		c.log.Errorw("dashboard_render_failed", "err", err, "session", c.id)
		return err
	}

	c.mu.Lock()
	c.lastView = html
	c.mu.Unlock()

	c.publish(Event{Type: EventRender, HTML: string(html), At: snap.RenderedAt})
	return nil
}

// View renders the current state without publishing it, so toasts carry
// their real remaining time. If rendering fails the last good view is
// returned instead.
func (c *Controller) View() ([]byte, error) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	html, err := c.renderer.RenderDashboard(c.Snapshot())
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.lastView != nil {
			return c.lastView, nil
		}
		return nil, err
	}
	c.lastView = html
	return html, nil
}

// ModalView returns the add/edit dialog markup without publishing it.
func (c *Controller) ModalView() ([]byte, error) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	v, modal := c.lastModal, c.modal
	c.mu.Unlock()
	if v != nil {
		return v, nil
	}

	html, err := c.renderer.RenderModal(modal)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.lastModal = html
	c.mu.Unlock()
	return html, nil
}

// renderModal renders the dialog and publishes it. Only modal transitions
// call it; grid renders leave the dialog alone.
func (c *Controller) renderModal() error {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	modal := c.modal
	c.mu.Unlock()

	html, err := c.renderer.RenderModal(modal)
	if err != nil {
		c.log.Errorw("dashboard_modal_render_failed", "err", err, "session", c.id)
		return err
	}

	c.mu.Lock()
	c.lastModal = html
	c.mu.Unlock()

	c.publish(Event{Type: EventModal, HTML: string(html), At: c.now()})
	return nil
}

// Snapshot resets out-of-range cursors to 0, drops expired notifications
// and returns a copy of the state safe to hand to a renderer.
func (c *Controller) Snapshot() models.Snapshot {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for machine, idx := range c.indices {
		if idx < 0 || idx >= len(c.data[machine].NextJobs) {
			c.indices[machine] = 0
		}
	}
	indices := make(map[string]int, len(models.MachineNames))
	for _, machine := range models.MachineNames {
		idx := c.indices[machine]
		if idx >= len(c.data[machine].NextJobs) {
			idx = 0
		}
		indices[machine] = idx
	}

	c.pruneNotificationsLocked(now)
	notes := append([]models.Notification(nil), c.notifications...)

	return models.Snapshot{
		SessionID:     c.id,
		Data:          c.data.Clone(),
		Indices:       indices,
		Modal:         c.modal,
		Notifications: notes,
		RenderedAt:    now,
	}
}

// OpenAdd opens the modal with a cleared form and no edit target.
func (c *Controller) OpenAdd() {
	c.touch()
	c.mu.Lock()
	c.modal = models.Modal{Open: true, Form: emptyForm()}
	c.mu.Unlock()
	_ = c.renderModal()
}

// OpenEdit loads job id and opens the modal populated with it. Timestamps
// are converted to the input format assuming the current year.
func (c *Controller) OpenEdit(ctx context.Context, id int) error {
	c.touch()
	job, err := c.backend.JobData(ctx, id)
	if err != nil {
		c.log.Errorw("dashboard_load_job_failed", "err", err, "session", c.id, "job_id", id)
		c.notify(models.NotifyError, msgLoadJobFailed)
		return err
	}

	form := formFromJob(job, c.now())
	c.mu.Lock()
	c.modal = models.Modal{Open: true, EditingID: id, Form: form}
	c.mu.Unlock()
	return c.renderModal()
}

// CloseModal hides the modal and forgets the edit target.
func (c *Controller) CloseModal() {
	c.touch()
	c.mu.Lock()
	c.modal = models.Modal{}
	c.mu.Unlock()
	_ = c.renderModal()
}

// Submit sends the form to add_job, or to edit_job when an edit target is
// tracked. Success closes the modal and refreshes; a rejection keeps the
// modal open with the submitted values and shows the backend's message
// verbatim.
func (c *Controller) Submit(ctx context.Context, form models.JobForm) (models.ActionResult, error) {
	c.touch()
	c.mu.Lock()
	editingID := c.modal.EditingID
	c.modal.Open = true
	c.modal.Form = form
	c.mu.Unlock()

	payload := payloadFromForm(form)

	var (
		res models.ActionResult
		err error
	)
	if editingID != 0 {
		res, err = c.backend.EditJob(ctx, editingID, payload)
	} else {
		res, err = c.backend.AddJob(ctx, payload)
	}
	if err != nil {
		c.log.Errorw("dashboard_save_job_failed", "err", err, "session", c.id, "job_id", editingID)
		c.notify(models.NotifyError, msgSaveJobFailed)
		return res, err
	}
	if !res.Success {
		c.log.Infow("dashboard_save_job_rejected", "session", c.id, "job_id", editingID, "message", res.Message)
		c.notify(models.NotifyError, res.Message)
		_ = c.renderModal()
		return res, nil
	}

	c.mu.Lock()
	c.modal = models.Modal{}
	c.mu.Unlock()
	_ = c.renderModal()
	c.notify(models.NotifySuccess, res.Message)
	_ = c.Refresh(ctx)
	return res, nil
}

// Finish marks job id finished once the user has confirmed. The displayed
// current job stays until the follow-up refresh lands.
func (c *Controller) Finish(ctx context.Context, id int, confirmed bool) (models.ActionResult, error) {
	c.touch()
	if !confirmed {
		return models.ActionResult{}, ErrNotConfirmed
	}

	res, err := c.backend.FinishJob(ctx, id)
	if err != nil {
		c.log.Errorw("dashboard_finish_job_failed", "err", err, "session", c.id, "job_id", id)
		c.notify(models.NotifyError, msgFinishJobFailed)
		return res, err
	}
	if !res.Success {
		c.log.Infow("dashboard_finish_job_rejected", "session", c.id, "job_id", id, "message", res.Message)
		c.notify(models.NotifyError, res.Message)
		return res, nil
	}

	c.notify(models.NotifySuccess, res.Message)
	_ = c.Refresh(ctx)
	return res, nil
}

// Navigate asks the backend which job belongs in the adjacent carousel
// slot, passing the currently displayed next job as context. The returned
// job overwrites the slot where its id is found, or slot 0 when it is not
// found. Only this machine's cache entry changes; no refresh follows.
func (c *Controller) Navigate(ctx context.Context, machine string, dir models.Direction) error {
	c.touch()

	c.mu.Lock()
	currentID := 0
	if q, ok := c.data[machine]; ok {
		if idx := c.indices[machine]; idx >= 0 && idx < len(q.NextJobs) {
			currentID = q.NextJobs[idx].ID
		}
	}
	c.mu.Unlock()

	job, err := c.backend.NavigateJob(ctx, machine, dir, currentID)
	if err != nil {
		c.log.Errorw("dashboard_navigate_failed", "err", err, "session", c.id, "machine", machine, "direction", dir)
		c.notify(models.NotifyError, msgNavigateFailed)
		return err
	}
	if job == nil {
		return nil
	}

	c.mu.Lock()
	q, ok := c.data[machine]
	if !ok {
		c.mu.Unlock()
		c.log.Warnw("dashboard_navigate_unknown_machine", "session", c.id, "machine", machine)
		c.notify(models.NotifyError, msgNavigateFailed)
		return ErrUnknownMachine
	}
	idx := 0
	for i, j := range q.NextJobs {
		if j.ID == job.ID {
			idx = i
			break
		}
	}
	c.indices[machine] = idx
	if idx < len(q.NextJobs) {
		q.NextJobs[idx] = *job
	} else {
		q.NextJobs = append(q.NextJobs, *job)
	}
	c.data[machine] = q
	c.mu.Unlock()

	return c.Render()
}

// Subscribe returns a channel of render events and a cancel func.
// A slow subscriber only ever misses intermediate renders, never the latest.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.touch()
	ch := make(chan Event, subscriberBuffer)

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
			c.touch()
		})
	}
}

// Subscribers reports how many live subscriptions the controller has.
func (c *Controller) Subscribers() int {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	return len(c.subs)
}

// LastActive is the time of the last user action or subscription change.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) publish(ev Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// full: drop the oldest event and retry once
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (c *Controller) touch() {
	now := c.now()
	c.mu.Lock()
	c.lastActive = now
	c.mu.Unlock()
}

func emptyForm() models.JobForm {
	return models.JobForm{
		Machine: models.MachineNames[0],
		JobType: models.JobTypeCurrent,
	}
}

func formFromJob(job models.Job, now time.Time) models.JobForm {
	return models.JobForm{
		Machine:  job.Machine,
		JobType:  job.JobType,
		Model:    job.Model,
		Part:     job.Part,
		Size:     job.Size,
		Start:    timefmt.DisplayToInput(job.Start, now),
		Finish:   timefmt.DisplayToInput(job.Finish, now),
		Target:   job.Target,
		Operator: job.Operator,
		Remark:   job.Remark,
	}
}

func payloadFromForm(f models.JobForm) models.JobPayload {
	return models.JobPayload{
		Machine:  f.Machine,
		JobType:  f.JobType,
		Model:    f.Model,
		Part:     f.Part,
		Size:     f.Size,
		Start:    timefmt.InputToDisplay(f.Start),
		Finish:   timefmt.InputToDisplay(f.Finish),
		Target:   f.Target,
		Operator: f.Operator,
		Remark:   f.Remark,
	}
}
