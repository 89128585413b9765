package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navigateCall struct {
	machine   string
	dir       models.Direction
	currentID int
}

type fakeBackend struct {
	mu sync.Mutex

	data    models.DashboardData
	dataErr error

	job    models.Job
	jobErr error

	addRes  models.ActionResult
	editRes models.ActionResult
	saveErr error
	added   []models.JobPayload
	edited  map[int]models.JobPayload

	finishRes models.ActionResult
	finishErr error
	finished  []int

	navJob   *models.Job
	navErr   error
	navCalls []navigateCall

	history    []models.HistoryEntry
	historyErr error
	clearRes   models.ActionResult
	export     *backend.Export
	exportErr  error

	dashboardCalls int
}

func (f *fakeBackend) DashboardData(ctx context.Context) (models.DashboardData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashboardCalls++
	if f.dataErr != nil {
		return nil, f.dataErr
	}
	return f.data.Clone(), nil
}

func (f *fakeBackend) JobData(ctx context.Context, id int) (models.Job, error) {
	return f.job, f.jobErr
}

func (f *fakeBackend) AddJob(ctx context.Context, p models.JobPayload) (models.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, p)
	return f.addRes, f.saveErr
}

func (f *fakeBackend) EditJob(ctx context.Context, id int, p models.JobPayload) (models.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edited == nil {
		f.edited = map[int]models.JobPayload{}
	}
	f.edited[id] = p
	return f.editRes, f.saveErr
}

func (f *fakeBackend) FinishJob(ctx context.Context, id int) (models.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, id)
	return f.finishRes, f.finishErr
}

func (f *fakeBackend) NavigateJob(ctx context.Context, machine string, dir models.Direction, currentJobID int) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navCalls = append(f.navCalls, navigateCall{machine, dir, currentJobID})
	return f.navJob, f.navErr
}

func (f *fakeBackend) HistoryData(ctx context.Context) ([]models.HistoryEntry, error) {
	return f.history, f.historyErr
}

func (f *fakeBackend) ClearHistory(ctx context.Context) (models.ActionResult, error) {
	return f.clearRes, nil
}

func (f *fakeBackend) ExportExcel(ctx context.Context, kind string) (*backend.Export, error) {
	return f.export, f.exportErr
}

type fakeRenderer struct {
	mu     sync.Mutex
	snaps  []models.Snapshot
	modals []models.Modal
	err    error
}

func (r *fakeRenderer) RenderDashboard(s models.Snapshot) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.snaps = append(r.snaps, s)
	return []byte("render"), nil
}

func (r *fakeRenderer) RenderModal(m models.Modal) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.modals = append(r.modals, m)
	return []byte("modal"), nil
}

func (r *fakeRenderer) lastModal() models.Modal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modals[len(r.modals)-1]
}

func (r *fakeRenderer) renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *fakeRenderer) last() models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestController(b *fakeBackend) (*Controller, *fakeRenderer, *fakeClock) {
	r := &fakeRenderer{}
	clk := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := NewController("sid", b, r, Options{Now: clk.Now})
	return c, r, clk
}

func threeNext() models.DashboardData {
	return models.DashboardData{
		"CNC1": {
			Current:   &models.Job{ID: 1, Machine: "CNC1", Model: "cur"},
			NextJobs:  []models.Job{{ID: 10}, {ID: 11}, {ID: 12}},
			TotalJobs: 4,
		},
	}
}

func errorMessages(s models.Snapshot) []string {
	var out []string
	for _, n := range s.Notifications {
		if n.Kind == models.NotifyError {
			out = append(out, n.Message)
		}
	}
	return out
}

func TestRefresh_PreservesKnownCursorsAndInitialisesNewOnes(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	c.mu.Lock()
	c.indices["CNC1"] = 2
	c.mu.Unlock()

	b.data["CNC2"] = models.MachineQueue{NextJobs: []models.Job{{ID: 20}, {ID: 21}}, TotalJobs: 2}
	require.NoError(t, c.Refresh(context.Background()))

	snap := r.last()
	assert.Equal(t, 2, snap.Indices["CNC1"])
	assert.Equal(t, 0, snap.Indices["CNC2"])
	assert.Len(t, snap.Data, 2)
}

func TestRefresh_FailureLeavesCacheUntouched(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	b.dataErr = errors.New("connection refused")
	err := c.Refresh(context.Background())
	require.Error(t, err)

	snap := r.last()
	require.Contains(t, snap.Data, "CNC1")
	assert.Len(t, snap.Data["CNC1"].NextJobs, 3)
	assert.Equal(t, []string{msgLoadDashboardFailed}, errorMessages(snap))
}

func TestSnapshot_ResetsOutOfRangeCursors(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, _, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	c.mu.Lock()
	c.indices["CNC1"] = 2
	c.mu.Unlock()

	// queue shrinks under the cursor
	b.data["CNC1"] = models.MachineQueue{NextJobs: []models.Job{{ID: 10}}, TotalJobs: 1}
	require.NoError(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Indices["CNC1"])
	for _, m := range models.MachineNames {
		idx := snap.Indices[m]
		n := len(snap.Data[m].NextJobs)
		assert.True(t, idx == 0 || idx < n, "%s cursor %d with %d jobs", m, idx, n)
	}
}

func TestNavigate_ReturnedJobFoundAtIndexZero(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	c.mu.Lock()
	c.indices["CNC1"] = 2
	c.mu.Unlock()

	b.navJob = &models.Job{ID: 10, Model: "updated"}
	require.NoError(t, c.Navigate(context.Background(), "CNC1", models.DirectionNext))

	require.Len(t, b.navCalls, 1)
	assert.Equal(t, navigateCall{"CNC1", models.DirectionNext, 12}, b.navCalls[0])

	snap := r.last()
	assert.Equal(t, 0, snap.Indices["CNC1"])
	assert.Equal(t, "updated", snap.Data["CNC1"].NextJobs[0].Model)
	assert.Equal(t, 1, b.dashboardCalls, "navigate must not trigger a full refresh")
}

func TestNavigate_UnknownIDOverwritesSlotZero(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	b.navJob = &models.Job{ID: 99, Model: "stranger"}
	require.NoError(t, c.Navigate(context.Background(), "CNC1", models.DirectionPrev))

	snap := r.last()
	assert.Equal(t, 0, snap.Indices["CNC1"])
	assert.Equal(t, 99, snap.Data["CNC1"].NextJobs[0].ID)
	assert.Len(t, snap.Data["CNC1"].NextJobs, 3)
}

func TestNavigate_EmptyQueueSendsNoCurrentID(t *testing.T) {
	b := &fakeBackend{data: models.DashboardData{"CNC1": {TotalJobs: 0}}}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	b.navJob = &models.Job{ID: 5}
	require.NoError(t, c.Navigate(context.Background(), "CNC1", models.DirectionNext))

	assert.Equal(t, 0, b.navCalls[0].currentID)
	assert.Equal(t, []models.Job{{ID: 5}}, r.last().Data["CNC1"].NextJobs)
}

func TestNavigate_NullJobIsNoop(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))
	renders := len(r.snaps)

	require.NoError(t, c.Navigate(context.Background(), "CNC1", models.DirectionNext))
	assert.Len(t, r.snaps, renders)
}

func TestNavigate_FailureNotifies(t *testing.T) {
	b := &fakeBackend{data: threeNext(), navErr: errors.New("boom")}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	require.Error(t, c.Navigate(context.Background(), "CNC1", models.DirectionNext))
	snap := r.last()
	assert.Equal(t, []string{msgNavigateFailed}, errorMessages(snap))
	assert.Equal(t, 10, snap.Data["CNC1"].NextJobs[0].ID)
}

func TestNavigate_MachineMissingFromCache(t *testing.T) {
	b := &fakeBackend{data: threeNext(), navJob: &models.Job{ID: 3}}
	c, _, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))

	err := c.Navigate(context.Background(), "CNC5", models.DirectionNext)
	assert.ErrorIs(t, err, ErrUnknownMachine)
}

func TestOpenAdd_ClearsForm(t *testing.T) {
	c, r, _ := newTestController(&fakeBackend{})
	c.OpenAdd()

	m := r.lastModal()
	assert.True(t, m.Open)
	assert.Zero(t, m.EditingID)
	assert.Equal(t, models.JobForm{Machine: "CNC1", JobType: models.JobTypeCurrent}, m.Form)
}

func TestOpenEdit_ConvertsTimestamps(t *testing.T) {
	b := &fakeBackend{job: models.Job{
		ID: 7, Machine: "CNC2", JobType: models.JobTypeNext, Model: "M",
		Start: "05/02 - 07:30", Finish: "",
	}}
	c, r, _ := newTestController(b)
	require.NoError(t, c.OpenEdit(context.Background(), 7))

	m := r.lastModal()
	assert.True(t, m.Open)
	assert.Equal(t, 7, m.EditingID)
	assert.Equal(t, "CNC2", m.Form.Machine)
	assert.Equal(t, "2024-02-05T07:30", m.Form.Start)
	assert.Equal(t, "", m.Form.Finish)
}

func TestOpenEdit_FailureKeepsModalClosed(t *testing.T) {
	b := &fakeBackend{jobErr: errors.New("404")}
	c, r, _ := newTestController(b)
	require.Error(t, c.OpenEdit(context.Background(), 7))

	snap := r.last()
	assert.False(t, snap.Modal.Open)
	assert.Equal(t, []string{msgLoadJobFailed}, errorMessages(snap))
}

func TestSubmit_AddSendsEmptyTimestamps(t *testing.T) {
	b := &fakeBackend{data: threeNext(), addRes: models.ActionResult{Success: true, Message: "Job added successfully"}}
	c, r, _ := newTestController(b)
	c.OpenAdd()

	res, err := c.Submit(context.Background(), models.JobForm{Machine: "CNC3", JobType: "next", Model: "X"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, b.added, 1)
	assert.Equal(t, "", b.added[0].Start)
	assert.Equal(t, "", b.added[0].Finish)
	assert.Equal(t, "CNC3", b.added[0].Machine)

	snap := r.last()
	assert.False(t, snap.Modal.Open)
	assert.False(t, r.lastModal().Open)
	assert.Equal(t, 1, b.dashboardCalls)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, models.NotifySuccess, snap.Notifications[0].Kind)
}

func TestSubmit_EditConvertsTimestamps(t *testing.T) {
	b := &fakeBackend{
		job:     models.Job{ID: 7, Machine: "CNC1"},
		editRes: models.ActionResult{Success: true, Message: "ok"},
	}
	c, _, _ := newTestController(b)
	require.NoError(t, c.OpenEdit(context.Background(), 7))

	_, err := c.Submit(context.Background(), models.JobForm{Machine: "CNC1", Start: "2024-03-01T08:05"})
	require.NoError(t, err)
	assert.Equal(t, "01/03 - 08:05", b.edited[7].Start)
	assert.Empty(t, b.added)
}

func TestSubmit_RejectionKeepsModalOpen(t *testing.T) {
	b := &fakeBackend{
		data:    threeNext(),
		job:     models.Job{ID: 7, Machine: "CNC1"},
		editRes: models.ActionResult{Success: false, Message: "Job not found"},
	}
	c, r, _ := newTestController(b)
	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.OpenEdit(context.Background(), 7))

	form := models.JobForm{Machine: "CNC1", Model: "typed"}
	res, err := c.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.False(t, res.Success)

	snap := r.last()
	assert.True(t, snap.Modal.Open)
	assert.Equal(t, 7, snap.Modal.EditingID)
	assert.Equal(t, "typed", snap.Modal.Form.Model)
	assert.Equal(t, []string{"Job not found"}, errorMessages(snap))
	assert.Equal(t, threeNext(), snap.Data)
	assert.Equal(t, form, r.lastModal().Form)
	assert.True(t, r.lastModal().Open)
	assert.Equal(t, 1, b.dashboardCalls)
}

func TestSubmit_TransportFailure(t *testing.T) {
	b := &fakeBackend{saveErr: backend.ErrTransport}
	c, r, _ := newTestController(b)
	c.OpenAdd()

	_, err := c.Submit(context.Background(), models.JobForm{Machine: "CNC1"})
	require.Error(t, err)
	snap := r.last()
	assert.True(t, snap.Modal.Open)
	assert.Equal(t, []string{msgSaveJobFailed}, errorMessages(snap))
}

func TestFinish_RequiresConfirmation(t *testing.T) {
	b := &fakeBackend{finishRes: models.ActionResult{Success: true}}
	c, _, _ := newTestController(b)

	_, err := c.Finish(context.Background(), 3, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, b.finished)
}

func TestFinish_ConfirmedRefreshes(t *testing.T) {
	b := &fakeBackend{data: threeNext(), finishRes: models.ActionResult{Success: true, Message: "Job finished successfully"}}
	c, r, _ := newTestController(b)

	res, err := c.Finish(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []int{1}, b.finished)
	assert.Equal(t, 1, b.dashboardCalls)
	assert.Equal(t, "Job finished successfully", r.last().Notifications[0].Message)
}

func TestFinish_RejectionShowsMessage(t *testing.T) {
	b := &fakeBackend{finishRes: models.ActionResult{Success: false, Message: "Job not found"}}
	c, r, _ := newTestController(b)

	_, err := c.Finish(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Job not found"}, errorMessages(r.last()))
	assert.Zero(t, b.dashboardCalls)
}

func TestNotifications_ExpireAfterTTL(t *testing.T) {
	b := &fakeBackend{dataErr: errors.New("down")}
	c, _, clk := newTestController(b)
	_ = c.Refresh(context.Background())
	require.Len(t, c.Snapshot().Notifications, 1)

	clk.Advance(defaultNotificationTTL)
	assert.Empty(t, c.Snapshot().Notifications)
}

func TestSubscribe_ReceivesRenders(t *testing.T) {
	c, _, _ := newTestController(&fakeBackend{})
	ch, cancel := c.Subscribe()
	defer cancel()
	assert.Equal(t, 1, c.Subscribers())

	require.NoError(t, c.Render())
	select {
	case ev := <-ch:
		assert.Equal(t, EventRender, ev.Type)
		assert.Equal(t, "render", ev.HTML)
	case <-time.After(time.Second):
		t.Fatal("no render event")
	}

	cancel()
	assert.Equal(t, 0, c.Subscribers())
}

func TestSubscribe_SlowSubscriberKeepsLatest(t *testing.T) {
	c, _, _ := newTestController(&fakeBackend{})
	ch, cancel := c.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		c.CloseModal()
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestView_RendersCurrentToasts(t *testing.T) {
	b := &fakeBackend{dataErr: errors.New("down")}
	c, r, clk := newTestController(b)
	_ = c.Refresh(context.Background())
	require.Len(t, r.last().Notifications, 1)

	clk.Advance(defaultNotificationTTL + time.Second)
	v, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, "render", string(v))
	assert.Empty(t, r.last().Notifications)
}

func TestView_DoesNotPublish(t *testing.T) {
	c, _, _ := newTestController(&fakeBackend{})
	ch, cancel := c.Subscribe()
	defer cancel()

	_, err := c.View()
	require.NoError(t, err)
	assert.Len(t, ch, 0)
}

func TestModalView_FirstCallDoesNotPublish(t *testing.T) {
	c, r, _ := newTestController(&fakeBackend{})
	ch, cancel := c.Subscribe()
	defer cancel()

	v, err := c.ModalView()
	require.NoError(t, err)
	assert.Equal(t, "modal", string(v))
	assert.False(t, r.lastModal().Open)
	assert.Len(t, ch, 0)
}

func TestModal_BackgroundRendersLeaveItAlone(t *testing.T) {
	b := &fakeBackend{data: threeNext()}
	c, r, _ := newTestController(b)
	ch, cancel := c.Subscribe()
	defer cancel()

	c.OpenAdd()
	require.Len(t, ch, 1)
	ev := <-ch
	assert.Equal(t, EventModal, ev.Type)
	assert.Len(t, r.modals, 1)

	require.NoError(t, c.Refresh(context.Background()))
	b.dataErr = errors.New("down")
	_ = c.Refresh(context.Background())

	for len(ch) > 0 {
		ev := <-ch
		assert.Equal(t, EventRender, ev.Type)
	}
	assert.Len(t, r.modals, 1, "grid renders must not re-render the open dialog")
	assert.True(t, r.lastModal().Open)
}

func TestModal_TransitionsPublishDialog(t *testing.T) {
	b := &fakeBackend{job: models.Job{ID: 7, Machine: "CNC2"}}
	c, r, _ := newTestController(b)

	c.OpenAdd()
	require.NoError(t, c.OpenEdit(context.Background(), 7))
	c.CloseModal()
	require.Len(t, r.modals, 3)
	assert.Equal(t, 7, r.modals[1].EditingID)
	assert.False(t, r.modals[2].Open)

	v, err := c.ModalView()
	require.NoError(t, err)
	assert.Equal(t, "modal", string(v))
	assert.Len(t, r.modals, 3)
}

func TestRender_FailureKeepsPreviousView(t *testing.T) {
	c, r, _ := newTestController(&fakeBackend{})
	require.NoError(t, c.Render())

	r.err = errors.New("template")
	require.Error(t, c.Render())
	v, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, "render", string(v))
}
