package service

import (
	"context"
	"time"

	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/models"
)

// Backend is the part of the job backend a dashboard session talks to.
type Backend interface {
	DashboardData(ctx context.Context) (models.DashboardData, error)
	JobData(ctx context.Context, id int) (models.Job, error)
	AddJob(ctx context.Context, p models.JobPayload) (models.ActionResult, error)
	EditJob(ctx context.Context, id int, p models.JobPayload) (models.ActionResult, error)
	FinishJob(ctx context.Context, id int) (models.ActionResult, error)
	NavigateJob(ctx context.Context, machine string, dir models.Direction, currentJobID int) (*models.Job, error)
}

// HistoryBackend serves finished jobs and spreadsheet exports.
type HistoryBackend interface {
	HistoryData(ctx context.Context) ([]models.HistoryEntry, error)
	ClearHistory(ctx context.Context) (models.ActionResult, error)
	ExportExcel(ctx context.Context, kind string) (*backend.Export, error)
}

// Renderer turns a session snapshot into dashboard markup. The modal is
// rendered on its own so background renders never touch an open form.
type Renderer interface {
	RenderDashboard(s models.Snapshot) ([]byte, error)
	RenderModal(m models.Modal) ([]byte, error)
}

// Dashboard is one browser page's controller.
type Dashboard interface {
	ID() string
	Refresh(ctx context.Context) error
	Render() error
	View() ([]byte, error)
	ModalView() ([]byte, error)
	Snapshot() models.Snapshot
	OpenAdd()
	OpenEdit(ctx context.Context, id int) error
	CloseModal()
	Submit(ctx context.Context, form models.JobForm) (models.ActionResult, error)
	Finish(ctx context.Context, id int, confirmed bool) (models.ActionResult, error)
	Navigate(ctx context.Context, machine string, dir models.Direction) error
	Subscribe() (<-chan Event, func())
}

// Sessions opens and looks up dashboard sessions.
type Sessions interface {
	Open(ctx context.Context) (Dashboard, error)
	Get(id string) (Dashboard, error)
}

// History exposes finished-job listing, clearing and export.
type History interface {
	List(ctx context.Context) ([]models.HistoryEntry, error)
	Clear(ctx context.Context) (models.ActionResult, error)
	Export(ctx context.Context, kind string) (*backend.Export, error)
}

// Service aggregates everything the HTTP layer needs.
type Service struct {
	Sessions
	History
}

// Deps are the collaborators shared by all sessions.
type Deps struct {
	Backend  Backend
	History  HistoryBackend
	Renderer Renderer
}

// NewService wires a session store and history service over the backend.
// Sessions live until ctx is cancelled.
func NewService(ctx context.Context, deps Deps, opts Options) (*Service, *SessionStore) {
	store := NewSessionStore(ctx, deps, opts)
	return &Service{
		Sessions: store,
		History:  NewHistoryService(deps.History, opts.Log),
	}, store
}

// Event types. EventRender carries the machine grid and toasts; EventModal
// carries the add/edit dialog and is only sent when the dialog changes.
const (
	EventRender = "render"
	EventModal  = "modal"
)

// Event is published to subscribers after every render.
type Event struct {
	Type string    `json:"type"`
	HTML string    `json:"html,omitempty"`
	At   time.Time `json:"at"`
}
