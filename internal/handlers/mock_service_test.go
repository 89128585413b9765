package handlers

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/models"
	"cnc_dashboard/internal/service"
	"cnc_dashboard/internal/view"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDashboard struct {
	id    string
	view  []byte
	modal []byte

	viewErr     error
	refreshErr  error
	openEditErr error
	submitRes   models.ActionResult
	submitErr   error
	finishRes   models.ActionResult
	finishErr   error
	navigateErr error

	refreshCalls int
	openAdds     int
	closes       int
	lastEditID   int
	lastForm     models.JobForm
	lastFinishID int
	lastConfirm  bool
	lastMachine  string
	lastDir      models.Direction

	mu     sync.Mutex
	events chan service.Event
	subs   int
}

func newMockDashboard(id string) *mockDashboard {
	return &mockDashboard{
		id:     id,
		view:   []byte("<div>view</div>"),
		modal:  []byte(`<div id="job-modal"></div>`),
		events: make(chan service.Event, 4),
	}
}

func (m *mockDashboard) ID() string { return m.id }
func (m *mockDashboard) Refresh(ctx context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}
func (m *mockDashboard) Render() error                 { return nil }
func (m *mockDashboard) View() ([]byte, error)         { return m.view, m.viewErr }
func (m *mockDashboard) ModalView() ([]byte, error)    { return m.modal, nil }
func (m *mockDashboard) Snapshot() models.Snapshot     { return models.Snapshot{SessionID: m.id} }
func (m *mockDashboard) OpenAdd()                      { m.openAdds++ }
func (m *mockDashboard) CloseModal()                   { m.closes++ }
func (m *mockDashboard) OpenEdit(ctx context.Context, id int) error {
	m.lastEditID = id
	return m.openEditErr
}
func (m *mockDashboard) Submit(ctx context.Context, f models.JobForm) (models.ActionResult, error) {
	m.lastForm = f
	return m.submitRes, m.submitErr
}
func (m *mockDashboard) Finish(ctx context.Context, id int, confirmed bool) (models.ActionResult, error) {
	m.lastFinishID = id
	m.lastConfirm = confirmed
	if !confirmed {
		return models.ActionResult{}, service.ErrNotConfirmed
	}
	return m.finishRes, m.finishErr
}
func (m *mockDashboard) Navigate(ctx context.Context, machine string, dir models.Direction) error {
	m.lastMachine = machine
	m.lastDir = dir
	return m.navigateErr
}
func (m *mockDashboard) Subscribe() (<-chan service.Event, func()) {
	m.mu.Lock()
	m.subs++
	m.mu.Unlock()
	return m.events, func() {
		m.mu.Lock()
		m.subs--
		m.mu.Unlock()
	}
}

type mockSessions struct {
	dashboards map[string]*mockDashboard
	openErr    error
	opened     int
}

func (m *mockSessions) Open(ctx context.Context) (service.Dashboard, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.opened++
	d := newMockDashboard("new-session")
	if m.dashboards == nil {
		m.dashboards = map[string]*mockDashboard{}
	}
	m.dashboards[d.id] = d
	return d, nil
}

func (m *mockSessions) Get(id string) (service.Dashboard, error) {
	d, ok := m.dashboards[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	return d, nil
}

type mockHistory struct {
	entries   []models.HistoryEntry
	listErr   error
	clearRes  models.ActionResult
	clearErr  error
	export    *backend.Export
	exportErr error
	lastKind  string
}

func (m *mockHistory) List(ctx context.Context) ([]models.HistoryEntry, error) {
	return m.entries, m.listErr
}
func (m *mockHistory) Clear(ctx context.Context) (models.ActionResult, error) {
	return m.clearRes, m.clearErr
}
func (m *mockHistory) Export(ctx context.Context, kind string) (*backend.Export, error) {
	m.lastKind = kind
	return m.export, m.exportErr
}

type mockPages struct {
	lastPage    view.PageData
	lastEntries []models.HistoryEntry
	lastErr     error
	err         error
}

func (m *mockPages) RenderPage(w io.Writer, p view.PageData) error {
	m.lastPage = p
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, "<html>"+string(p.Dashboard)+"</html>")
	return err
}

func (m *mockPages) RenderHistory(w io.Writer, entries []models.HistoryEntry, loadErr error) error {
	m.lastEntries = entries
	m.lastErr = loadErr
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, "<html>history</html>")
	return err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, pages PageRenderer) *gin.Engine {
	h := NewHandler(s, nil, Options{Pages: pages, RefreshInterval: 30 * time.Second})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func sessionURL(sid, path string) string {
	return "/api/v1/sessions/" + sid + path
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}
