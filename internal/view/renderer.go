package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"cnc_dashboard/internal/models"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Renderer executes the embedded templates.
type Renderer struct {
	tpl *template.Template
}

// PageData is the full dashboard page around pre-rendered fragments.
type PageData struct {
	SessionID       string
	Dashboard       template.HTML
	Modal           template.HTML
	RefreshInterval time.Duration
}

// HistoryPage lists finished jobs.
type HistoryPage struct {
	Entries []HistoryRow
	Error   string
}

// HistoryRow is one finished job formatted for the table.
type HistoryRow struct {
	ID              int
	Machine         string
	Model           string
	Part            string
	Size            string
	Start           string
	Finish          string
	Target          string
	Operator        string
	AchievementText string
	Tier            string
	Remark          string
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"tierColor": tierColor,
		"seconds":   func(d time.Duration) int64 { return int64(d / time.Second) },
	}
	tpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// RenderDashboard renders the swappable dashboard fragment.
func (r *Renderer) RenderDashboard(s models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "dashboard", BuildDashboard(s)); err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderModal renders the add/edit dialog.
func (r *Renderer) RenderModal(m models.Modal) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "modal", BuildModal(m)); err != nil {
		return nil, fmt.Errorf("render modal: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage writes the full HTML page.
func (r *Renderer) RenderPage(w io.Writer, p PageData) error {
	return r.tpl.ExecuteTemplate(w, "page", p)
}

// RenderHistory writes the history page.
func (r *Renderer) RenderHistory(w io.Writer, entries []models.HistoryEntry, loadErr error) error {
	page := HistoryPage{Entries: make([]HistoryRow, 0, len(entries))}
	if loadErr != nil {
		page.Error = "Error loading history data"
	}
	for _, e := range entries {
		page.Entries = append(page.Entries, HistoryRow{
			ID:              e.ID,
			Machine:         e.Machine,
			Model:           e.Model,
			Part:            e.Part,
			Size:            e.Size,
			Start:           orDash(e.Start),
			Finish:          orDash(e.Finish),
			Target:          e.Target,
			Operator:        e.Operator,
			AchievementText: fmt.Sprintf("%.1f%%", e.Achievement),
			Tier:            Tier(e.Achievement),
			Remark:          e.Remark,
		})
	}
	return r.tpl.ExecuteTemplate(w, "history", page)
}
