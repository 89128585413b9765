package view

import (
	"html/template"
	"strconv"
	"time"

	"cnc_dashboard/internal/models"
)

// Achievement tiers. The lower bound of each tier is inclusive.
const (
	TierGood     = "good"
	TierWarning  = "warning"
	TierCritical = "critical"

	goodThreshold    = 80.0
	warningThreshold = 60.0
)

// Tier classifies an achievement percentage for the progress bar colour.
func Tier(achievement float64) string {
	switch {
	case achievement >= goodThreshold:
		return TierGood
	case achievement >= warningThreshold:
		return TierWarning
	default:
		return TierCritical
	}
}

// tierColor maps a tier to its tailwind colour name.
func tierColor(tier string) string {
	switch tier {
	case TierGood:
		return "green"
	case TierWarning:
		return "yellow"
	default:
		return "red"
	}
}

// Slots a job card can occupy.
const (
	SlotCurrent = "current"
	SlotNext    = "next"
)

// DashboardView is the view-model for the pushed fragment: the machine
// grid and the toast list. The modal is rendered separately.
type DashboardView struct {
	Machines []MachineCard
	Toasts   []ToastView
}

// MachineCard is one machine's column.
type MachineCard struct {
	Name      string
	TotalJobs int
	Current   *JobCard
	Next      *JobCard

	// Carousel controls are shown only with more than one queued job.
	ShowCarousel bool
	Position     int // 1-based
	Count        int
}

// JobCard is a rendered job. Width is the raw achievement, not clamped:
// values over 100 overflow the bar.
type JobCard struct {
	ID              int
	Slot            string
	Model           string
	Part            string
	Size            string
	Start           string
	Finish          string
	Target          string
	Operator        string
	AchievementText string
	BarStyle        template.CSS
	Tier            string
	Remark          string
	ShowFinish      bool
}

// ModalView is the add/edit dialog.
type ModalView struct {
	Open      bool
	EditingID int
	Title     string
	Form      models.JobForm
	Machines  []string
	JobTypes  []string
}

// ToastView is a notification with the time it has left on screen.
type ToastView struct {
	ID          string
	Kind        string
	Message     string
	RemainingMS int64
}

// BuildDashboard maps a snapshot to the view-model. Machines absent from
// the data render empty; cursor values are taken from the snapshot as is.
func BuildDashboard(s models.Snapshot) DashboardView {
	v := DashboardView{
		Machines: make([]MachineCard, 0, len(models.MachineNames)),
		Toasts:   buildToasts(s.Notifications, s.RenderedAt),
	}
	for _, name := range models.MachineNames {
		v.Machines = append(v.Machines, buildMachineCard(name, s.Data[name], s.Indices[name]))
	}
	return v
}

func buildMachineCard(name string, q models.MachineQueue, idx int) MachineCard {
	card := MachineCard{
		Name:      name,
		TotalJobs: q.TotalJobs,
		Count:     len(q.NextJobs),
	}
	if q.Current != nil {
		jc := buildJobCard(*q.Current, SlotCurrent)
		card.Current = &jc
	}
	if idx < 0 || idx >= len(q.NextJobs) {
		idx = 0
	}
	if len(q.NextJobs) > 0 {
		jc := buildJobCard(q.NextJobs[idx], SlotNext)
		card.Next = &jc
	}
	card.ShowCarousel = len(q.NextJobs) > 1
	card.Position = idx + 1
	return card
}

func buildJobCard(j models.Job, slot string) JobCard {
	tier := Tier(j.Achievement)
	return JobCard{
		ID:              j.ID,
		Slot:            slot,
		Model:           j.Model,
		Part:            j.Part,
		Size:            j.Size,
		Start:           orDash(j.Start),
		Finish:          orDash(j.Finish),
		Target:          j.Target,
		Operator:        j.Operator,
		AchievementText: strconv.FormatFloat(j.Achievement, 'f', 1, 64) + "%",
		// a formatted float cannot break out of the CSS context
		BarStyle:   template.CSS("width: " + strconv.FormatFloat(j.Achievement, 'f', -1, 64) + "%"),
		Tier:       tier,
		Remark:     j.Remark,
		ShowFinish: slot == SlotCurrent,
	}
}

// BuildModal maps the dialog state to its view-model.
func BuildModal(m models.Modal) ModalView {
	title := "Add New Job"
	if m.EditingID != 0 {
		title = "Edit Job"
	}
	return ModalView{
		Open:      m.Open,
		EditingID: m.EditingID,
		Title:     title,
		Form:      m.Form,
		Machines:  models.MachineNames,
		JobTypes:  []string{models.JobTypeCurrent, models.JobTypeNext},
	}
}

func buildToasts(ns []models.Notification, now time.Time) []ToastView {
	out := make([]ToastView, 0, len(ns))
	for _, n := range ns {
		left := n.ExpiresAt.Sub(now)
		if left <= 0 {
			continue
		}
		out = append(out, ToastView{
			ID:          n.ID,
			Kind:        n.Kind,
			Message:     n.Message,
			RemainingMS: left.Milliseconds(),
		})
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
