package models

// MachineNames lists the fixed machine slots in render order.
var MachineNames = []string{"CNC1", "CNC2", "CNC3", "CNC4", "CNC5"}

// IsKnownMachine reports whether name is one of MachineNames.
func IsKnownMachine(name string) bool {
	for _, m := range MachineNames {
		if m == name {
			return true
		}
	}
	return false
}

// MachineQueue is the per-machine snapshot held in the client cache.
// TotalJobs is backend-supplied and never recomputed.
type MachineQueue struct {
	Current   *Job  `json:"current"`
	NextJobs  []Job `json:"next_jobs"`
	TotalJobs int   `json:"total_jobs"`
}

// DashboardData maps machine name to its queue.
type DashboardData map[string]MachineQueue

// Clone returns a copy whose job slices can be mutated independently.
func (d DashboardData) Clone() DashboardData {
	if d == nil {
		return nil
	}
	out := make(DashboardData, len(d))
	for name, q := range d {
		cp := MachineQueue{TotalJobs: q.TotalJobs}
		if q.Current != nil {
			cur := *q.Current
			cp.Current = &cur
		}
		if q.NextJobs != nil {
			cp.NextJobs = append([]Job(nil), q.NextJobs...)
		}
		out[name] = cp
	}
	return out
}

// Direction is a carousel navigation direction.
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// ParseDirection accepts the wire values and a couple of long forms.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "prev", "previous":
		return DirectionPrev, true
	case "next":
		return DirectionNext, true
	default:
		return "", false
	}
}
