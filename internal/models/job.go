package models

// Job is one scheduled unit of work on a machine, as served by the backend.
// Field names on the wire are case-sensitive and must not change.
type Job struct {
	ID          int     `json:"id"`
	Machine     string  `json:"mesin"`
	JobType     string  `json:"job_type"` // current | next
	Model       string  `json:"MODEL"`
	Part        string  `json:"PART"`
	Size        string  `json:"SIZE"`
	Start       string  `json:"START"`  // DD/MM - HH:MM or empty
	Finish      string  `json:"FINISH"` // DD/MM - HH:MM or empty
	Target      string  `json:"ETC_H"`  // free text, e.g. "4 H"
	Operator    string  `json:"OPERATOR"`
	Achievement float64 `json:"ACHIEVEMENT"` // percent, not clamped
	Remark      string  `json:"REMARK"`
}

// Job types used by the form's radio group.
const (
	JobTypeCurrent = "current"
	JobTypeNext    = "next"
)

// JobPayload is the body of add_job and edit_job requests.
type JobPayload struct {
	Machine  string `json:"mesin"`
	JobType  string `json:"job_type"`
	Model    string `json:"MODEL"`
	Part     string `json:"PART"`
	Size     string `json:"SIZE"`
	Start    string `json:"START"`
	Finish   string `json:"FINISH"`
	Target   string `json:"ETC_H"`
	Operator string `json:"OPERATOR"`
	Remark   string `json:"REMARK"`
}

// HistoryEntry is a finished job moved to history by the backend.
type HistoryEntry = Job
