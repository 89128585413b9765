package models

import "time"

// Notification kinds.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
)

// Notification is a transient on-screen message.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JobForm is the modal form in the input control's native formats.
// Start and Finish are YYYY-MM-DDTHH:MM or empty. The binding rules are
// checked by gin's validator when a submission is bound.
type JobForm struct {
	Machine  string `json:"mesin" form:"mesin" binding:"required,oneof=CNC1 CNC2 CNC3 CNC4 CNC5"`
	JobType  string `json:"job_type" form:"job_type" binding:"required,oneof=current next"`
	Model    string `json:"MODEL" form:"MODEL"`
	Part     string `json:"PART" form:"PART"`
	Size     string `json:"SIZE" form:"SIZE"`
	Start    string `json:"START" form:"START"`
	Finish   string `json:"FINISH" form:"FINISH"`
	Target   string `json:"ETC_H" form:"ETC_H"`
	Operator string `json:"OPERATOR" form:"OPERATOR"`
	Remark   string `json:"REMARK" form:"REMARK"`
}

// Modal is the add/edit dialog state. EditingID is zero in add mode.
type Modal struct {
	Open      bool
	EditingID int
	Form      JobForm
}

// Snapshot is everything the view needs to draw a session.
// Indices are already normalised into range.
type Snapshot struct {
	SessionID     string
	Data          DashboardData
	Indices       map[string]int
	Modal         Modal
	Notifications []Notification
	RenderedAt    time.Time
}
