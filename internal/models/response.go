package models

// ActionResult is the envelope returned by add_job, edit_job, finish_job
// and clear_history. Success=false carries a user-facing message.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NavigateResult is the body of navigate_job. Job is nil when the queue is empty.
type NavigateResult struct {
	Job *Job `json:"job"`
}
