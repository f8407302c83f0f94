package model

import "time"

// JobStatus tracks a map job through its lifecycle.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// Job is one submitted map generation request. The input spreadsheet and the
// result artifacts are stored alongside it in the job store, keyed by ID.
type Job struct {
	ID        string        `json:"id"`
	FileName  string        `json:"file_name"`
	Request   MapRequest    `json:"request"`
	Status    JobStatus     `json:"status"`
	Error     *ErrorPayload `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ErrorPayload is the structured failure record written against a job when
// the pipeline fails. A job is never left in "processing" on failure.
type ErrorPayload struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// UnassignedEntry is one row of the unassigned-units report: a geographic
// unit that had no value in the input table, and the value it ended up with
// (imputed, or the "unassigned" sentinel).
type UnassignedEntry struct {
	Key           string `json:"key"`
	ResolvedValue string `json:"resolved_value"`
}

// UnassignedSentinel is the value recorded for units that stayed unassigned
// after (or in the absence of) imputation.
const UnassignedSentinel = "unassigned"
