// Package store persists map jobs, their input spreadsheets, and their
// rendered artifacts. Two backends implement the same interface: an embedded
// SQLite database for single-node deployments and PostgreSQL for shared ones.
package store

import (
	"context"

	"github.com/sells-group/zipmap/internal/model"
)

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Result holds the artifacts produced by a completed job.
type Result struct {
	PNG       []byte
	ReportCSV []byte
}

// Store defines the persistence interface for the map job pipeline.
type Store interface {
	// CreateJob enqueues a job with its input spreadsheet bytes.
	CreateJob(ctx context.Context, fileName string, input []byte, req model.MapRequest) (*model.Job, error)

	// ClaimNextJob atomically marks the oldest queued job as processing and
	// returns it with its input bytes. Returns (nil, nil, nil) when the queue
	// is empty. Safe for concurrent workers.
	ClaimNextJob(ctx context.Context) (*model.Job, []byte, error)

	// CompleteJob stores the artifacts and moves the job to done.
	CompleteJob(ctx context.Context, jobID string, res Result) error

	// FailJob records a structured failure and moves the job to error.
	FailJob(ctx context.Context, jobID string, ep model.ErrorPayload) error

	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	GetResult(ctx context.Context, jobID string) (*Result, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
