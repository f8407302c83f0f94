package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/zipmap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	file_name  TEXT NOT NULL,
	request    TEXT NOT NULL,
	input      BLOB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS job_results (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	png        BLOB NOT NULL,
	report_csv BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, fileName string, input []byte, req model.MapRequest) (*model.Job, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal request")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, file_name, request, input, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, fileName, string(reqJSON), input, string(model.JobQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert job")
	}

	return &model.Job{
		ID:        id,
		FileName:  fileName,
		Request:   req,
		Status:    model.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) ClaimNextJob(ctx context.Context) (*model.Job, []byte, error) {
	// RETURNING makes the claim atomic: concurrent workers never pick up
	// the same job twice.
	row := s.db.QueryRowContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ?
		 WHERE id = (SELECT id FROM jobs WHERE status = ? ORDER BY created_at, id LIMIT 1)
		 RETURNING id, file_name, request, input, status, error, created_at, updated_at`,
		string(model.JobProcessing), time.Now().UTC(), string(model.JobQueued),
	)

	job, input, err := scanJobWithInput(row)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: claim job")
	}
	return job, input, nil
}

func (s *SQLiteStore) CompleteJob(ctx context.Context, jobID string, res Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin complete")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO job_results (job_id, png, report_csv) VALUES (?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET png = excluded.png, report_csv = excluded.report_csv`,
		jobID, res.PNG, res.ReportCSV,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert result %s", jobID)
	}

	r, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = NULL, updated_at = ? WHERE id = ?`,
		string(model.JobDone), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete job %s", jobID)
	}
	if err := checkRowsAffected(r, "job", jobID); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit complete")
}

func (s *SQLiteStore) FailJob(ctx context.Context, jobID string, ep model.ErrorPayload) error {
	epJSON, err := json.Marshal(ep)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal error payload")
	}

	r, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.JobError), string(epJSON), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail job %s", jobID)
	}
	return checkRowsAffected(r, "job", jobID)
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, request, status, error, created_at, updated_at FROM jobs WHERE id = ?`,
		jobID,
	)
	return scanJob(row)
}

func (s *SQLiteStore) GetResult(ctx context.Context, jobID string) (*Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT png, report_csv FROM job_results WHERE job_id = ?`,
		jobID,
	)

	var res Result
	err := row.Scan(&res.PNG, &res.ReportCSV)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get result %s", jobID)
	}
	return &res, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT id, file_name, request, status, error, created_at, updated_at FROM jobs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*model.Job, error) {
	var j model.Job
	var reqJSON string
	var errJSON sql.NullString

	err := row.Scan(&j.ID, &j.FileName, &reqJSON, &j.Status, &errJSON, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("job not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan job")
	}

	if err := json.Unmarshal([]byte(reqJSON), &j.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if errJSON.Valid {
		j.Error = &model.ErrorPayload{}
		if err := json.Unmarshal([]byte(errJSON.String), j.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal error payload")
		}
	}
	return &j, nil
}

func scanJobWithInput(row scannable) (*model.Job, []byte, error) {
	var j model.Job
	var reqJSON string
	var input []byte
	var errJSON sql.NullString

	err := row.Scan(&j.ID, &j.FileName, &reqJSON, &input, &j.Status, &errJSON, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal([]byte(reqJSON), &j.Request); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if errJSON.Valid {
		j.Error = &model.ErrorPayload{}
		if err := json.Unmarshal([]byte(errJSON.String), j.Error); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: unmarshal error payload")
		}
	}
	return &j, input, nil
}
