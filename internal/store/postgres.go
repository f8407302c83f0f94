package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/zipmap/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// so tests can run against expectations instead of a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	file_name  TEXT NOT NULL,
	request    JSONB NOT NULL,
	input      BYTEA NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS job_results (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	png        BYTEA NOT NULL,
	report_csv BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, fileName string, input []byte, req model.MapRequest) (*model.Job, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal request")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, file_name, request, input, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, fileName, reqJSON, input, string(model.JobQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
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

func (s *PostgresStore) ClaimNextJob(ctx context.Context) (*model.Job, []byte, error) {
	// SKIP LOCKED lets concurrent workers claim different jobs without
	// serializing on the queue head.
	row := s.pool.QueryRow(ctx,
		`UPDATE jobs SET status = $1, updated_at = now()
		 WHERE id = (
			SELECT id FROM jobs WHERE status = $2
			ORDER BY created_at, id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		 )
		 RETURNING id, file_name, request, input, status, error, created_at, updated_at`,
		string(model.JobProcessing), string(model.JobQueued),
	)

	var j model.Job
	var reqJSON, errJSON []byte
	var input []byte
	err := row.Scan(&j.ID, &j.FileName, &reqJSON, &input, &j.Status, &errJSON, &j.CreatedAt, &j.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: claim job")
	}

	if err := json.Unmarshal(reqJSON, &j.Request); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	if len(errJSON) > 0 {
		j.Error = &model.ErrorPayload{}
		if err := json.Unmarshal(errJSON, j.Error); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: unmarshal error payload")
		}
	}
	return &j, input, nil
}

func (s *PostgresStore) CompleteJob(ctx context.Context, jobID string, res Result) error {
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO job_results (job_id, png, report_csv) VALUES ($1, $2, $3)
		 ON CONFLICT (job_id) DO UPDATE SET png = EXCLUDED.png, report_csv = EXCLUDED.report_csv`,
		jobID, res.PNG, res.ReportCSV,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert result %s", jobID)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, error = NULL, updated_at = now() WHERE id = $2`,
		string(model.JobDone), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete job %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) FailJob(ctx context.Context, jobID string, ep model.ErrorPayload) error {
	epJSON, err := json.Marshal(ep)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal error payload")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, error = $2, updated_at = now() WHERE id = $3`,
		string(model.JobError), epJSON, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail job %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, file_name, request, status, error, created_at, updated_at FROM jobs WHERE id = $1`,
		jobID,
	)

	var j model.Job
	var reqJSON, errJSON []byte
	err := row.Scan(&j.ID, &j.FileName, &reqJSON, &j.Status, &errJSON, &j.CreatedAt, &j.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.New("job not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get job")
	}

	if err := json.Unmarshal(reqJSON, &j.Request); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	if len(errJSON) > 0 {
		j.Error = &model.ErrorPayload{}
		if err := json.Unmarshal(errJSON, j.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal error payload")
		}
	}
	return &j, nil
}

func (s *PostgresStore) GetResult(ctx context.Context, jobID string) (*Result, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT png, report_csv FROM job_results WHERE job_id = $1`,
		jobID,
	)

	var res Result
	err := row.Scan(&res.PNG, &res.ReportCSV)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get result %s", jobID)
	}
	return &res, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT id, file_name, request, status, error, created_at, updated_at FROM jobs WHERE 1=1`
	var args []any
	n := 0

	if filter.Status != "" {
		n++
		query += ` AND status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += ` LIMIT $` + strconv.Itoa(n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += ` OFFSET $` + strconv.Itoa(n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		var reqJSON, errJSON []byte
		if err := rows.Scan(&j.ID, &j.FileName, &reqJSON, &j.Status, &errJSON, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		if err := json.Unmarshal(reqJSON, &j.Request); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal request")
		}
		if len(errJSON) > 0 {
			j.Error = &model.ErrorPayload{}
			if err := json.Unmarshal(errJSON, j.Error); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal error payload")
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}
