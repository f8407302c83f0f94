// Package worker polls the job store for queued map jobs, runs the map
// pipeline on each, and writes the artifacts back. Multiple workers can run
// against the same store; claims are atomic at the store level.
package worker

import (
	"bytes"
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/zipmap/internal/mapgen"
	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/refdata"
	"github.com/sells-group/zipmap/internal/store"
	"github.com/sells-group/zipmap/internal/table"
)

// Options tunes the polling loop.
type Options struct {
	Concurrency     int
	PollInterval    time.Duration
	JobTimeout      time.Duration
	ClaimsPerSecond int
}

// Worker drains the job queue.
type Worker struct {
	store store.Store
	refs  *refdata.Store
	opts  Options
	log   *zap.Logger
}

// New builds a worker. Zero option fields get conservative defaults.
func New(s store.Store, refs *refdata.Store, opts Options) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 5 * time.Minute
	}
	if opts.ClaimsPerSecond <= 0 {
		opts.ClaimsPerSecond = 4
	}
	return &Worker{
		store: s,
		refs:  refs,
		opts:  opts,
		log:   zap.L().With(zap.String("component", "worker")),
	}
}

// Run polls until the context is cancelled. Returns nil on cancellation;
// store errors during claiming are logged and retried, not fatal.
func (w *Worker) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Limit(w.opts.ClaimsPerSecond), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)

	w.log.Info("worker started",
		zap.Int("concurrency", w.opts.Concurrency),
		zap.Duration("poll_interval", w.opts.PollInterval),
	)

	for {
		if err := limiter.Wait(gctx); err != nil {
			break
		}

		job, input, err := w.store.ClaimNextJob(gctx)
		if err != nil {
			w.log.Error("claim failed", zap.Error(err))
			if !sleep(gctx, w.opts.PollInterval) {
				break
			}
			continue
		}
		if job == nil {
			if !sleep(gctx, w.opts.PollInterval) {
				break
			}
			continue
		}

		g.Go(func() error {
			w.process(gctx, job, input)
			return nil
		})
	}

	_ = g.Wait()
	w.log.Info("worker stopped")
	return nil
}

// ProcessOne runs a single already-claimed job. Exposed for the job runner
// CLI path, which generates synchronously instead of polling.
func (w *Worker) ProcessOne(ctx context.Context, job *model.Job, input []byte) {
	w.process(ctx, job, input)
}

func (w *Worker) process(ctx context.Context, job *model.Job, input []byte) {
	log := w.log.With(zap.String("job_id", job.ID), zap.String("file", job.FileName))
	log.Info("processing job")
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, w.opts.JobTimeout)
	defer cancel()

	stage, err := w.run(ctx, job, input)
	if err != nil {
		log.Error("job failed", zap.String("stage", stage), zap.Error(err))
		ep := model.ErrorPayload{Stage: stage, Message: err.Error()}
		if ferr := w.store.FailJob(context.WithoutCancel(ctx), job.ID, ep); ferr != nil {
			log.Error("recording failure failed", zap.Error(ferr))
		}
		return
	}

	log.Info("job done", zap.Duration("elapsed", time.Since(start)))
}

// run executes the pipeline stages and names the one that failed.
func (w *Worker) run(ctx context.Context, job *model.Job, input []byte) (string, error) {
	tbl, err := table.FromXLSXBytes(input)
	if err != nil {
		return "parse", err
	}

	fig, report, err := mapgen.Generate(ctx, w.refs, tbl, job.Request)
	if err != nil {
		return "generate", err
	}

	var png bytes.Buffer
	if err := fig.EncodePNG(&png); err != nil {
		return "render", err
	}

	csv, err := table.ReportCSV(report, job.Request.Geography)
	if err != nil {
		return "render", err
	}

	res := store.Result{PNG: png.Bytes(), ReportCSV: csv}
	if err := w.store.CompleteJob(ctx, job.ID, res); err != nil {
		return "store", eris.Wrap(err, "worker: store result")
	}
	return "", nil
}

// sleep waits for d or until the context ends. Reports whether to keep going.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
