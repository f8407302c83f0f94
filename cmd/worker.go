package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/zipmap/internal/worker"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the job worker loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("worker"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		concurrency := workerConcurrency
		if concurrency == 0 {
			concurrency = cfg.Worker.Concurrency
		}

		w := worker.New(jobs, newRefStore(), worker.Options{
			Concurrency:     concurrency,
			PollInterval:    time.Duration(cfg.Worker.PollIntervalMS) * time.Millisecond,
			JobTimeout:      time.Duration(cfg.Worker.JobTimeoutSecs) * time.Second,
			ClaimsPerSecond: cfg.Worker.ClaimsPerSecond,
		})
		return w.Run(ctx)
	},
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "concurrent jobs (default from config)")
	rootCmd.AddCommand(workerCmd)
}
