package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/store"
)

var (
	jobsStatus string
	jobsLimit  int
	jobsOutDir string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect map jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer jobs.Close()

		listed, err := jobs.ListJobs(cmd.Context(), store.JobFilter{
			Status: model.JobStatus(jobsStatus),
			Limit:  jobsLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	},
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer jobs.Close()

		job, err := jobs.GetJob(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	},
}

var jobsArtifactsCmd = &cobra.Command{
	Use:   "artifacts <job-id>",
	Short: "Write a finished job's map and report to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer jobs.Close()

		res, err := jobs.GetResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if res == nil {
			return eris.Errorf("no artifacts for job %s", args[0])
		}

		pngPath := filepath.Join(jobsOutDir, "map.png")
		if err := os.WriteFile(pngPath, res.PNG, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", pngPath)
		}
		csvPath := filepath.Join(jobsOutDir, "report.csv")
		if err := os.WriteFile(csvPath, res.ReportCSV, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", csvPath)
		}

		zap.L().Info("artifacts written",
			zap.String("map", pngPath),
			zap.String("report", csvPath),
		)
		return nil
	},
}

func init() {
	jobsListCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status (queued|processing|done|error)")
	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 0, "max jobs to list")
	jobsArtifactsCmd.Flags().StringVar(&jobsOutDir, "dir", ".", "output directory")
	jobsCmd.AddCommand(jobsListCmd, jobsGetCmd, jobsArtifactsCmd)
	rootCmd.AddCommand(jobsCmd)
}
