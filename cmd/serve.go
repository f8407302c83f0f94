package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/zipmap/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for job submission and artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := api.New(jobs, api.Options{
			Port:           port,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
