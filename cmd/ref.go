package main

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zipmap/internal/fetcher"
	"github.com/sells-group/zipmap/internal/refdata"
)

var refDatasets []string

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage reference geometry datasets",
}

var refFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download Census boundary shapefiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls := map[string]string{
			refdata.DatasetZIP:   cfg.Fetch.ZIPURL,
			refdata.DatasetState: cfg.Fetch.StateURL,
		}

		for _, dataset := range refDatasets {
			rawURL, ok := urls[dataset]
			if !ok {
				return eris.Errorf("unknown dataset %q, want zip or state", dataset)
			}
			if rawURL == "" {
				return eris.Errorf("no fetch url configured for %s dataset", dataset)
			}

			f, err := fetcherFor(rawURL)
			if err != nil {
				return err
			}

			shpPath, err := fetcher.FetchShapefile(ctx, f, rawURL, cfg.Ref.DataDir)
			if err != nil {
				return err
			}
			zap.L().Info("dataset fetched",
				zap.String("dataset", dataset),
				zap.String("shapefile", shpPath),
			)
		}
		return nil
	},
}

var refPrepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the binary geometry cache from the shapefiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		refs := newRefStore()
		for _, dataset := range refDatasets {
			path, n, err := refs.Prepare(dataset)
			if err != nil {
				return err
			}
			zap.L().Info("dataset prepared",
				zap.String("dataset", dataset),
				zap.String("cache", path),
				zap.Int("units", n),
			)
		}
		return nil
	},
}

var refStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report which reference files are present",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := []struct {
			label string
			path  string
		}{
			{"zip shapefile", cfg.Ref.ZIPShapefile},
			{"state shapefile", cfg.Ref.StateShapefile},
			{"label offsets", cfg.Ref.OffsetsFile},
		}
		if cfg.Ref.CacheDir != "" {
			files = append(files,
				struct{ label, path string }{"zip cache", filepath.Join(cfg.Ref.CacheDir, "zip.ewkb")},
				struct{ label, path string }{"state cache", filepath.Join(cfg.Ref.CacheDir, "state.ewkb")},
			)
		}

		for _, f := range files {
			info, err := os.Stat(f.path)
			if err != nil {
				fmt.Printf("%-16s missing  %s\n", f.label, f.path)
				continue
			}
			fmt.Printf("%-16s %8d bytes  %s\n", f.label, info.Size(), f.path)
		}
		return nil
	},
}

// fetcherFor picks the transport from the URL scheme.
func fetcherFor(rawURL string) (fetcher.Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "parse url %s", rawURL)
	}
	switch u.Scheme {
	case "http", "https":
		return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.Retries,
		}), nil
	case "ftp":
		return fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Host:    cfg.Fetch.FTPHost,
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		}), nil
	}
	return nil, eris.Errorf("unsupported url scheme %q", u.Scheme)
}

func init() {
	refCmd.PersistentFlags().StringSliceVar(&refDatasets, "dataset", []string{refdata.DatasetZIP, refdata.DatasetState}, "datasets to act on (zip, state)")
	refCmd.AddCommand(refFetchCmd, refPrepareCmd, refStatusCmd)
	rootCmd.AddCommand(refCmd)
}
