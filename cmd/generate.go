package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zipmap/internal/mapgen"
	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/table"
)

var (
	genKeyColumn   string
	genValueColumn string
	genTitle       string
	genPalette     []string
	genAutoFill    bool
	genGeography   string
	genOut         string
	genReport      string
)

var generateCmd = &cobra.Command{
	Use:   "generate <spreadsheet.xlsx>",
	Short: "Render a choropleth map from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tbl, err := table.FromXLSXFile(args[0])
		if err != nil {
			return err
		}

		req := model.MapRequest{
			SchemaVersion: model.RequestSchemaVersion,
			KeyColumn:     genKeyColumn,
			ValueColumn:   genValueColumn,
			Title:         genTitle,
			Palette:       genPalette,
			AutoFill:      genAutoFill,
			Geography:     model.Geography(genGeography),
		}

		fig, report, err := mapgen.Generate(ctx, newRefStore(), tbl, req)
		if err != nil {
			return err
		}

		out, err := os.Create(genOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", genOut)
		}
		defer out.Close()
		if err := fig.EncodePNG(out); err != nil {
			return err
		}
		zap.L().Info("map written", zap.String("path", genOut))

		csv, err := table.ReportCSV(report, req.Geography)
		if err != nil {
			return err
		}
		if err := os.WriteFile(genReport, csv, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", genReport)
		}
		zap.L().Info("report written",
			zap.String("path", genReport),
			zap.Int("unassigned_units", len(report)),
		)

		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genKeyColumn, "key-column", "", "spreadsheet column holding ZIP codes or state abbreviations (required)")
	generateCmd.Flags().StringVar(&genValueColumn, "value-column", "", "spreadsheet column holding category values (required)")
	generateCmd.Flags().StringVar(&genTitle, "title", "", "map title")
	generateCmd.Flags().StringSliceVar(&genPalette, "palette", nil, "fill colors (hex or named); defaults to the built-in palette")
	generateCmd.Flags().BoolVar(&genAutoFill, "auto-fill", false, "impute unassigned ZIPs from numeric neighbors")
	generateCmd.Flags().StringVar(&genGeography, "geography", "zip", "join geography: zip or state")
	generateCmd.Flags().StringVar(&genOut, "out", "map.png", "output PNG path")
	generateCmd.Flags().StringVar(&genReport, "report", "report.csv", "unassigned-units report path")
	generateCmd.MarkFlagRequired("key-column")
	generateCmd.MarkFlagRequired("value-column")
	rootCmd.AddCommand(generateCmd)
}
