package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/dashboard"
	"github.com/sind-data/insecurity-dashboard/internal/ingest"
)

var loadPath string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a dataset file and report what normalization would keep",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path := loadPath
		if path == "" {
			path = cfg.Data.Path
		}

		records, report, err := ingest.LoadFile(ctx, path)
		if err != nil {
			return err
		}

		board := dashboard.New(records, report)
		snap := board.Snapshot()

		zap.L().Info("load complete",
			zap.String("path", path),
			zap.String("run_id", report.RunID),
			zap.Int("loaded", report.Loaded),
			zap.Int("dropped_no_location", report.DroppedNoLocation),
			zap.Int("dropped_bad_date", report.DroppedBadDate),
			zap.Int("empty_category_set", report.EmptyCategorySet),
			zap.Int("crsv_missing_description", report.CRSVMissingDescription),
			zap.Time("min_date", snap.MinDate),
			zap.Time("max_date", snap.MaxDate),
		)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadPath, "file", "", "dataset path (default from config)")
	rootCmd.AddCommand(loadCmd)
}
