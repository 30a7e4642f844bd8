package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/ingest"
	"github.com/sind-data/insecurity-dashboard/internal/model"
)

var (
	mergeAidPath     string
	mergeWeaponsPath string
	mergeCRSVPath    string
	mergeOutPath     string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the three per-dataset source CSVs into the dashboard CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var inputs []ingest.MergeInput
		for _, in := range []ingest.MergeInput{
			{Path: mergeAidPath, Tag: model.CategoryAidWorkers},
			{Path: mergeWeaponsPath, Tag: model.CategoryWeapons},
			{Path: mergeCRSVPath, Tag: model.CategoryCRSV},
		} {
			if in.Path != "" {
				inputs = append(inputs, in)
			}
		}
		if len(inputs) == 0 {
			return eris.New("at least one of --aid, --weapons, --crsv is required")
		}

		out, err := os.Create(mergeOutPath)
		if err != nil {
			return eris.Wrapf(err, "create %s", mergeOutPath)
		}
		defer out.Close() //nolint:errcheck

		stats, err := ingest.MergeSources(ctx, inputs, out)
		if err != nil {
			return err
		}

		zap.L().Info("merge complete",
			zap.String("out", mergeOutPath),
			zap.Int("rows", stats.Rows),
			zap.Int("aid_workers", stats.PerSource[model.CategoryAidWorkers]),
			zap.Int("weapons", stats.PerSource[model.CategoryWeapons]),
			zap.Int("crsv", stats.PerSource[model.CategoryCRSV]),
		)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeAidPath, "aid", "", "aid worker KIKA source CSV")
	mergeCmd.Flags().StringVar(&mergeWeaponsPath, "weapons", "", "explosive weapons source CSV")
	mergeCmd.Flags().StringVar(&mergeCRSVPath, "crsv", "", "CRSV source CSV")
	mergeCmd.Flags().StringVar(&mergeOutPath, "out", "data/merged_dashboard_data.csv", "merged output path")
	rootCmd.AddCommand(mergeCmd)
}
