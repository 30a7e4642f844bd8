package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "insecurity-dashboard",
	Short: "Humanitarian insecurity incident dashboard backend",
	Long:  "Loads the merged SiND incident dataset (aid worker attacks, explosive weapons, CRSV) and serves filtered map markers and time-bucketed chart data to the dashboard frontend.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
