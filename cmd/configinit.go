package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/config"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := config.WriteStarter(configInitPath); err != nil {
			return err
		}
		zap.L().Info("starter config written", zap.String("path", configInitPath))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "config.yaml", "where to write the starter config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
