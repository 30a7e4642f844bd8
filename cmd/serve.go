package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/dashboard"
	"github.com/sind-data/insecurity-dashboard/internal/ingest"
	"github.com/sind-data/insecurity-dashboard/internal/ingest/fetch"
	"github.com/sind-data/insecurity-dashboard/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		records, report, err := loadDataset(ctx)
		if err != nil {
			return err
		}
		board := dashboard.New(records, report)

		if cfg.Refresh.Spec != "" {
			refresher, err := dashboard.StartRefresher(cfg.Refresh.Spec, func(ctx context.Context) error {
				records, report, err := loadDataset(ctx)
				if err != nil {
					return err
				}
				board.Swap(records, report)
				return nil
			})
			if err != nil {
				return err
			}
			defer refresher.Stop()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: dashboard.NewRouter(board, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("records", len(records)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// loadDataset loads the incident dataset from the configured path or URL.
func loadDataset(ctx context.Context) ([]model.IncidentRecord, ingest.Report, error) {
	if cfg.Data.Path != "" {
		if _, err := os.Stat(cfg.Data.Path); err == nil || cfg.Data.URL == "" {
			return ingest.LoadFile(ctx, cfg.Data.Path)
		}
	}
	if cfg.Data.URL == "" {
		return nil, ingest.Report{}, eris.New("no dataset configured (set data.path or data.url)")
	}

	f := fetch.New(fetch.Options{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	})
	tmp := filepath.Join(os.TempDir(), "sind_dashboard_data.csv")
	if _, err := f.DownloadToFile(ctx, cfg.Data.URL, tmp); err != nil {
		return nil, ingest.Report{}, err
	}
	return ingest.LoadFile(ctx, tmp)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
