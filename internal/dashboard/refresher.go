package dashboard

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ReloadFunc fetches and normalizes a fresh dataset, then swaps it into the
// board. A failed reload leaves the previous snapshot serving.
type ReloadFunc func(ctx context.Context) error

// Refresher reloads the dataset on a cron schedule while the server runs.
type Refresher struct {
	c *cron.Cron
}

// StartRefresher schedules reload on the given cron spec (e.g. "0 6 * * *").
func StartRefresher(spec string, reload ReloadFunc) (*Refresher, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		start := time.Now()
		if err := reload(ctx); err != nil {
			zap.L().Error("dashboard: scheduled refresh failed", zap.Error(err))
			return
		}
		zap.L().Info("dashboard: dataset refreshed",
			zap.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: invalid refresh schedule %q", spec)
	}

	c.Start()
	zap.L().Info("dashboard: refresh scheduled", zap.String("spec", spec))
	return &Refresher{c: c}, nil
}

// Stop cancels future refreshes; a reload already running completes.
func (r *Refresher) Stop() {
	if r != nil && r.c != nil {
		r.c.Stop()
	}
}
