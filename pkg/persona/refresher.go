package persona

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/shadowlink/afterlife/pkg/logger"
)

// Refresher clears the persona cache on a cron schedule so edited YAML
// files get picked up without a restart. Preload ids are warmed again
// after each refresh.
type Refresher struct {
	store   *Store
	expr    string
	preload []string
}

// NewRefresher validates the cron expression and builds a refresher.
func NewRefresher(store *Store, expr string, preload []string) (*Refresher, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("invalid refresh cron expression %q", expr)
	}
	return &Refresher{store: store, expr: expr, preload: preload}, nil
}

// Run blocks until ctx is cancelled, refreshing the cache at each tick.
func (r *Refresher) Run(ctx context.Context) {
	logger.InfoCF("persona", "Cache refresher started", map[string]interface{}{
		"cron": r.expr,
	})

	for {
		next, err := gronx.NextTick(r.expr, false)
		if err != nil {
			logger.ErrorCF("persona", "Failed to compute next refresh tick", map[string]interface{}{
				"cron":  r.expr,
				"error": err.Error(),
			})
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.InfoC("persona", "Cache refresher stopped")
			return
		case <-timer.C:
		}

		r.store.ClearCache()
		if len(r.preload) > 0 {
			r.store.Preload(r.preload...)
		}
		logger.InfoCF("persona", "Persona cache refreshed", map[string]interface{}{
			"preloaded": len(r.preload),
		})
	}
}
