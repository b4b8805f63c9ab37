// Package jobs contains the background maintenance loops that run alongside
// the HTTP server: purging soft-deleted citizen records past their retention
// window, pruning old audit entries, and cleaning up expired sessions and
// one-time passwords.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/telemetry"
)

// CitizenPurger permanently removes citizen records whose soft-delete window
// has elapsed. Each sweep deletes in batches until the table is drained, then
// records a single audit entry summarizing the run.
type CitizenPurger struct {
	citizens *repositories.CitizenRepository
	recorder *audit.Recorder
	window   time.Duration
	interval time.Duration
	batch    int
	stopChan chan struct{}
}

// NewCitizenPurger creates a purger from retention settings.
func NewCitizenPurger(citizens *repositories.CitizenRepository, recorder *audit.Recorder, cfg config.RetentionConfig) *CitizenPurger {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &CitizenPurger{
		citizens: citizens,
		recorder: recorder,
		window:   cfg.SoftDeleteWindow,
		interval: interval,
		batch:    cfg.SweepBatchSize,
		stopChan: make(chan struct{}),
	}
}

// Start runs the purge loop until Stop is called or the context is cancelled.
// The first sweep runs immediately.
func (p *CitizenPurger) Start(ctx context.Context) {
	slog.Info("citizen purge job started",
		"window", p.window.String(),
		"interval", p.interval.String(),
		"batch_size", p.batch)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			p.sweep(ctx)
		case <-p.stopChan:
			slog.Info("citizen purge job stopped")
			return
		case <-ctx.Done():
			slog.Info("citizen purge job stopped", "reason", ctx.Err())
			return
		}
	}
}

// Stop signals the purge loop to exit.
func (p *CitizenPurger) Stop() {
	close(p.stopChan)
}

// sweep drains all eligible rows in batches. A failed batch aborts the sweep;
// the next tick retries from where it left off.
func (p *CitizenPurger) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-p.window)
	var total int64

	for {
		purged, err := p.citizens.PurgeSoftDeletedBefore(ctx, cutoff, p.batch)
		if err != nil {
			slog.Error("citizen purge sweep failed", "error", err, "purged_so_far", total)
			break
		}
		total += purged
		if purged < int64(p.batch) {
			break
		}
	}

	if total == 0 {
		return
	}

	telemetry.CitizensPurgedTotal.Add(float64(total))
	slog.Info("citizen purge sweep completed", "purged", total, "cutoff", cutoff.Format(time.RFC3339))

	p.recorder.Record(ctx, audit.System, models.ActionPermanentDelete,
		fmt.Sprintf("Purged %d senior citizen record(s) soft-deleted before %s.", total, cutoff.Format("2006-01-02")), "")
}
