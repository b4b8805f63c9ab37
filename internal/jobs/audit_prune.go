package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

// AuditPruner removes audit entries past the configured retention window. The
// audit log grows without bound otherwise; entries older than the window have
// no evidentiary value and only slow down the filtered listing queries.
type AuditPruner struct {
	audits   *repositories.AuditRepository
	window   time.Duration
	interval time.Duration
	stopChan chan struct{}
}

// NewAuditPruner creates a pruner. The sweep interval is shared with the
// citizen purge job; a non-positive interval defaults to one hour.
func NewAuditPruner(audits *repositories.AuditRepository, window, interval time.Duration) *AuditPruner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AuditPruner{
		audits:   audits,
		window:   window,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the prune loop until Stop is called or the context is cancelled.
// The first pass runs immediately.
func (p *AuditPruner) Start(ctx context.Context) {
	slog.Info("audit prune job started",
		"window", p.window.String(),
		"interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.prune(ctx)

	for {
		select {
		case <-ticker.C:
			p.prune(ctx)
		case <-p.stopChan:
			slog.Info("audit prune job stopped")
			return
		case <-ctx.Done():
			slog.Info("audit prune job stopped", "reason", ctx.Err())
			return
		}
	}
}

// Stop signals the prune loop to exit.
func (p *AuditPruner) Stop() {
	close(p.stopChan)
}

// prune deletes everything past the retention horizon. Pruning is not itself
// audited; a new entry per sweep would defeat the point.
func (p *AuditPruner) prune(ctx context.Context) {
	if p.window <= 0 {
		return
	}

	cutoff := time.Now().Add(-p.window)
	deleted, err := p.audits.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("audit prune sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("audit prune sweep completed", "pruned", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
}
