package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

// ExpiryCleaner deletes expired sessions and one-time passwords on a fixed
// interval. Both tables are append-heavy and rows past their expiry are never
// read again.
type ExpiryCleaner struct {
	sessions *repositories.SessionRepository
	sms      *repositories.SMSRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewExpiryCleaner creates a cleaner. A non-positive interval defaults to
// fifteen minutes.
func NewExpiryCleaner(sessions *repositories.SessionRepository, sms *repositories.SMSRepository, interval time.Duration) *ExpiryCleaner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ExpiryCleaner{
		sessions: sessions,
		sms:      sms,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop is called or the context is
// cancelled. The first pass runs immediately.
func (e *ExpiryCleaner) Start(ctx context.Context) {
	slog.Info("expiry cleanup job started", "interval", e.interval.String())

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.run(ctx)

	for {
		select {
		case <-ticker.C:
			e.run(ctx)
		case <-e.stopChan:
			slog.Info("expiry cleanup job stopped")
			return
		case <-ctx.Done():
			slog.Info("expiry cleanup job stopped", "reason", ctx.Err())
			return
		}
	}
}

// Stop signals the cleanup loop to exit.
func (e *ExpiryCleaner) Stop() {
	close(e.stopChan)
}

func (e *ExpiryCleaner) run(ctx context.Context) {
	sessions, err := e.sessions.DeleteExpired(ctx)
	if err != nil {
		slog.Error("expired session cleanup failed", "error", err)
	} else if sessions > 0 {
		slog.Info("expired sessions deleted", "count", sessions)
	}

	otps, err := e.sms.DeleteExpiredOTPs(ctx, time.Now())
	if err != nil {
		slog.Error("expired OTP cleanup failed", "error", err)
	} else if otps > 0 {
		slog.Info("expired one-time passwords deleted", "count", otps)
	}
}
