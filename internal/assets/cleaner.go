// Package assets releases orphaned uploaded media (profile photos, official
// portraits, the municipal seal) from the external asset store once the row
// referencing them has been replaced or removed. Cleanup is best-effort: an
// orphaned asset costs storage, not correctness, so failures are logged and
// the triggering request is never blocked or failed.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/safego"
)

// Cleaner issues destroy requests against the asset store's HTTP API
type Cleaner struct {
	destroyURL string
	apiKey     string
	attempts   int
	backoff    time.Duration
	client     *http.Client
}

// NewCleaner creates a Cleaner from the assets configuration. A Cleaner with
// no destroy URL configured is valid and drops every request.
func NewCleaner(cfg config.AssetsConfig) *Cleaner {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Cleaner{
		destroyURL: cfg.DestroyURL,
		apiKey:     cfg.APIKey,
		attempts:   attempts,
		backoff:    cfg.RetryBackoff,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Destroy removes one stored asset by public ID, retrying transient failures
// with a fixed backoff. Returns the last error only for observability; callers
// that must not block should use DestroyAsync.
func (c *Cleaner) Destroy(ctx context.Context, publicID string) error {
	if c.destroyURL == "" || publicID == "" {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.destroy(ctx, publicID)
		if lastErr == nil {
			return nil
		}
		slog.Warn("asset destroy attempt failed",
			"public_id", publicID,
			"attempt", attempt,
			"error", lastErr)
	}

	return fmt.Errorf("failed to destroy asset %s after %d attempts: %w", publicID, c.attempts, lastErr)
}

// DestroyAsync launches Destroy on a background goroutine with its own
// timeout, detached from the request that triggered it
func (c *Cleaner) DestroyAsync(publicID string) {
	if c.destroyURL == "" || publicID == "" {
		return
	}

	safego.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := c.Destroy(ctx, publicID); err != nil {
			slog.Error("asset destroy abandoned", "public_id", publicID, "error", err)
		}
	})
}

func (c *Cleaner) destroy(ctx context.Context, publicID string) error {
	form := url.Values{}
	form.Set("public_id", publicID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.destroyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("destroy request returned status %d", resp.StatusCode)
	}
	return nil
}
