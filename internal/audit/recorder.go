// Package audit records administrative actions to the persistent audit trail.
// Audit entries are intentionally separate from application logs: application
// logs are ephemeral debug output, while the audit trail is an immutable
// record shown to administrators inside the system itself. Recording never
// fails the operation being audited: a registry write that succeeded must not
// be rolled back because its trail entry could not be stored.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

// Actor identifies who performed an audited action. A zero UserID pointer
// marks system-initiated actions such as retention sweeps.
type Actor struct {
	UserID   *int64
	Username string
	Role     string
}

// System is the actor attached to entries produced by background jobs.
var System = Actor{Username: "SYSTEM", Role: "System"}

// Recorder writes audit entries through the audit repository
type Recorder struct {
	repo *repositories.AuditRepository
}

// NewRecorder creates a new Recorder
func NewRecorder(repo *repositories.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record stores one audit entry. Failures are logged and swallowed so the
// audited operation's outcome is never affected.
func (r *Recorder) Record(ctx context.Context, actor Actor, action, details, ipAddress string) {
	if ipAddress == "" {
		ipAddress = "UNKNOWN"
	}

	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Username:  actor.Username,
		UserRole:  actor.Role,
		Action:    action,
		Details:   details,
		IPAddress: ipAddress,
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		slog.Error("failed to record audit entry",
			"action", action,
			"user", actor.Username,
			"error", err)
	}
}

// DiffFields renders a human-readable change summary between two field maps,
// one "field: 'old' → 'new'" line per changed key. Returns "No changes." when
// the maps are equal over their union of keys.
func DiffFields(before, after map[string]string) string {
	keys := make([]string, 0, len(before)+len(after))
	seen := make(map[string]bool)
	for k := range before {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range after {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	changes := make([]string, 0)
	for _, k := range keys {
		oldVal, newVal := before[k], after[k]
		if oldVal == newVal {
			continue
		}
		changes = append(changes, fmt.Sprintf("%s: '%s' → '%s'", k, oldVal, newVal))
	}

	if len(changes) == 0 {
		return "No changes."
	}
	return strings.Join(changes, ", ")
}
