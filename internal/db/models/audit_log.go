// Package models - audit_log.go defines the AuditLog model recording every mutating
// action with actor attribution, a free-text detail line, and the client IP.
package models

import "time"

// Audit actions. Every mutating operation records exactly one of these.
const (
	ActionCreate          = "CREATE"
	ActionUpdate          = "UPDATE"
	ActionDelete          = "DELETE"
	ActionLogin           = "LOGIN"
	ActionLogout          = "LOGOUT"
	ActionBlocked         = "BLOCKED"
	ActionRegister        = "REGISTER"
	ActionSoftDelete      = "SOFT_DELETE"
	ActionRestore         = "RESTORE"
	ActionPermanentDelete = "PERMANENT_DELETE"
)

// AuditLog represents one immutable audit trail entry
type AuditLog struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"userId" db:"user_id"` // nullable for system actions
	Username  string    `json:"user" db:"username"`
	UserRole  string    `json:"userRole" db:"user_role"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	IPAddress string    `json:"ipAddress" db:"ip_address"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}
