// auditlogs.go implements the audit trail read endpoints.
package admin

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

// AuditHandlers handles audit log endpoints
type AuditHandlers struct {
	auditRepo *repositories.AuditRepository
}

// NewAuditHandlers creates a new AuditHandlers instance
func NewAuditHandlers(db *sql.DB) *AuditHandlers {
	return &AuditHandlers{auditRepo: repositories.NewAuditRepository(db)}
}

// ListHandler returns a filtered, sorted page of audit entries
// GET /api/audit-logs
func (h *AuditHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := pageParams(c, 20)

		filters := repositories.AuditFilters{
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
		}
		if v := c.Query("search"); v != "" {
			filters.Search = &v
		}
		if v := c.Query("user"); v != "" {
			filters.Username = &v
		}
		if v := c.Query("role"); v != "" {
			filters.UserRole = &v
		}
		if v := c.Query("action"); v != "" {
			filters.Action = &v
		}

		entries, total, err := h.auditRepo.List(c.Request.Context(), filters, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list audit logs."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"logs":       entries,
			"total":      total,
			"page":       page,
			"totalPages": totalPages(total, limit),
		})
	}
}

// FiltersHandler returns the distinct actor names and actions for the UI
// filter dropdowns
// GET /api/audit-logs/filters
func (h *AuditHandlers) FiltersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, actions, err := h.auditRepo.ListFilters(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load audit filters."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users, "actions": actions})
	}
}

// LoginTrailsHandler returns a user's LOGIN entries, newest first. An empty
// trail is a 404 to the caller, not an error.
// GET /api/audit-logs/login-trails/:userId
func (h *AuditHandlers) LoginTrailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
		if err != nil || userID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID."})
			return
		}

		trails, err := h.auditRepo.ListLoginTrails(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load login trails."})
			return
		}
		if len(trails) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "No login history found for this user."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"trails": trails})
	}
}
