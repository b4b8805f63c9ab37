// Package admin implements the authenticated JSON API handlers, one file per
// resource. Handlers bind requests, call repositories, record audit entries,
// and map outcomes onto {message} error bodies with 400/401/404/409/500.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// idParam parses the :id route parameter. On failure it writes a 400 response
// and returns ok=false; the handler must return immediately.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID."})
		return 0, false
	}
	return id, true
}

// pageParams parses page/limit query parameters with bounds applied.
func pageParams(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

// actorFrom builds the audit attribution for the authenticated user on this
// request. Handlers behind the auth middleware can rely on it being populated.
func actorFrom(c *gin.Context) audit.Actor {
	user := middleware.CurrentUser(c)
	if user == nil {
		return audit.System
	}
	return audit.Actor{
		UserID:   &user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}

// totalPages computes the page count for a paginated response.
func totalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
