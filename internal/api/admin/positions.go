// positions.go implements position CRUD with (name, type) uniqueness.
package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// PositionHandlers handles position endpoints
type PositionHandlers struct {
	recorder     *audit.Recorder
	positionRepo *repositories.PositionRepository
}

// NewPositionHandlers creates a new PositionHandlers instance
func NewPositionHandlers(db *sql.DB, recorder *audit.Recorder) *PositionHandlers {
	return &PositionHandlers{
		recorder:     recorder,
		positionRepo: repositories.NewPositionRepository(db),
	}
}

// ListHandler returns positions, optionally filtered by type
// GET /api/position?type=orgchart
func (h *PositionHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		positions, err := h.positionRepo.List(c.Request.Context(), c.Query("type"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list positions."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"positions": positions})
	}
}

// PositionRequest carries a position name and its scope type
type PositionRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// CreateHandler adds a position, unique on (name, type)
// POST /api/position
func (h *PositionHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PositionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Position name and type are required."})
			return
		}

		id, err := h.positionRepo.Create(c.Request.Context(), req.Name, req.Type)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateName) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Position '%s' already exists for this type.", req.Name)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create position."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created position '%s' (%s).", req.Name, req.Type), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Position created successfully."})
	}
}

// UpdateHandler renames or retypes a position
// PUT /api/position/:id
func (h *PositionHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req PositionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Position name and type are required."})
			return
		}

		existing, err := h.positionRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load position."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Position not found."})
			return
		}

		if _, err := h.positionRepo.Update(c.Request.Context(), id, req.Name, req.Type); err != nil {
			if errors.Is(err, repositories.ErrDuplicateName) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Position '%s' already exists for this type.", req.Name)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update position."})
			return
		}

		detail := audit.DiffFields(
			map[string]string{"name": existing.Name, "type": existing.Type},
			map[string]string{"name": req.Name, "type": req.Type},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated position '%s'. %s", existing.Name, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Position updated successfully."})
	}
}

// DeleteHandler removes a position
// DELETE /api/position/:id
func (h *PositionHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.positionRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load position."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Position not found."})
			return
		}

		if _, err := h.positionRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete position."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted position '%s' (%s).", existing.Name, existing.Type), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Position deleted successfully."})
	}
}
