// barangays.go implements barangay CRUD with name uniqueness and field-diff
// audit on rename.
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

// BarangayHandlers handles barangay endpoints
type BarangayHandlers struct {
	recorder     *audit.Recorder
	barangayRepo *repositories.BarangayRepository
}

// NewBarangayHandlers creates a new BarangayHandlers instance
func NewBarangayHandlers(db *sql.DB, recorder *audit.Recorder) *BarangayHandlers {
	return &BarangayHandlers{
		recorder:     recorder,
		barangayRepo: repositories.NewBarangayRepository(db),
	}
}

// ListHandler returns a page of barangays
// GET /api/barangays
func (h *BarangayHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := pageParams(c, 10)

		barangays, total, err := h.barangayRepo.List(c.Request.Context(), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list barangays."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"barangays":  barangays,
			"total":      total,
			"page":       page,
			"totalPages": totalPages(total, limit),
		})
	}
}

// ListAllHandler returns every barangay, for dropdowns
// GET /api/barangays/all
func (h *BarangayHandlers) ListAllHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		barangays, err := h.barangayRepo.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list barangays."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"barangays": barangays})
	}
}

// CountHandler returns the barangay count
// GET /api/barangays/count
func (h *BarangayHandlers) CountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := h.barangayRepo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to count barangays."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// BarangayRequest carries a barangay name
type BarangayRequest struct {
	Name string `json:"barangay_name" binding:"required"`
}

// CreateHandler adds a barangay with a unique name
// POST /api/barangays
func (h *BarangayHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BarangayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Barangay name is required."})
			return
		}

		id, err := h.barangayRepo.Create(c.Request.Context(), req.Name)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateName) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Barangay '%s' already exists.", req.Name)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create barangay."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created barangay '%s'.", req.Name), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Barangay created successfully."})
	}
}

// UpdateHandler renames a barangay; renaming to its own current name is a
// no-op success
// PUT /api/barangays/:id
func (h *BarangayHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req BarangayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Barangay name is required."})
			return
		}

		existing, err := h.barangayRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load barangay."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barangay not found."})
			return
		}

		if _, err := h.barangayRepo.Update(c.Request.Context(), id, req.Name); err != nil {
			if errors.Is(err, repositories.ErrDuplicateName) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Barangay '%s' already exists.", req.Name)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update barangay."})
			return
		}

		detail := audit.DiffFields(
			map[string]string{"barangay_name": existing.Name},
			map[string]string{"barangay_name": req.Name},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated barangay '%s'. %s", existing.Name, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Barangay updated successfully."})
	}
}

// DeleteHandler removes a barangay
// DELETE /api/barangays/:id
func (h *BarangayHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.barangayRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load barangay."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barangay not found."})
			return
		}

		if _, err := h.barangayRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete barangay."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted barangay '%s'.", existing.Name), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Barangay deleted successfully."})
	}
}
