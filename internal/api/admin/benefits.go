// benefits.go implements benefit program endpoints. Deletion is a soft
// delete; listings hide deleted rows and there is no restore route.
package admin

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/assets"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// BenefitHandlers handles benefit endpoints
type BenefitHandlers struct {
	recorder    *audit.Recorder
	cleaner     *assets.Cleaner
	benefitRepo *repositories.BenefitRepository
}

// NewBenefitHandlers creates a new BenefitHandlers instance
func NewBenefitHandlers(db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *BenefitHandlers {
	return &BenefitHandlers{
		recorder:    recorder,
		cleaner:     cleaner,
		benefitRepo: repositories.NewBenefitRepository(db),
	}
}

// ListHandler returns all active benefits
// GET /api/benefits
func (h *BenefitHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		benefits, err := h.benefitRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list benefits."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"benefits": benefits})
	}
}

// ListByTypeHandler returns active benefits of one type
// GET /api/benefits/type/:type
func (h *BenefitHandlers) ListByTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		benefits, err := h.benefitRepo.ListByType(c.Request.Context(), c.Param("type"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list benefits."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"benefits": benefits})
	}
}

// CountsHandler returns active benefit counts by type, excluding republic acts
// GET /api/benefits/counts
func (h *BenefitHandlers) CountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := h.benefitRepo.CountByType(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to count benefits."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"counts": counts})
	}
}

// GetHandler returns one active benefit
// GET /api/benefits/:id
func (h *BenefitHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		benefit, err := h.benefitRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load benefit."})
			return
		}
		if benefit == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Benefit not found."})
			return
		}

		c.JSON(http.StatusOK, benefit)
	}
}

// BenefitRequest carries the writable fields of a benefit
type BenefitRequest struct {
	Type          string  `json:"type" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   *string `json:"description"`
	Provider      *string `json:"provider"`
	ImageURL      *string `json:"image_url"`
	ImagePublicID *string `json:"image_public_id"`
}

// CreateHandler adds a benefit
// POST /api/benefits
func (h *BenefitHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BenefitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Benefit type and name are required."})
			return
		}

		benefit := &models.Benefit{
			Type:          req.Type,
			Name:          req.Name,
			Description:   req.Description,
			Provider:      req.Provider,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		id, err := h.benefitRepo.Create(c.Request.Context(), benefit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create benefit."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created benefit '%s' (%s).", req.Name, req.Type), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Benefit created successfully."})
	}
}

// UpdateHandler overwrites a benefit, releasing a replaced image
// PUT /api/benefits/:id
func (h *BenefitHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req BenefitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Benefit type and name are required."})
			return
		}

		existing, err := h.benefitRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load benefit."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Benefit not found."})
			return
		}

		benefit := &models.Benefit{
			Type:          req.Type,
			Name:          req.Name,
			Description:   req.Description,
			Provider:      req.Provider,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		updated, err := h.benefitRepo.Update(c.Request.Context(), id, benefit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update benefit."})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"message": "Benefit not found."})
			return
		}

		if existing.ImagePublicID != nil && derefStr(existing.ImagePublicID) != derefStr(req.ImagePublicID) {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		detail := audit.DiffFields(
			map[string]string{"name": existing.Name, "type": existing.Type, "description": derefStr(existing.Description), "provider": derefStr(existing.Provider)},
			map[string]string{"name": req.Name, "type": req.Type, "description": derefStr(req.Description), "provider": derefStr(req.Provider)},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated benefit '%s'. %s", existing.Name, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Benefit updated successfully."})
	}
}

// DeleteHandler soft-deletes a benefit and releases its image
// DELETE /api/benefits/:id
func (h *BenefitHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.benefitRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load benefit."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Benefit not found."})
			return
		}

		if _, err := h.benefitRepo.SoftDelete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete benefit."})
			return
		}

		if existing.ImagePublicID != nil {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted benefit '%s'.", existing.Name), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Benefit deleted successfully."})
	}
}
