// templates.go implements SMS message template CRUD with field-diff audit.
package admin

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// TemplateHandlers handles SMS template endpoints
type TemplateHandlers struct {
	recorder     *audit.Recorder
	templateRepo *repositories.TemplateRepository
}

// NewTemplateHandlers creates a new TemplateHandlers instance
func NewTemplateHandlers(db *sql.DB, recorder *audit.Recorder) *TemplateHandlers {
	return &TemplateHandlers{
		recorder:     recorder,
		templateRepo: repositories.NewTemplateRepository(db),
	}
}

// ListHandler returns all templates
// GET /api/templates
func (h *TemplateHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		templates, err := h.templateRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list templates."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"templates": templates})
	}
}

// TemplateRequest carries the writable fields of a template
type TemplateRequest struct {
	Name     string  `json:"name" binding:"required"`
	Message  string  `json:"message" binding:"required"`
	Category *string `json:"category"`
}

// CreateHandler adds a template
// POST /api/templates
func (h *TemplateHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Template name and message are required."})
			return
		}

		id, err := h.templateRepo.Create(c.Request.Context(), &models.SMSTemplate{
			Name:     req.Name,
			Message:  req.Message,
			Category: req.Category,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create template."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created SMS template '%s'.", req.Name), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Template created successfully."})
	}
}

// UpdateHandler overwrites a template
// PUT /api/templates/:id
func (h *TemplateHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req TemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Template name and message are required."})
			return
		}

		existing, err := h.templateRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load template."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Template not found."})
			return
		}

		if _, err := h.templateRepo.Update(c.Request.Context(), id, &models.SMSTemplate{
			Name:     req.Name,
			Message:  req.Message,
			Category: req.Category,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update template."})
			return
		}

		detail := audit.DiffFields(
			map[string]string{"name": existing.Name, "message": existing.Message, "category": derefStr(existing.Category)},
			map[string]string{"name": req.Name, "message": req.Message, "category": derefStr(req.Category)},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated SMS template '%s'. %s", existing.Name, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Template updated successfully."})
	}
}

// DeleteHandler removes a template
// DELETE /api/templates/:id
func (h *TemplateHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.templateRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load template."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Template not found."})
			return
		}

		if _, err := h.templateRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete template."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted SMS template '%s'.", existing.Name), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully."})
	}
}
