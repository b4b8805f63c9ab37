// formfields.go implements the dynamic form schema endpoints: field CRUD,
// bulk reordering, and group management.
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

// FormHandlers handles form schema endpoints
type FormHandlers struct {
	recorder *audit.Recorder
	formRepo *repositories.FormRepository
}

// NewFormHandlers creates a new FormHandlers instance
func NewFormHandlers(db *sql.DB, recorder *audit.Recorder) *FormHandlers {
	return &FormHandlers{
		recorder: recorder,
		formRepo: repositories.NewFormRepository(db),
	}
}

// ListFieldsHandler returns all fields ordered by (group, order)
// GET /api/form-fields
func (h *FormHandlers) ListFieldsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := h.formRepo.ListFields(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list form fields."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"fields": fields})
	}
}

// FieldRequest carries the writable attributes of a form field
type FieldRequest struct {
	FieldName string  `json:"field_name" binding:"required"`
	Label     string  `json:"label" binding:"required"`
	Type      string  `json:"type" binding:"required,oneof=text select date number"`
	Options   *string `json:"options"`
	Required  bool    `json:"required"`
	Group     string  `json:"group" binding:"required"`
	Order     int     `json:"order"`
}

// CreateFieldHandler adds a field, enforcing (field_name, label) uniqueness
// POST /api/form-fields
func (h *FormHandlers) CreateFieldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Field name, label, type, and group are required."})
			return
		}

		existing, err := h.formRepo.GetFieldByNameOrLabel(c.Request.Context(), req.FieldName, req.Label)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check for existing fields."})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"message": "A field with the same name or label already exists."})
			return
		}

		field := &models.FormField{
			FieldName: req.FieldName,
			Label:     req.Label,
			Type:      req.Type,
			Options:   req.Options,
			Required:  req.Required,
			GroupKey:  req.Group,
			Order:     req.Order,
		}

		id, err := h.formRepo.CreateField(c.Request.Context(), field)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create form field."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created form field '%s'.", req.Label), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Form field created successfully."})
	}
}

// UpdateFieldHandler overwrites a field, re-checking name/label uniqueness
// against other fields
// PUT /api/form-fields/:id
func (h *FormHandlers) UpdateFieldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req FieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Field name, label, type, and group are required."})
			return
		}

		existing, err := h.formRepo.GetFieldByNameOrLabel(c.Request.Context(), req.FieldName, req.Label)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check for existing fields."})
			return
		}
		if existing != nil && existing.ID != id {
			c.JSON(http.StatusConflict, gin.H{"message": "A field with the same name or label already exists."})
			return
		}

		field := &models.FormField{
			FieldName: req.FieldName,
			Label:     req.Label,
			Type:      req.Type,
			Options:   req.Options,
			Required:  req.Required,
			GroupKey:  req.Group,
			Order:     req.Order,
		}

		updated, err := h.formRepo.UpdateField(c.Request.Context(), id, field)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update form field."})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"message": "Form field not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated form field '%s'.", req.Label), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Form field updated successfully."})
	}
}

// DeleteFieldHandler removes a field definition
// DELETE /api/form-fields/:id
func (h *FormHandlers) DeleteFieldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		deleted, err := h.formRepo.DeleteField(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete form field."})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"message": "Form field not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted form field ID %d.", id), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Form field deleted successfully."})
	}
}

// ReorderHandler applies a bulk order update inside one transaction
// PUT /api/form-fields/reorder
func (h *FormHandlers) ReorderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.FieldOrder
		if err := c.ShouldBindJSON(&orders); err != nil || len(orders) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "A non-empty list of {id, order} pairs is required."})
			return
		}

		if err := h.formRepo.Reorder(c.Request.Context(), orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reorder form fields."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Reordered %d form field(s).", len(orders)), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Form fields reordered successfully."})
	}
}

// ListGroupsHandler returns all form groups ordered by label
// GET /api/form-fields/group
func (h *FormHandlers) ListGroupsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := h.formRepo.ListGroups(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list form groups."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"groups": groups})
	}
}

// GroupRequest carries a new form group
type GroupRequest struct {
	GroupKey   string `json:"group_key" binding:"required"`
	GroupLabel string `json:"group_label" binding:"required"`
}

// CreateGroupHandler adds a group, enforcing (group_key, group_label)
// uniqueness
// POST /api/form-fields/group
func (h *FormHandlers) CreateGroupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Group key and label are required."})
			return
		}

		existing, err := h.formRepo.GetGroupByKeyOrLabel(c.Request.Context(), req.GroupKey, req.GroupLabel)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check for existing groups."})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"message": "A group with the same key or label already exists."})
			return
		}

		id, err := h.formRepo.CreateGroup(c.Request.Context(), &models.FormGroup{
			GroupKey:   req.GroupKey,
			GroupLabel: req.GroupLabel,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create form group."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created form group '%s'.", req.GroupLabel), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Form group created successfully."})
	}
}
