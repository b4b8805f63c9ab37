// officials.go implements the municipal officials, organizational chart, and
// barangay officials endpoints. Municipal and org-chart entries share slot
// rules (top and mid hold one occupant each); barangay officials are unique
// per (barangay, position) seat. Replaced images are released asynchronously.
package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/assets"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// OfficialHandlers serves one officials table (municipal or org chart); the
// label distinguishes audit entries and error messages.
type OfficialHandlers struct {
	recorder *audit.Recorder
	cleaner  *assets.Cleaner
	repo     *repositories.OfficialRepository
	label    string
}

// NewMunicipalOfficialHandlers creates handlers for the municipal officials table
func NewMunicipalOfficialHandlers(db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *OfficialHandlers {
	return &OfficialHandlers{
		recorder: recorder,
		cleaner:  cleaner,
		repo:     repositories.NewMunicipalOfficialRepository(db),
		label:    "municipal official",
	}
}

// NewOrgChartHandlers creates handlers for the organizational chart table
func NewOrgChartHandlers(db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *OfficialHandlers {
	return &OfficialHandlers{
		recorder: recorder,
		cleaner:  cleaner,
		repo:     repositories.NewOrgChartRepository(db),
		label:    "org chart entry",
	}
}

// ListHandler returns all entries in slot order
// GET /api/officials/municipal | /api/officials/orgchart
func (h *OfficialHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		officials, err := h.repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list officials."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"officials": officials})
	}
}

// OfficialRequest carries the writable fields of an official
type OfficialRequest struct {
	Name          string  `json:"name" binding:"required"`
	Position      string  `json:"position" binding:"required"`
	Type          string  `json:"type" binding:"required,oneof=top mid bottom"`
	ImageURL      *string `json:"image_url"`
	ImagePublicID *string `json:"image_public_id"`
}

// CreateHandler adds an official; top and mid slots admit one occupant
// POST /api/officials/municipal | /api/officials/orgchart
func (h *OfficialHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OfficialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name, position, and a type of top, mid, or bottom are required."})
			return
		}

		official := &models.Official{
			Name:          req.Name,
			Position:      req.Position,
			Type:          req.Type,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		id, err := h.repo.Create(c.Request.Context(), official)
		if err != nil {
			if errors.Is(err, repositories.ErrSlotOccupied) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("The '%s' slot already has an occupant.", req.Type)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create official."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created %s '%s' (%s).", h.label, req.Name, req.Position), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Official added successfully."})
	}
}

// UpdateHandler overwrites an official, re-checking the slot when the type
// changes and releasing a replaced image
// PUT /api/officials/municipal/:id | /api/officials/orgchart/:id
func (h *OfficialHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req OfficialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name, position, and a type of top, mid, or bottom are required."})
			return
		}

		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load official."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Official not found."})
			return
		}

		official := &models.Official{
			Name:          req.Name,
			Position:      req.Position,
			Type:          req.Type,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		if _, err := h.repo.Update(c.Request.Context(), id, official); err != nil {
			if errors.Is(err, repositories.ErrSlotOccupied) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("The '%s' slot already has an occupant.", req.Type)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update official."})
			return
		}

		if existing.ImagePublicID != nil && derefStr(existing.ImagePublicID) != derefStr(req.ImagePublicID) {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		detail := audit.DiffFields(
			map[string]string{"name": existing.Name, "position": existing.Position, "type": existing.Type},
			map[string]string{"name": req.Name, "position": req.Position, "type": req.Type},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated %s '%s'. %s", h.label, existing.Name, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Official updated successfully."})
	}
}

// DeleteHandler removes an official, releasing any stored image
// DELETE /api/officials/municipal/:id | /api/officials/orgchart/:id
func (h *OfficialHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load official."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Official not found."})
			return
		}

		if _, err := h.repo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete official."})
			return
		}

		if existing.ImagePublicID != nil {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted %s '%s'.", h.label, existing.Name), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Official deleted successfully."})
	}
}

// BarangayOfficialHandlers handles barangay official endpoints
type BarangayOfficialHandlers struct {
	recorder *audit.Recorder
	cleaner  *assets.Cleaner
	repo     *repositories.BarangayOfficialRepository
}

// NewBarangayOfficialHandlers creates a new BarangayOfficialHandlers instance
func NewBarangayOfficialHandlers(db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *BarangayOfficialHandlers {
	return &BarangayOfficialHandlers{
		recorder: recorder,
		cleaner:  cleaner,
		repo:     repositories.NewBarangayOfficialRepository(db),
	}
}

// ListHandler returns all barangay officials
// GET /api/officials/barangay
func (h *BarangayOfficialHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		officials, err := h.repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list barangay officials."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"officials": officials})
	}
}

// BarangayOfficialRequest carries the writable fields of a barangay official
type BarangayOfficialRequest struct {
	BarangayName  string  `json:"barangay_name" binding:"required"`
	Position      string  `json:"position" binding:"required"`
	OfficialName  string  `json:"official_name" binding:"required"`
	ImageURL      *string `json:"image_url"`
	ImagePublicID *string `json:"image_public_id"`
}

// CreateHandler seats an official; each (barangay, position) seat holds one
// POST /api/officials/barangay
func (h *BarangayOfficialHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BarangayOfficialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Barangay, position, and official name are required."})
			return
		}

		official := &models.BarangayOfficial{
			BarangayName:  req.BarangayName,
			Position:      req.Position,
			OfficialName:  req.OfficialName,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		id, err := h.repo.Create(c.Request.Context(), official)
		if err != nil {
			if errors.Is(err, repositories.ErrSeatTaken) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("An official already holds '%s' in %s.", req.Position, req.BarangayName)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add barangay official."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Added barangay official '%s' as %s of %s.", req.OfficialName, req.Position, req.BarangayName), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Barangay official added successfully."})
	}
}

// UpdateHandler overwrites a barangay official, re-checking the seat and
// releasing a replaced image
// PUT /api/officials/barangay/:id
func (h *BarangayOfficialHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req BarangayOfficialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Barangay, position, and official name are required."})
			return
		}

		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load barangay official."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barangay official not found."})
			return
		}

		official := &models.BarangayOfficial{
			BarangayName:  req.BarangayName,
			Position:      req.Position,
			OfficialName:  req.OfficialName,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		if _, err := h.repo.Update(c.Request.Context(), id, official); err != nil {
			if errors.Is(err, repositories.ErrSeatTaken) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("An official already holds '%s' in %s.", req.Position, req.BarangayName)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update barangay official."})
			return
		}

		if existing.ImagePublicID != nil && derefStr(existing.ImagePublicID) != derefStr(req.ImagePublicID) {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		detail := audit.DiffFields(
			map[string]string{"barangay": existing.BarangayName, "position": existing.Position, "official_name": existing.OfficialName},
			map[string]string{"barangay": req.BarangayName, "position": req.Position, "official_name": req.OfficialName},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated barangay official '%s'. %s", existing.OfficialName, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Barangay official updated successfully."})
	}
}

// DeleteHandler removes a barangay official, releasing any stored image
// DELETE /api/officials/barangay/:id
func (h *BarangayOfficialHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load barangay official."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Barangay official not found."})
			return
		}

		if _, err := h.repo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete barangay official."})
			return
		}

		if existing.ImagePublicID != nil {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Removed barangay official '%s' (%s of %s).", existing.OfficialName, existing.Position, existing.BarangayName), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Barangay official deleted successfully."})
	}
}
