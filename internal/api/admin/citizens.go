// citizens.go implements the senior citizen registry endpoints: CRUD, the
// soft-delete lifecycle, paginated listing, SMS recipient lookup, and the
// per-barangay chart.
package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// CitizenHandlers handles senior citizen endpoints
type CitizenHandlers struct {
	recorder    *audit.Recorder
	citizenRepo *repositories.CitizenRepository
}

// NewCitizenHandlers creates a new CitizenHandlers instance
func NewCitizenHandlers(db *sql.DB, recorder *audit.Recorder) *CitizenHandlers {
	return &CitizenHandlers{
		recorder:    recorder,
		citizenRepo: repositories.NewCitizenRepository(db),
	}
}

// CitizenRequest carries the writable fields of a senior citizen record
type CitizenRequest struct {
	FirstName  string         `json:"firstName" binding:"required"`
	LastName   string         `json:"lastName" binding:"required"`
	MiddleName *string        `json:"middleName"`
	Suffix     *string        `json:"suffix"`
	BarangayID *int64         `json:"barangay_id"`
	FormData   map[string]any `json:"form_data"`
}

func (r *CitizenRequest) birthdate() string {
	if r.FormData == nil {
		return ""
	}
	bd, _ := r.FormData["birthdate"].(string)
	return bd
}

// CreateHandler registers a new senior citizen, rejecting duplicates on
// (firstName, lastName, birthdate) among non-deleted records
// POST /api/senior-citizens/create
func (h *CitizenHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CitizenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "First name and last name are required."})
			return
		}

		duplicateMsg := fmt.Sprintf("A senior citizen named '%s %s' with birthdate '%s' already exists.",
			req.FirstName, req.LastName, req.birthdate())

		// Fast-path duplicate check; the partial unique index is the real
		// enforcement point under concurrent creates.
		if bd := req.birthdate(); bd != "" {
			existing, err := h.citizenRepo.FindDuplicate(c.Request.Context(), req.FirstName, req.LastName, bd)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check for duplicates."})
				return
			}
			if existing != nil {
				c.JSON(http.StatusConflict, gin.H{"message": duplicateMsg})
				return
			}
		}

		citizen := &models.SeniorCitizen{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			MiddleName: req.MiddleName,
			Suffix:     req.Suffix,
			BarangayID: req.BarangayID,
			FormData:   req.FormData,
		}

		id, err := h.citizenRepo.Create(c.Request.Context(), citizen)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateCitizen) {
				c.JSON(http.StatusConflict, gin.H{"message": duplicateMsg})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create senior citizen."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created new senior citizen: '%s %s'.", req.FirstName, req.LastName), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Senior citizen registered successfully."})
	}
}

// GetHandler returns one record with its form data and derived age/gender
// GET /api/senior-citizens/get/:id
func (h *CitizenHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		citizen, err := h.citizenRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load senior citizen."})
			return
		}
		if citizen == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Senior citizen not found."})
			return
		}

		c.JSON(http.StatusOK, citizen)
	}
}

// UpdateHandler overwrites name fields and form data; soft-deleted rows are
// not updatable
// PUT /api/senior-citizens/update/:id
func (h *CitizenHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req CitizenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "First name and last name are required."})
			return
		}

		citizen := &models.SeniorCitizen{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			MiddleName: req.MiddleName,
			Suffix:     req.Suffix,
			BarangayID: req.BarangayID,
			FormData:   req.FormData,
		}

		updated, err := h.citizenRepo.Update(c.Request.Context(), id, citizen)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update senior citizen."})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"message": "Senior citizen not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated senior citizen: '%s %s'.", req.FirstName, req.LastName), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Senior citizen updated successfully."})
	}
}

// ListHandler returns a filtered, sorted page of active citizens
// GET /api/senior-citizens/page
func (h *CitizenHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, _ := pageParams(c, 10)

		opts := repositories.CitizenListOptions{
			Page:         page,
			Limit:        limit,
			Search:       c.Query("search"),
			Barangay:     c.Query("barangay"),
			Gender:       c.Query("gender"),
			AgeRange:     c.Query("ageRange"),
			HealthStatus: c.Query("healthStatus"),
			SortBy:       c.Query("sortBy"),
			SortOrder:    c.Query("sortOrder"),
		}
		if raw := c.Query("barangay_id"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				opts.BarangayID = &id
			}
		}

		citizens, total, err := h.citizenRepo.List(c.Request.Context(), opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list senior citizens."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"citizens":   citizens,
			"total":      total,
			"totalPages": totalPages(total, limit),
		})
	}
}

// CountHandler returns the number of active senior citizens
// GET /api/senior-citizens/count/all
func (h *CitizenHandlers) CountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := h.citizenRepo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to count senior citizens."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// SMSRecipientsHandler resolves contact numbers for bulk SMS sends
// GET /api/senior-citizens/sms-citizens
func (h *CitizenHandlers) SMSRecipientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var barangayID *int64
		if raw := c.Query("barangay_id"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				barangayID = &id
			}
		}

		recipients, err := h.citizenRepo.SMSRecipients(c.Request.Context(), c.Query("barangay"), barangayID, c.Query("search"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load SMS recipients."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"citizens": recipients})
	}
}

// SoftDeleteHandler moves a record into the trash
// PUT /api/senior-citizens/soft-delete/:id
func (h *CitizenHandlers) SoftDeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		deleted, err := h.citizenRepo.SoftDelete(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete senior citizen."})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"message": "Senior citizen not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionSoftDelete,
			fmt.Sprintf("Moved senior citizen ID %d to trash.", id), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Senior citizen moved to trash."})
	}
}

// ListDeletedHandler lists the records currently in the trash
// GET /api/senior-citizens/deleted
func (h *CitizenHandlers) ListDeletedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		citizens, err := h.citizenRepo.ListDeleted(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list deleted senior citizens."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"citizens": citizens})
	}
}

// RestoreHandler brings a soft-deleted record back; restoring a record whose
// identity has since been re-registered is a conflict
// PUT /api/senior-citizens/restore/:id
func (h *CitizenHandlers) RestoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		restored, err := h.citizenRepo.Restore(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateCitizen) {
				c.JSON(http.StatusConflict, gin.H{"message": "A senior citizen with the same name and birthdate already exists."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to restore senior citizen."})
			return
		}
		if !restored {
			c.JSON(http.StatusNotFound, gin.H{"message": "Senior citizen not found in trash."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionRestore,
			fmt.Sprintf("Restored senior citizen ID %d from trash.", id), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Senior citizen restored successfully."})
	}
}

// PermanentDeleteHandler irreversibly removes a record from the trash
// DELETE /api/senior-citizens/permanent-delete/:id
func (h *CitizenHandlers) PermanentDeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		removed, err := h.citizenRepo.PermanentDelete(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete senior citizen."})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"message": "Senior citizen not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionPermanentDelete,
			fmt.Sprintf("Permanently deleted senior citizen ID %d.", id), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Senior citizen permanently deleted."})
	}
}

// DeleteHandler removes a record directly without passing through the trash
// DELETE /api/senior-citizens/delete/:id
func (h *CitizenHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		removed, err := h.citizenRepo.PermanentDelete(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete senior citizen."})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"message": "Senior citizen not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted senior citizen ID %d.", id), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Senior citizen deleted successfully."})
	}
}

// BarangayChartHandler returns active citizen counts grouped by barangay
// GET /api/charts/barangay
func (h *CitizenHandlers) BarangayChartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := h.citizenRepo.CountByBarangay(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load chart data."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": counts})
	}
}
