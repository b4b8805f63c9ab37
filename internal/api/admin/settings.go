// settings.go implements the singleton system settings and the developer key
// issuance used to gate registration.
package admin

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/assets"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// SettingsHandlers handles system settings endpoints
type SettingsHandlers struct {
	recorder   *audit.Recorder
	cleaner    *assets.Cleaner
	systemRepo *repositories.SystemRepository
}

// NewSettingsHandlers creates a new SettingsHandlers instance
func NewSettingsHandlers(db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *SettingsHandlers {
	return &SettingsHandlers{
		recorder:   recorder,
		cleaner:    cleaner,
		systemRepo: repositories.NewSystemRepository(db),
	}
}

// GetHandler returns the municipality profile
// GET /api/settings
func (h *SettingsHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := h.systemRepo.GetSettings(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load system settings."})
			return
		}
		if settings == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "System settings are not configured."})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

// SettingsRequest carries the municipality profile fields
type SettingsRequest struct {
	Municipality  string  `json:"municipality" binding:"required"`
	Province      string  `json:"province" binding:"required"`
	Address       string  `json:"address"`
	ContactEmail  string  `json:"contact_email"`
	ContactNumber string  `json:"contact_number"`
	About         string  `json:"about"`
	SealURL       *string `json:"seal_url"`
	SealPublicID  *string `json:"seal_public_id"`
}

// UpsertHandler saves the singleton profile, reporting whether it was created
// or updated and releasing a replaced seal image
// PUT /api/settings
func (h *SettingsHandlers) UpsertHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Municipality and province are required."})
			return
		}

		existing, err := h.systemRepo.GetSettings(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load system settings."})
			return
		}

		settings := &models.SystemSettings{
			Municipality:  req.Municipality,
			Province:      req.Province,
			Address:       req.Address,
			ContactEmail:  req.ContactEmail,
			ContactNumber: req.ContactNumber,
			About:         req.About,
			SealURL:       req.SealURL,
			SealPublicID:  req.SealPublicID,
		}

		if err := h.systemRepo.UpsertSettings(c.Request.Context(), settings); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save system settings."})
			return
		}

		message := "System settings saved successfully."
		detail := "Configured system settings."
		if existing != nil {
			message = "System settings updated successfully."
			detail = "Updated system settings. " + audit.DiffFields(
				map[string]string{
					"municipality":   existing.Municipality,
					"province":       existing.Province,
					"address":        existing.Address,
					"contact_email":  existing.ContactEmail,
					"contact_number": existing.ContactNumber,
				},
				map[string]string{
					"municipality":   req.Municipality,
					"province":       req.Province,
					"address":        req.Address,
					"contact_email":  req.ContactEmail,
					"contact_number": req.ContactNumber,
				},
			)

			if existing.SealPublicID != nil && derefStr(existing.SealPublicID) != derefStr(req.SealPublicID) {
				h.cleaner.DestroyAsync(*existing.SealPublicID)
			}
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate, detail, middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// AboutRequest carries the about section text
type AboutRequest struct {
	About string `json:"about" binding:"required"`
}

// UpdateAboutHandler updates only the about section
// PUT /api/settings/about
func (h *SettingsHandlers) UpdateAboutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AboutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "About text is required."})
			return
		}

		if err := h.systemRepo.UpdateAbout(c.Request.Context(), req.About); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update about section."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			"Updated the about section.", middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "About section updated successfully."})
	}
}

// SaveKeyHandler issues a developer key for registration. A still-valid
// unused key is reused; otherwise a fresh one is created.
// POST /api/settings/save-key
func (h *SettingsHandlers) SaveKeyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := h.systemRepo.GetValidDevKey(c.Request.Context(), devKeyValidity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue developer key."})
			return
		}
		if existing != nil {
			c.JSON(http.StatusOK, gin.H{"key": existing.Key, "message": "Developer key is still valid."})
			return
		}

		key, err := generateDevKey()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue developer key."})
			return
		}

		created, err := h.systemRepo.CreateDevKey(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue developer key."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Issued developer key ID %d.", created.ID), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"key": created.Key, "message": "Developer key generated successfully."})
	}
}

// generateDevKey returns a 6-character uppercase hex token.
func generateDevKey() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate dev key: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
