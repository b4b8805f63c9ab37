// events.go implements event and slideshow endpoints with the same soft
// delete pattern as benefits.
package admin

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/assets"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// EventHandlers handles event endpoints
type EventHandlers struct {
	recorder  *audit.Recorder
	cleaner   *assets.Cleaner
	eventRepo *repositories.EventRepository
}

// NewEventHandlers creates a new EventHandlers instance
func NewEventHandlers(db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *EventHandlers {
	return &EventHandlers{
		recorder:  recorder,
		cleaner:   cleaner,
		eventRepo: repositories.NewEventRepository(db),
	}
}

// ListByTypeHandler returns active entries of one type (event or slideshow)
// GET /api/events/type/:type
func (h *EventHandlers) ListByTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := h.eventRepo.ListByType(c.Request.Context(), c.Param("type"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list events."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// LatestHandler returns the five most recent dated events
// GET /api/events/latest
func (h *EventHandlers) LatestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := h.eventRepo.ListLatest(c.Request.Context(), 5)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list events."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// CountHandler returns the number of active dated events
// GET /api/events/count
func (h *EventHandlers) CountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := h.eventRepo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to count events."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// GetHandler returns one active event
// GET /api/events/:id
func (h *EventHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		event, err := h.eventRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load event."})
			return
		}
		if event == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}

		c.JSON(http.StatusOK, event)
	}
}

// EventRequest carries the writable fields of an event or slideshow entry
type EventRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   *string    `json:"description"`
	Type          string     `json:"type" binding:"required,oneof=event slideshow"`
	EventDate     *time.Time `json:"date"`
	ImageURL      *string    `json:"image_url"`
	ImagePublicID *string    `json:"image_public_id"`
}

// CreateHandler adds an event or slideshow entry
// POST /api/events
func (h *EventHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title and a type of event or slideshow are required."})
			return
		}

		event := &models.Event{
			Title:         req.Title,
			Description:   req.Description,
			Type:          req.Type,
			EventDate:     req.EventDate,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		id, err := h.eventRepo.Create(c.Request.Context(), event)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create event."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Created %s '%s'.", req.Type, req.Title), middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Event created successfully."})
	}
}

// UpdateHandler overwrites an event, releasing a replaced image
// PUT /api/events/:id
func (h *EventHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title and a type of event or slideshow are required."})
			return
		}

		existing, err := h.eventRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load event."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}

		event := &models.Event{
			Title:         req.Title,
			Description:   req.Description,
			Type:          req.Type,
			EventDate:     req.EventDate,
			ImageURL:      req.ImageURL,
			ImagePublicID: req.ImagePublicID,
		}

		updated, err := h.eventRepo.Update(c.Request.Context(), id, event)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update event."})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}

		if existing.ImagePublicID != nil && derefStr(existing.ImagePublicID) != derefStr(req.ImagePublicID) {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		detail := audit.DiffFields(
			map[string]string{"title": existing.Title, "type": existing.Type, "description": derefStr(existing.Description)},
			map[string]string{"title": req.Title, "type": req.Type, "description": derefStr(req.Description)},
		)
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated %s '%s'. %s", existing.Type, existing.Title, detail), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully."})
	}
}

// DeleteHandler soft-deletes an event and releases its image
// DELETE /api/events/:id
func (h *EventHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		existing, err := h.eventRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load event."})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
			return
		}

		if _, err := h.eventRepo.SoftDelete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete event."})
			return
		}

		if existing.ImagePublicID != nil {
			h.cleaner.DestroyAsync(*existing.ImagePublicID)
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted %s '%s'.", existing.Type, existing.Title), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
	}
}
