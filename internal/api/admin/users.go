// users.go implements account management: profile and password updates,
// admin edits, blocking, deletion, and listings.
package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/assets"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// UserHandlers handles user management endpoints
type UserHandlers struct {
	cfg      *config.Config
	recorder *audit.Recorder
	cleaner  *assets.Cleaner
	userRepo *repositories.UserRepository
}

// NewUserHandlers creates a new UserHandlers instance
func NewUserHandlers(cfg *config.Config, db *sql.DB, recorder *audit.Recorder, cleaner *assets.Cleaner) *UserHandlers {
	return &UserHandlers{
		cfg:      cfg,
		recorder: recorder,
		cleaner:  cleaner,
		userRepo: repositories.NewUserRepository(db),
	}
}

// UpdateProfileRequest carries a user's own profile changes
type UpdateProfileRequest struct {
	Username string  `json:"username" binding:"required"`
	CPNumber *string `json:"cp_number"`
}

// UpdateProfileHandler updates the authenticated user's own profile
// PUT /api/user/profile
func (h *UserHandlers) UpdateProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username is required."})
			return
		}

		before := map[string]string{
			"username":  user.Username,
			"cp_number": derefStr(user.CPNumber),
		}
		after := map[string]string{
			"username":  req.Username,
			"cp_number": derefStr(req.CPNumber),
		}

		updated, err := h.userRepo.UpdateProfile(c.Request.Context(), user.ID, req.Username, req.CPNumber)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateUser) {
				c.JSON(http.StatusConflict, gin.H{"message": "That contact number is already in use."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile."})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			"Updated own profile. "+audit.DiffFields(before, after), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully."})
	}
}

// ChangePasswordRequest carries a password change for the authenticated user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePasswordHandler verifies the current password before replacing it
// PUT /api/user/change-password
func (h *UserHandlers) ChangePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Current password and a new password of at least 8 characters are required."})
			return
		}

		if !auth.CheckPassword(user.Password, req.CurrentPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Current password is incorrect."})
			return
		}

		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to change password."})
			return
		}

		updated, err := h.userRepo.UpdatePassword(c.Request.Context(), user.ID, hash)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to change password."})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			"Changed own password. password: '[REDACTED]' → '[REDACTED]'", middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
	}
}

// UpdateUserRequest carries an admin edit of another account
type UpdateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	CPNumber *string `json:"cp_number"`
	Password *string `json:"password"`
}

// UpdateUserHandler lets an admin edit another account, optionally resetting
// its password
// PUT /api/user/update/:id
func (h *UserHandlers) UpdateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username is required."})
			return
		}

		target, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user."})
			return
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}

		before := map[string]string{
			"username":  target.Username,
			"cp_number": derefStr(target.CPNumber),
		}
		after := map[string]string{
			"username":  req.Username,
			"cp_number": derefStr(req.CPNumber),
		}

		if _, err := h.userRepo.UpdateProfile(c.Request.Context(), id, req.Username, req.CPNumber); err != nil {
			if errors.Is(err, repositories.ErrDuplicateUser) {
				c.JSON(http.StatusConflict, gin.H{"message": "That contact number is already in use."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user."})
			return
		}

		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user."})
				return
			}
			if _, err := h.userRepo.UpdatePassword(c.Request.Context(), id, hash); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user."})
				return
			}
			before["password"] = "[REDACTED]"
			after["password"] = "[CHANGED]"
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			fmt.Sprintf("Updated user '%s'. %s", target.Username, audit.DiffFields(before, after)), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "User updated successfully."})
	}
}

// BlockUserRequest toggles an account's blocked flag
type BlockUserRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

// BlockUserHandler blocks or unblocks an account
// PUT /api/user/block/:id
func (h *UserHandlers) BlockUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req BlockUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Blocked flag is required."})
			return
		}

		target, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user."})
			return
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}

		if _, err := h.userRepo.SetBlocked(c.Request.Context(), id, *req.Blocked); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user."})
			return
		}

		verb := "Unblocked"
		if *req.Blocked {
			verb = "Blocked"
		}
		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionBlocked,
			fmt.Sprintf("%s user '%s'.", verb, target.Username), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "User " + target.Username + " has been updated."})
	}
}

// DeleteUserHandler removes an account
// DELETE /api/user/:id
func (h *UserHandlers) DeleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		target, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user."})
			return
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}

		if _, err := h.userRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user."})
			return
		}

		if target.ImagePublicID != nil {
			h.cleaner.DestroyAsync(*target.ImagePublicID)
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted user '%s'.", target.Username), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
	}
}

// ListUsersHandler lists all non-blocked accounts
// GET /api/user
func (h *UserHandlers) ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.userRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list users."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// CountUsersHandler returns the total number of accounts
// GET /api/user/count
func (h *UserHandlers) CountUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := h.userRepo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to count users."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// UpdateImageRequest carries the new profile image reference handed back by
// the asset store at upload time
type UpdateImageRequest struct {
	ImageURL      *string `json:"image_url" binding:"required"`
	ImagePublicID *string `json:"image_public_id" binding:"required"`
}

// UpdateImageHandler swaps the authenticated user's profile image, releasing
// the previous asset
// PUT /api/user/image
func (h *UserHandlers) UpdateImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		var req UpdateImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Image URL and public ID are required."})
			return
		}

		previous, err := h.userRepo.UpdateImage(c.Request.Context(), user.ID, req.ImageURL, req.ImagePublicID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile image."})
			return
		}

		if previous != nil && *previous != derefStr(req.ImagePublicID) {
			h.cleaner.DestroyAsync(*previous)
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionUpdate,
			"Updated own profile image.", middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "Profile image updated successfully."})
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
