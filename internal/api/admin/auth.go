// auth.go implements login, logout, registration, and session introspection.
package admin

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
)

// devKeyValidity is how long an unused developer key can gate a registration.
const devKeyValidity = 5 * time.Minute

// AuthHandlers handles authentication endpoints
type AuthHandlers struct {
	cfg         *config.Config
	issuer      *auth.TokenIssuer
	recorder    *audit.Recorder
	userRepo    *repositories.UserRepository
	sessionRepo *repositories.SessionRepository
	systemRepo  *repositories.SystemRepository
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(cfg *config.Config, db *sql.DB, issuer *auth.TokenIssuer, recorder *audit.Recorder) *AuthHandlers {
	return &AuthHandlers{
		cfg:         cfg,
		issuer:      issuer,
		recorder:    recorder,
		userRepo:    repositories.NewUserRepository(db),
		sessionRepo: repositories.NewSessionRepository(db),
		systemRepo:  repositories.NewSystemRepository(db),
	}
}

// LoginRequest carries the login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler authenticates a user and issues the session cookie
// POST /api/user/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
			return
		}

		user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to look up account."})
			return
		}
		if user == nil || !auth.CheckPassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
			return
		}
		if user.Blocked {
			c.JSON(http.StatusForbidden, gin.H{"message": "Your account has been blocked. Contact the administrator."})
			return
		}

		session, err := h.sessionRepo.Create(c.Request.Context(), user.ID, h.cfg.Session.TTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session."})
			return
		}

		token, err := h.issuer.Issue(session.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session."})
			return
		}

		now := time.Now()
		if err := h.userRepo.RecordLogin(c.Request.Context(), user.ID, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record login."})
			return
		}
		user.Status = models.UserStatusActive
		user.LastLogin = &now

		h.recorder.Record(c.Request.Context(), audit.Actor{UserID: &user.ID, Username: user.Username, Role: user.Role},
			models.ActionLogin, "User logged in.", middleware.ClientIP(c))

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cfg.Session.CookieName, token, int(h.cfg.Session.TTL.Seconds()), "/", "", h.cfg.Session.SecureCookie, true)

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// LogoutHandler revokes the current session and clears the cookie
// POST /api/user/logout
func (h *AuthHandlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		if sid, exists := c.Get(middleware.SessionIDKey); exists {
			if id, ok := sid.(uuid.UUID); ok {
				if _, err := h.sessionRepo.Revoke(c.Request.Context(), id); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to revoke session."})
					return
				}
			}
		}

		now := time.Now()
		if err := h.userRepo.RecordLogout(c.Request.Context(), user.ID, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record logout."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionLogout, "User logged out.", middleware.ClientIP(c))

		c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.SecureCookie, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
	}
}

// RegisterRequest carries a new account gated by a developer key
type RegisterRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	CPNumber *string `json:"cp_number"`
	Role     string  `json:"role"`
	DevKey   string  `json:"devKey" binding:"required"`
}

// RegisterHandler creates a new account after consuming a valid developer key
// POST /api/user/register
func (h *AuthHandlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, and a password of at least 8 characters are required."})
			return
		}

		ok, err := h.systemRepo.ConsumeDevKey(c.Request.Context(), req.DevKey, devKeyValidity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify developer key."})
			return
		}
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired developer key."})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register account."})
			return
		}

		role := req.Role
		if role == "" {
			role = "Staff"
		}

		user := &models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: hash,
			CPNumber: req.CPNumber,
			Role:     role,
		}

		id, err := h.userRepo.Create(c.Request.Context(), user)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateUser) {
				c.JSON(http.StatusConflict, gin.H{"message": "An account with this email or contact number already exists."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register account."})
			return
		}

		h.recorder.Record(c.Request.Context(), audit.Actor{UserID: &id, Username: req.Username, Role: role},
			models.ActionRegister, "New account registered: '"+req.Username+"'.", middleware.ClientIP(c))

		c.JSON(http.StatusCreated, gin.H{"insertId": id, "message": "Account registered successfully."})
	}
}

// MeHandler returns the authenticated user's profile
// GET /api/user/me
func (h *AuthHandlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// SessionHandler reports whether the request carries a live session
// GET /api/user/session
func (h *AuthHandlers) SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"authenticated": true,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
			},
		})
	}
}
