// Package middleware provides Gin HTTP middleware for session authentication,
// role checks, client IP resolution, rate limiting, security headers, and
// request metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RequestID → Metrics → ClientIP → RateLimit → Auth → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attempts before any DB
// work. Auth populates the authenticated user; role checks read from that
// context.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

const (
	// UserKey is the gin.Context key holding the authenticated *models.User.
	UserKey = "user"

	// SessionIDKey is the gin.Context key holding the live session's UUID.
	SessionIDKey = "session_id"
)

// timeNow is stubbed in tests to pin session validity checks.
var timeNow = time.Now

// SessionAuthMiddleware authenticates requests from the session cookie. The
// cookie carries a signed token wrapping a session row ID; the row must exist,
// be unexpired, and not be revoked, and the account must not be blocked.
func SessionAuthMiddleware(issuer *auth.TokenIssuer, cookieName string,
	sessionRepo *repositories.SessionRepository, userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		sessionID, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		session, err := sessionRepo.GetByID(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to load session."})
			return
		}
		if session == nil || !session.Valid(timeNow()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Session expired."})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), session.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user."})
			return
		}
		if user == nil || user.Blocked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Account unavailable."})
			return
		}

		c.Set(UserKey, user)
		c.Set(SessionIDKey, session.ID)

		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user holds one of the
// allowed roles. Must run after SessionAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions."})
	}
}

// CurrentUser returns the authenticated user from the gin context, or nil
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
