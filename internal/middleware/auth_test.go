package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

const testCookieName = "oscaims_sid"

var sessionCols = []string{"id", "user_id", "expires_at", "revoked_at", "created_at"}

var userCols = []string{
	"id", "username", "email", "password", "cp_number", "role", "status", "blocked",
	"last_login", "last_logout", "image_url", "image_public_id", "created_at", "updated_at",
}

type authFixture struct {
	router *gin.Engine
	issuer *auth.TokenIssuer
	mock   sqlmock.Sqlmock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	issuer, err := auth.NewTokenIssuer("test-secret-at-least-32-characters!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	router := gin.New()
	router.Use(SessionAuthMiddleware(issuer, testCookieName,
		repositories.NewSessionRepository(db), repositories.NewUserRepository(db)))
	router.GET("/protected", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})

	return &authFixture{router: router, issuer: issuer, mock: mock}
}

func (f *authFixture) get(t *testing.T, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: cookie})
	}
	f.router.ServeHTTP(w, req)
	return w
}

func sessionRow(id uuid.UUID, userID int64, expiresAt time.Time, revokedAt *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(sessionCols).AddRow(id, userID, expiresAt, revokedAt, time.Now())
}

func userRow(blocked bool) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(int64(7), "admin", "admin@example.com", "hash", "09171234567",
			"admin", models.UserStatusActive, blocked,
			nil, nil, nil, nil, time.Now(), time.Now())
}

func TestSessionAuth_MissingCookie(t *testing.T) {
	f := newAuthFixture(t)
	if w := f.get(t, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionAuth_GarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	if w := f.get(t, "not-a-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionAuth_ValidSession(t *testing.T) {
	f := newAuthFixture(t)
	sessionID := uuid.New()

	token, err := f.issuer.Issue(sessionID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	f.mock.ExpectQuery("FROM sessions").
		WithArgs(sessionID).
		WillReturnRows(sessionRow(sessionID, 7, time.Now().Add(time.Hour), nil))
	f.mock.ExpectQuery("FROM users WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(userRow(false))

	w := f.get(t, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestSessionAuth_SessionRowMissing(t *testing.T) {
	f := newAuthFixture(t)
	sessionID := uuid.New()
	token, _ := f.issuer.Issue(sessionID)

	f.mock.ExpectQuery("FROM sessions").
		WillReturnRows(sqlmock.NewRows(sessionCols))

	if w := f.get(t, token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionAuth_RevokedSession(t *testing.T) {
	f := newAuthFixture(t)
	sessionID := uuid.New()
	token, _ := f.issuer.Issue(sessionID)
	revoked := time.Now().Add(-time.Minute)

	f.mock.ExpectQuery("FROM sessions").
		WillReturnRows(sessionRow(sessionID, 7, time.Now().Add(time.Hour), &revoked))

	if w := f.get(t, token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionAuth_ExpiredSessionRow(t *testing.T) {
	f := newAuthFixture(t)
	sessionID := uuid.New()
	token, _ := f.issuer.Issue(sessionID)

	f.mock.ExpectQuery("FROM sessions").
		WillReturnRows(sessionRow(sessionID, 7, time.Now().Add(-time.Minute), nil))

	if w := f.get(t, token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionAuth_BlockedUser(t *testing.T) {
	f := newAuthFixture(t)
	sessionID := uuid.New()
	token, _ := f.issuer.Issue(sessionID)

	f.mock.ExpectQuery("FROM sessions").
		WillReturnRows(sessionRow(sessionID, 7, time.Now().Add(time.Hour), nil))
	f.mock.ExpectQuery("FROM users WHERE id").
		WillReturnRows(userRow(true))

	if w := f.get(t, token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserKey, &models.User{Role: "staff"})
	})
	router.GET("/admin-only", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/any-staff", RequireRole("admin", "staff"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("admin-only status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/any-staff", nil))
	if w.Code != http.StatusOK {
		t.Errorf("any-staff status = %d, want 200", w.Code)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	router := gin.New()
	router.GET("/admin-only", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
