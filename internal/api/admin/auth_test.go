package admin

import (
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

func newAuthHandlers(t *testing.T) (*AuthHandlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)

	cfg := &config.Config{}
	cfg.Session.CookieName = "oscaims_sid"
	cfg.Session.Secret = "test-session-secret"
	cfg.Session.TTL = time.Hour

	issuer, err := auth.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	recorder := audit.NewRecorder(repositories.NewAuditRepository(db))
	return NewAuthHandlers(cfg, db, issuer, recorder), mock
}

func userRow(t *testing.T, password string, blocked bool) *sqlmock.Rows {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	cols := []string{"id", "username", "email", "password", "cp_number", "role", "status", "blocked",
		"last_login", "last_logout", "image_url", "image_public_id", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).AddRow(
		int64(7), "osca.admin", "admin@osca.test", hash, nil, "Admin", "inactive", blocked,
		nil, nil, nil, nil, time.Now(), time.Now())
}

// ---------------------------------------------------------------------------
// LoginHandler
// ---------------------------------------------------------------------------

func TestLoginHandler_Success(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectQuery("FROM users WHERE LOWER").
		WithArgs("admin@osca.test").
		WillReturnRows(userRow(t, "correct horse", false))
	mock.ExpectQuery("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE users SET status").
		WithArgs("active", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock)

	r := gin.New()
	r.POST("/login", h.LoginHandler())
	w := performJSON(t, r, http.MethodPost, "/login",
		map[string]string{"email": "admin@osca.test", "password": "correct horse"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == "oscaims_sid" && ck.Value != "" {
			found = true
			if !ck.HttpOnly {
				t.Error("session cookie is not HttpOnly")
			}
		}
	}
	if !found {
		t.Error("session cookie not set on login")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectQuery("FROM users WHERE LOWER").
		WithArgs("admin@osca.test").
		WillReturnRows(userRow(t, "correct horse", false))

	r := gin.New()
	r.POST("/login", h.LoginHandler())
	w := performJSON(t, r, http.MethodPost, "/login",
		map[string]string{"email": "admin@osca.test", "password": "battery staple"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Invalid email or password." {
		t.Errorf("message = %q", body["message"])
	}
}

func TestLoginHandler_UnknownEmailSameMessage(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectQuery("FROM users WHERE LOWER").
		WithArgs("nobody@osca.test").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := gin.New()
	r.POST("/login", h.LoginHandler())
	w := performJSON(t, r, http.MethodPost, "/login",
		map[string]string{"email": "nobody@osca.test", "password": "whatever123"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Invalid email or password." {
		t.Errorf("unknown email must not be distinguishable, got %q", body["message"])
	}
}

func TestLoginHandler_BlockedAccount(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectQuery("FROM users WHERE LOWER").
		WithArgs("admin@osca.test").
		WillReturnRows(userRow(t, "correct horse", true))

	r := gin.New()
	r.POST("/login", h.LoginHandler())
	w := performJSON(t, r, http.MethodPost, "/login",
		map[string]string{"email": "admin@osca.test", "password": "correct horse"})

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestLoginHandler_MissingFields(t *testing.T) {
	h, _ := newAuthHandlers(t)

	r := gin.New()
	r.POST("/login", h.LoginHandler())
	w := performJSON(t, r, http.MethodPost, "/login", map[string]string{"email": "admin@osca.test"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// ---------------------------------------------------------------------------
// RegisterHandler
// ---------------------------------------------------------------------------

func TestRegisterHandler_Success(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectExec("UPDATE dev_keys SET used").
		WithArgs("A1B2C3", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("new.staff", "staff@osca.test", sqlmock.AnyArg(), nil, "Staff").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
	expectAudit(mock)

	r := gin.New()
	r.POST("/register", h.RegisterHandler())
	w := performJSON(t, r, http.MethodPost, "/register", map[string]string{
		"username": "new.staff",
		"email":    "staff@osca.test",
		"password": "longenough",
		"devKey":   "A1B2C3",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["insertId"] != float64(12) {
		t.Errorf("insertId = %v, want 12", body["insertId"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRegisterHandler_InvalidDevKey(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectExec("UPDATE dev_keys SET used").
		WithArgs("EXPIRED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := gin.New()
	r.POST("/register", h.RegisterHandler())
	w := performJSON(t, r, http.MethodPost, "/register", map[string]string{
		"username": "new.staff",
		"email":    "staff@osca.test",
		"password": "longenough",
		"devKey":   "EXPIRED",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "Invalid or expired developer key." {
		t.Errorf("message = %q", body["message"])
	}
}

func TestRegisterHandler_ShortPasswordRejected(t *testing.T) {
	h, _ := newAuthHandlers(t)

	r := gin.New()
	r.POST("/register", h.RegisterHandler())
	w := performJSON(t, r, http.MethodPost, "/register", map[string]string{
		"username": "new.staff",
		"email":    "staff@osca.test",
		"password": "short",
		"devKey":   "A1B2C3",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegisterHandler_DuplicateAccount(t *testing.T) {
	h, mock := newAuthHandlers(t)

	mock.ExpectExec("UPDATE dev_keys SET used").
		WithArgs("A1B2C3", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(dupKeyErr())

	r := gin.New()
	r.POST("/register", h.RegisterHandler())
	w := performJSON(t, r, http.MethodPost, "/register", map[string]string{
		"username": "new.staff",
		"email":    "staff@osca.test",
		"password": "longenough",
		"devKey":   "A1B2C3",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

// ---------------------------------------------------------------------------
// SessionHandler
// ---------------------------------------------------------------------------

func TestSessionHandler_Authenticated(t *testing.T) {
	h, _ := newAuthHandlers(t)

	r := gin.New()
	r.GET("/session", asUser(sampleAdmin()), h.SessionHandler())
	w := performJSON(t, r, http.MethodGet, "/session", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", body["authenticated"])
	}
}

func TestSessionHandler_Anonymous(t *testing.T) {
	h, _ := newAuthHandlers(t)

	r := gin.New()
	r.GET("/session", h.SessionHandler())
	w := performJSON(t, r, http.MethodGet, "/session", nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := decodeBody(t, w); body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}
