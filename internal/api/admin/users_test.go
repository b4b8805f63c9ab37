package admin

import (
	"net/http"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

func newUserRouter(t *testing.T, current *models.User) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	h := NewUserHandlers(&config.Config{}, db, audit.NewRecorder(repositories.NewAuditRepository(db)), nil)

	r := gin.New()
	r.Use(asUser(current))
	r.PUT("/profile", h.UpdateProfileHandler())
	r.PUT("/change-password", h.ChangePasswordHandler())
	r.PUT("/block/:id", h.BlockUserHandler())
	return r, mock
}

func TestUpdateProfileHandler_RecordsFieldDiff(t *testing.T) {
	current := sampleAdmin()
	r, mock := newUserRouter(t, current)

	mock.ExpectExec("UPDATE users SET username").
		WithArgs("osca.admin2", "09170001111", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "osca.admin", "Admin", "UPDATE",
			"Updated own profile. cp_number: '' → '09170001111', username: 'osca.admin' → 'osca.admin2'",
			"UNKNOWN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, timeNowRow()))

	cp := "09170001111"
	w := performJSON(t, r, http.MethodPut, "/profile", map[string]interface{}{
		"username":  "osca.admin2",
		"cp_number": cp,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileHandler_ContactNumberTaken(t *testing.T) {
	r, mock := newUserRouter(t, sampleAdmin())

	mock.ExpectExec("UPDATE users SET username").
		WillReturnError(dupKeyErr())

	w := performJSON(t, r, http.MethodPut, "/profile", map[string]interface{}{
		"username":  "osca.admin",
		"cp_number": "09170001111",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "That contact number is already in use.", decodeBody(t, w)["message"])
}

func TestChangePasswordHandler_WrongCurrentPassword(t *testing.T) {
	current := sampleAdmin()
	hash, err := auth.HashPassword("the-real-password")
	require.NoError(t, err)
	current.Password = hash

	r, _ := newUserRouter(t, current)

	w := performJSON(t, r, http.MethodPut, "/change-password", map[string]string{
		"currentPassword": "not-the-password",
		"newPassword":     "a-new-password",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Current password is incorrect.", decodeBody(t, w)["message"])
}

func TestChangePasswordHandler_Success(t *testing.T) {
	current := sampleAdmin()
	hash, err := auth.HashPassword("the-real-password")
	require.NoError(t, err)
	current.Password = hash

	r, mock := newUserRouter(t, current)

	mock.ExpectExec("UPDATE users SET password").
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock)

	w := performJSON(t, r, http.MethodPut, "/change-password", map[string]string{
		"currentPassword": "the-real-password",
		"newPassword":     "a-new-password",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockUserHandler_Blocks(t *testing.T) {
	r, mock := newUserRouter(t, sampleAdmin())

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(int64(9)).
		WillReturnRows(userRow(t, "whatever-pass", false))
	mock.ExpectExec("UPDATE users SET blocked").
		WithArgs(true, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock)

	blocked := true
	w := performJSON(t, r, http.MethodPut, "/block/9", map[string]interface{}{"blocked": blocked})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
