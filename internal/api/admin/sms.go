// sms.go implements SMS dispatch, delivery history, gateway credentials, and
// the OTP issue/verify flow. Gateway failures surface as failed deliveries in
// the result, never as unhandled errors.
package admin

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/crypto"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/sms"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/telemetry"
)

// SMSHandlers handles SMS and OTP endpoints
type SMSHandlers struct {
	recorder *audit.Recorder
	client   *sms.Client
	smsRepo  *repositories.SMSRepository
}

// NewSMSHandlers creates a new SMSHandlers instance. When cipher is non-nil
// the stored gateway API key is encrypted at rest.
func NewSMSHandlers(db *sql.DB, recorder *audit.Recorder, client *sms.Client, cipher *crypto.KeyCipher) *SMSHandlers {
	return &SMSHandlers{
		recorder: recorder,
		client:   client,
		smsRepo:  repositories.NewSMSRepositoryWithCipher(db, cipher),
	}
}

// send dispatches a message and persists one log row per delivery outcome.
func (h *SMSHandlers) send(c *gin.Context, recipients []string, message string) (*sms.Result, bool) {
	creds, err := h.smsRepo.GetCredentials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load SMS credentials."})
		return nil, false
	}
	if creds == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "SMS credentials are not configured."})
		return nil, false
	}

	result := h.client.Send(c.Request.Context(), sms.Credentials{
		APIKey:     creds.APIKey,
		SenderName: creds.SenderName,
	}, recipients, message)

	for _, d := range result.Deliveries {
		credit := float64(d.CreditUsed)
		logErr := h.smsRepo.CreateLog(c.Request.Context(), &models.SMSLog{
			Recipient:   d.Recipient,
			Message:     message,
			Status:      d.Status,
			ReferenceID: d.ReferenceID,
			CreditUsed:  &credit,
		})
		if logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record SMS delivery."})
			return nil, false
		}
	}

	return result, true
}

// SendSMSRequest carries a bulk message
type SendSMSRequest struct {
	Message    string   `json:"message" binding:"required"`
	Recipients []string `json:"recipients" binding:"required,min=1"`
}

// SendHandler sends a message to a list of recipients
// POST /api/sms/send-sms
func (h *SMSHandlers) SendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendSMSRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "A message and at least one recipient are required."})
			return
		}

		result, ok := h.send(c, req.Recipients, req.Message)
		if !ok {
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionCreate,
			fmt.Sprintf("Sent SMS to %d recipient(s), %d failed.", result.Sent, result.Failed), middleware.ClientIP(c))

		if result.Sent == 0 {
			c.JSON(http.StatusBadGateway, gin.H{
				"message": "Failed to send SMS to all recipients.",
				"sent":    result.Sent,
				"failed":  result.Failed,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("SMS sent to %d recipient(s).", result.Sent),
			"sent":    result.Sent,
			"failed":  result.Failed,
		})
	}
}

// HistoryHandler returns a page of delivery logs, newest first
// GET /api/sms/history
func (h *SMSHandlers) HistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := pageParams(c, 20)

		logs, total, err := h.smsRepo.ListLogs(c.Request.Context(), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load SMS history."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"logs":       logs,
			"total":      total,
			"page":       page,
			"totalPages": totalPages(total, limit),
		})
	}
}

// DeleteLogHandler removes one delivery log row
// DELETE /api/sms/delete/:id
func (h *SMSHandlers) DeleteLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		deleted, err := h.smsRepo.DeleteLog(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete SMS log."})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"message": "SMS log not found."})
			return
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), models.ActionDelete,
			fmt.Sprintf("Deleted SMS log ID %d.", id), middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": "SMS log deleted successfully."})
	}
}

// GetCredentialsHandler returns the configured sender with the API key masked
// GET /api/sms/sms-credentials
func (h *SMSHandlers) GetCredentialsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds, err := h.smsRepo.GetCredentials(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load SMS credentials."})
			return
		}
		if creds == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "SMS credentials are not configured."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"api_key":     maskKey(creds.APIKey),
			"sender_name": creds.SenderName,
		})
	}
}

// CredentialsRequest carries the gateway credentials
type CredentialsRequest struct {
	APIKey     string `json:"api_key" binding:"required"`
	SenderName string `json:"sender_name" binding:"required"`
}

// UpsertCredentialsHandler saves the singleton gateway credentials, reporting
// whether they were created or replaced
// POST /api/sms/sms-credentials
func (h *SMSHandlers) UpsertCredentialsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "API key and sender name are required."})
			return
		}

		inserted, err := h.smsRepo.UpsertCredentials(c.Request.Context(), req.APIKey, req.SenderName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save SMS credentials."})
			return
		}

		action := models.ActionUpdate
		message := "SMS credentials updated successfully."
		if inserted {
			action = models.ActionCreate
			message = "SMS credentials saved successfully."
		}

		h.recorder.Record(c.Request.Context(), actorFrom(c), action,
			"Saved SMS gateway credentials for sender '"+req.SenderName+"'.", middleware.ClientIP(c))

		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// SendOTPRequest carries an OTP issuance request
type SendOTPRequest struct {
	Mobile  string `json:"mobile" binding:"required"`
	Purpose string `json:"purpose"`
}

// SendOTPHandler generates a single-use code, stores it with its expiry, and
// dispatches it to the mobile number
// POST /api/otp/send-otp
func (h *SMSHandlers) SendOTPHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mobile number is required."})
			return
		}

		purpose := req.Purpose
		if purpose == "" {
			purpose = "verification"
		}

		code, err := sms.GenerateOTP()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate OTP."})
			return
		}

		if err := h.smsRepo.CreateOTP(c.Request.Context(), &models.OTPCode{
			Mobile:    req.Mobile,
			OTP:       code,
			Purpose:   purpose,
			ExpiresAt: time.Now().Add(sms.OTPValidity),
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store OTP."})
			return
		}

		message := fmt.Sprintf("Your OSCA verification code is %s. It expires in 5 minutes.", code)
		result, ok := h.send(c, []string{req.Mobile}, message)
		if !ok {
			return
		}
		if result.Sent == 0 {
			c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to send OTP."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully."})
	}
}

// VerifyOTPRequest carries an OTP verification attempt
type VerifyOTPRequest struct {
	Mobile  string `json:"mobile" binding:"required"`
	OTP     string `json:"otp" binding:"required"`
	Purpose string `json:"purpose"`
}

// VerifyOTPHandler checks a code against its unused, unexpired record; a
// match consumes the code. Failures share one generic message.
// POST /api/otp/verify-otp
func (h *SMSHandlers) VerifyOTPHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mobile number and OTP are required."})
			return
		}

		purpose := req.Purpose
		if purpose == "" {
			purpose = "verification"
		}

		valid, err := h.smsRepo.ConsumeOTP(c.Request.Context(), req.Mobile, req.OTP, purpose, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify OTP."})
			return
		}

		if !valid {
			telemetry.OTPVerificationsTotal.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": "Invalid or expired OTP."})
			return
		}

		telemetry.OTPVerificationsTotal.WithLabelValues("valid").Inc()
		c.JSON(http.StatusOK, gin.H{"valid": true, "message": "OTP verified successfully."})
	}
}

// maskKey hides all but the last four characters of a credential.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
