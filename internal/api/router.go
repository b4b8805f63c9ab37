// Package api wires together all HTTP routes for the OSCA IMS backend.
//
// Route grouping philosophy:
//   - /health and /version are unauthenticated for probes and deploy checks.
//   - /api/user/login and /api/user/register are unauthenticated entry points;
//     login sits behind a strict per-IP rate limit and registration is gated
//     by a single-use developer key instead of a session.
//   - /api/otp/* is unauthenticated (it backs pre-login verification flows)
//     but carries the strictest rate limit.
//   - GET /api/settings is public so the frontend can render municipality
//     branding before login.
//   - Everything else under /api requires a live session cookie; user and
//     settings management additionally require the Admin role.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/api/admin"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/assets"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/audit"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/auth"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/crypto"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/jobs"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/middleware"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/safego"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/sms"
)

// BackgroundServices holds references to background jobs and resources that must
// be stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	purgeJob      *jobs.CitizenPurger
	auditPruner   *jobs.AuditPruner
	expiryCleaner *jobs.ExpiryCleaner
	rateLimiters  []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.purgeJob != nil {
		bg.purgeJob.Stop()
	}
	if bg.auditPruner != nil {
		bg.auditPruner.Stop()
	}
	if bg.expiryCleaner != nil {
		bg.expiryCleaner.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	issuer, err := auth.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		log.Fatalf("Failed to initialize session token issuer: %v", err)
	}

	auditRepo := repositories.NewAuditRepository(db)
	recorder := audit.NewRecorder(auditRepo)
	cleaner := assets.NewCleaner(cfg.Assets)
	smsClient := sms.NewClient(cfg.SMS)

	// Encrypt the stored gateway API key at rest when a passphrase is configured.
	var keyCipher *crypto.KeyCipher
	if cfg.SMS.CredentialSecret != "" {
		keyCipher, err = crypto.DeriveKeyCipher(cfg.SMS.CredentialSecret, []byte("osca-ims:sms-credentials:v1"), 0)
		if err != nil {
			log.Fatalf("Failed to initialize SMS credential cipher: %v", err)
		}
	}

	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	citizenRepo := repositories.NewCitizenRepository(db)
	smsRepo := repositories.NewSMSRepository(db)

	// Background maintenance loops
	purgeJob := jobs.NewCitizenPurger(citizenRepo, recorder, cfg.Retention)
	safego.Go(func() { purgeJob.Start(context.Background()) })

	var auditPruner *jobs.AuditPruner
	if cfg.Retention.AuditLogWindow > 0 {
		auditPruner = jobs.NewAuditPruner(auditRepo, cfg.Retention.AuditLogWindow, cfg.Retention.SweepInterval)
		pruner := auditPruner
		safego.Go(func() { pruner.Start(context.Background()) })
	}

	expiryCleaner := jobs.NewExpiryCleaner(sessionRepo, smsRepo, 15*time.Minute)
	safego.Go(func() { expiryCleaner.Start(context.Background()) })

	loginLimiter := middleware.NewRateLimiter(middleware.LoginRateLimitConfig())
	otpLimiter := middleware.NewRateLimiter(middleware.OTPRateLimitConfig())

	bg := &BackgroundServices{
		purgeJob:      purgeJob,
		auditPruner:   auditPruner,
		expiryCleaner: expiryCleaner,
		rateLimiters:  []*middleware.RateLimiter{loginLimiter, otpLimiter},
	}

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.ClientIPMiddleware())

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API version
	router.GET("/version", versionHandler())

	authRequired := middleware.SessionAuthMiddleware(issuer, cfg.Session.CookieName, sessionRepo, userRepo)
	adminOnly := middleware.RequireRole("Admin")

	// Handlers
	authHandlers := admin.NewAuthHandlers(cfg, db, issuer, recorder)
	userHandlers := admin.NewUserHandlers(cfg, db, recorder, cleaner)
	citizenHandlers := admin.NewCitizenHandlers(db, recorder)
	auditHandlers := admin.NewAuditHandlers(db)
	formHandlers := admin.NewFormHandlers(db, recorder)
	barangayHandlers := admin.NewBarangayHandlers(db, recorder)
	positionHandlers := admin.NewPositionHandlers(db, recorder)
	municipalHandlers := admin.NewMunicipalOfficialHandlers(db, recorder, cleaner)
	orgChartHandlers := admin.NewOrgChartHandlers(db, recorder, cleaner)
	barangayOfficialHandlers := admin.NewBarangayOfficialHandlers(db, recorder, cleaner)
	benefitHandlers := admin.NewBenefitHandlers(db, recorder, cleaner)
	eventHandlers := admin.NewEventHandlers(db, recorder, cleaner)
	templateHandlers := admin.NewTemplateHandlers(db, recorder)
	smsHandlers := admin.NewSMSHandlers(db, recorder, smsClient, keyCipher)
	settingsHandlers := admin.NewSettingsHandlers(db, recorder, cleaner)

	api := router.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/login", middleware.RateLimitMiddleware(loginLimiter), authHandlers.LoginHandler())
		user.POST("/register", authHandlers.RegisterHandler())

		authed := user.Group("", authRequired)
		{
			authed.POST("/logout", authHandlers.LogoutHandler())
			authed.GET("/me", authHandlers.MeHandler())
			authed.GET("/session", authHandlers.SessionHandler())
			authed.PUT("/profile", userHandlers.UpdateProfileHandler())
			authed.PUT("/change-password", userHandlers.ChangePasswordHandler())
			authed.PUT("/image", userHandlers.UpdateImageHandler())
			authed.GET("", adminOnly, userHandlers.ListUsersHandler())
			authed.GET("/count", adminOnly, userHandlers.CountUsersHandler())
			authed.PUT("/update/:id", adminOnly, userHandlers.UpdateUserHandler())
			authed.PUT("/block/:id", adminOnly, userHandlers.BlockUserHandler())
			authed.DELETE("/:id", adminOnly, userHandlers.DeleteUserHandler())
		}
	}

	citizens := api.Group("/senior-citizens", authRequired)
	{
		citizens.POST("/create", citizenHandlers.CreateHandler())
		citizens.GET("/get/:id", citizenHandlers.GetHandler())
		citizens.PUT("/update/:id", citizenHandlers.UpdateHandler())
		citizens.DELETE("/delete/:id", citizenHandlers.DeleteHandler())
		citizens.GET("/page", citizenHandlers.ListHandler())
		citizens.GET("/count/all", citizenHandlers.CountHandler())
		citizens.GET("/sms-citizens", citizenHandlers.SMSRecipientsHandler())
		citizens.PUT("/soft-delete/:id", citizenHandlers.SoftDeleteHandler())
		citizens.GET("/deleted", citizenHandlers.ListDeletedHandler())
		citizens.PUT("/restore/:id", citizenHandlers.RestoreHandler())
		citizens.DELETE("/permanent-delete/:id", citizenHandlers.PermanentDeleteHandler())
	}

	api.GET("/charts/barangay", authRequired, citizenHandlers.BarangayChartHandler())

	auditLogs := api.Group("/audit-logs", authRequired)
	{
		auditLogs.GET("", auditHandlers.ListHandler())
		auditLogs.GET("/filters", auditHandlers.FiltersHandler())
		auditLogs.GET("/login-trails/:userId", auditHandlers.LoginTrailsHandler())
	}

	formFields := api.Group("/form-fields", authRequired)
	{
		formFields.GET("", formHandlers.ListFieldsHandler())
		formFields.POST("", formHandlers.CreateFieldHandler())
		formFields.PUT("/reorder", formHandlers.ReorderHandler())
		formFields.PUT("/:id", formHandlers.UpdateFieldHandler())
		formFields.DELETE("/:id", formHandlers.DeleteFieldHandler())
		formFields.GET("/group", formHandlers.ListGroupsHandler())
		formFields.POST("/group", formHandlers.CreateGroupHandler())
	}

	barangays := api.Group("/barangays", authRequired)
	{
		barangays.GET("", barangayHandlers.ListHandler())
		barangays.GET("/all", barangayHandlers.ListAllHandler())
		barangays.GET("/count", barangayHandlers.CountHandler())
		barangays.POST("", barangayHandlers.CreateHandler())
		barangays.PUT("/:id", barangayHandlers.UpdateHandler())
		barangays.DELETE("/:id", barangayHandlers.DeleteHandler())
	}

	positions := api.Group("/position", authRequired)
	{
		positions.GET("", positionHandlers.ListHandler())
		positions.POST("", positionHandlers.CreateHandler())
		positions.PUT("/:id", positionHandlers.UpdateHandler())
		positions.DELETE("/:id", positionHandlers.DeleteHandler())
	}

	officials := api.Group("/officials", authRequired)
	{
		municipal := officials.Group("/municipal")
		{
			municipal.GET("", municipalHandlers.ListHandler())
			municipal.POST("", municipalHandlers.CreateHandler())
			municipal.PUT("/:id", municipalHandlers.UpdateHandler())
			municipal.DELETE("/:id", municipalHandlers.DeleteHandler())
		}
		orgChart := officials.Group("/orgchart")
		{
			orgChart.GET("", orgChartHandlers.ListHandler())
			orgChart.POST("", orgChartHandlers.CreateHandler())
			orgChart.PUT("/:id", orgChartHandlers.UpdateHandler())
			orgChart.DELETE("/:id", orgChartHandlers.DeleteHandler())
		}
		barangay := officials.Group("/barangay")
		{
			barangay.GET("", barangayOfficialHandlers.ListHandler())
			barangay.POST("", barangayOfficialHandlers.CreateHandler())
			barangay.PUT("/:id", barangayOfficialHandlers.UpdateHandler())
			barangay.DELETE("/:id", barangayOfficialHandlers.DeleteHandler())
		}
	}

	benefits := api.Group("/benefits", authRequired)
	{
		benefits.GET("", benefitHandlers.ListHandler())
		benefits.GET("/type/:type", benefitHandlers.ListByTypeHandler())
		benefits.GET("/counts", benefitHandlers.CountsHandler())
		benefits.GET("/:id", benefitHandlers.GetHandler())
		benefits.POST("", benefitHandlers.CreateHandler())
		benefits.PUT("/:id", benefitHandlers.UpdateHandler())
		benefits.DELETE("/:id", benefitHandlers.DeleteHandler())
	}

	events := api.Group("/events", authRequired)
	{
		events.GET("/type/:type", eventHandlers.ListByTypeHandler())
		events.GET("/latest", eventHandlers.LatestHandler())
		events.GET("/count", eventHandlers.CountHandler())
		events.GET("/:id", eventHandlers.GetHandler())
		events.POST("", eventHandlers.CreateHandler())
		events.PUT("/:id", eventHandlers.UpdateHandler())
		events.DELETE("/:id", eventHandlers.DeleteHandler())
	}

	templates := api.Group("/templates", authRequired)
	{
		templates.GET("", templateHandlers.ListHandler())
		templates.POST("", templateHandlers.CreateHandler())
		templates.PUT("/:id", templateHandlers.UpdateHandler())
		templates.DELETE("/:id", templateHandlers.DeleteHandler())
	}

	smsGroup := api.Group("/sms", authRequired)
	{
		smsGroup.POST("/send-sms", smsHandlers.SendHandler())
		smsGroup.GET("/history", smsHandlers.HistoryHandler())
		smsGroup.DELETE("/delete/:id", smsHandlers.DeleteLogHandler())
		smsGroup.GET("/sms-credentials", smsHandlers.GetCredentialsHandler())
		smsGroup.POST("/sms-credentials", adminOnly, smsHandlers.UpsertCredentialsHandler())
	}

	otp := api.Group("/otp", middleware.RateLimitMiddleware(otpLimiter))
	{
		otp.POST("/send-otp", smsHandlers.SendOTPHandler())
		otp.POST("/verify-otp", smsHandlers.VerifyOTPHandler())
	}

	settings := api.Group("/settings")
	{
		settings.GET("", settingsHandlers.GetHandler())
		settings.PUT("", authRequired, adminOnly, settingsHandlers.UpsertHandler())
		settings.PUT("/about", authRequired, adminOnly, settingsHandlers.UpdateAboutHandler())
		settings.POST("/save-key", authRequired, adminOnly, settingsHandlers.SaveKeyHandler())
	}

	return router, bg
}

func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "1.0.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", middleware.ClientIP(c)),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS for the browser frontend; credentials are
// allowed because authentication rides on the session cookie.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
