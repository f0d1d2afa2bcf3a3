package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"petrosmart-backend/auth-service/handlers"
	"petrosmart-backend/auth-service/middleware"
	"petrosmart-backend/auth-service/services"
	"petrosmart-backend/shared/clients"
	"petrosmart-backend/shared/config"
	"petrosmart-backend/shared/database"
	utils "petrosmart-backend/shared/utils/auth"
	"petrosmart-backend/shared/utils/cache"
	"petrosmart-backend/shared/utils/permission"

	_ "petrosmart-backend/docs"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize Redis
	if err := cache.InitCacheManager(); err != nil {
		log.Fatalf("Failed to initialize cache manager: %v", err)
	}
	if err := cache.GetCacheManager().TestConnection(); err != nil {
		log.Fatalf("Redis connection test failed: %v", err)
	}

	db := database.GetDB()

	// Build the auth services
	tokenManager := utils.NewTokenManagerFromConfig(cfg)
	notifier := clients.NewNotificationClient()

	otpService := services.NewOtpService(db, services.OtpConfig{
		Expiry:      cfg.GetOtpExpiry(),
		MaxAttempts: cfg.GetOtpMaxAttempts(),
	})
	historyService := services.NewPasswordHistoryService(db, cfg.GetPasswordHistoryLimit())
	auditService := services.NewAuditLogService(db)
	blacklistService := services.NewTokenBlacklistService(cache.GetCacheManager(), tokenManager.Expiry())
	invitationService := services.NewInvitationService(db, notifier, cfg.GetInvitationExpiry(), cfg.FrontendURL)

	authService := services.NewAuthService(services.AuthServiceDeps{
		DB:               db,
		Tokens:           tokenManager,
		Otp:              otpService,
		History:          historyService,
		Audit:            auditService,
		Blacklist:        blacklistService,
		Invitations:      invitationService,
		Notifier:         notifier,
		ResetMaxPerUser:  cfg.GetPasswordResetMaxRequests(),
		ResetWindow:      cfg.GetPasswordResetWindow(),
		LoginMaxFailures: cfg.GetLoginMaxFailedAttempts(),
		LoginWindow:      cfg.GetLoginFailureWindow(),
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	invitationHandler := handlers.NewInvitationHandler(db, invitationService, authService)
	auditHandler := handlers.NewAuditHandler(db, auditService)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(30 * time.Minute)

	generalConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    cfg.GetRateLimitTimeWindow(),
		BlockDuration: 15 * time.Minute,
	}

	loginConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetLoginRateLimitMaxAttempts(),
		TimeWindow:    cfg.GetLoginRateLimitWindow(),
		BlockDuration: cfg.GetLoginRateLimitBlockDuration(),
	}

	startCleanupJobs(cfg, otpService, auditService, invitationService)

	router := gin.Default()
	router.Use(cors.Default())

	authRequired := middleware.AuthMiddleware(authService)

	// Auth endpoints
	router.POST("/api/auth/login", rateLimiter.Limit("login", loginConfig), authHandler.Login)
	router.POST("/api/auth/logout", authRequired, authHandler.Logout)
	router.POST("/api/auth/register", rateLimiter.Limit("register", generalConfig), authHandler.Register)
	router.POST("/api/auth/register/init", rateLimiter.Limit("register", generalConfig), authHandler.RegisterInit)
	router.POST("/api/auth/register/verify", rateLimiter.Limit("register", generalConfig), authHandler.VerifyRegistration)
	router.POST("/api/auth/register/invitation", rateLimiter.Limit("register", generalConfig), invitationHandler.RegisterWithInvitation)
	router.POST("/api/auth/google", rateLimiter.Limit("login", loginConfig), authHandler.GoogleLogin)
	router.POST("/api/auth/validate", rateLimiter.Limit("general", generalConfig), authHandler.Validate)
	router.GET("/api/auth/me", authRequired, authHandler.Me)
	router.GET("/api/auth/activity", authRequired, auditHandler.MyActivity)

	// Password management endpoints
	router.POST("/api/auth/forgot-password", rateLimiter.Limit("password-reset", generalConfig), authHandler.ForgotPassword)
	router.POST("/api/auth/reset-password", rateLimiter.Limit("password-reset", generalConfig), authHandler.ResetPassword)
	router.POST("/api/auth/change-password", authRequired, authHandler.ChangePassword)

	// Invitation endpoints
	router.GET("/api/invitations/validate/:token", invitationHandler.ValidateToken)
	invitations := router.Group("/api/invitations", authRequired,
		middleware.RequirePermission(permission.ActionCreate, permission.SubjectUser))
	{
		invitations.POST("", invitationHandler.Create)
		invitations.GET("", invitationHandler.List)
		invitations.GET("/:id", invitationHandler.Get)
		invitations.DELETE("/:id", invitationHandler.Revoke)
		invitations.POST("/:id/resend", invitationHandler.Resend)
	}

	// Audit endpoints
	router.GET("/api/audit-logs", authRequired,
		middleware.RequirePermission(permission.ActionRead, permission.SubjectReport), auditHandler.List)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := cfg.AuthServicePort
	log.Printf("Auth Service starting on port %s...", port)
	router.Run(":" + port)
}

// startCleanupJobs runs the periodic janitors: expired OTP deletion,
// invitation expiry, and audit retention.
func startCleanupJobs(cfg *config.Config, otp *services.OtpService, audit *services.AuditLogService, invitations *services.InvitationService) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := otp.CleanupExpired(); err != nil {
				log.Printf("❌ OTP cleanup failed: %v", err)
			}

			if n, err := invitations.ExpirePending(); err != nil {
				log.Printf("❌ Invitation expiry failed: %v", err)
			} else if n > 0 {
				log.Printf("✅ Expired %d invitations", n)
			}

			if n, err := audit.Cleanup(cfg.GetAuditRetentionDays()); err != nil {
				log.Printf("❌ Audit cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("✅ Removed %d audit events past retention", n)
			}
		}
	}()
}
