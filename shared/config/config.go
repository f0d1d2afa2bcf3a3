package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTExpireHours string

	// OTP
	OtpExpiryMinutes string
	OtpMaxAttempts   string

	// Password policy
	PasswordHistoryLimit string

	// Forgot-password rate limiting (audit-log counted)
	PasswordResetMaxRequests string
	PasswordResetWindowHours string

	// Audit retention
	AuditRetentionDays string

	// Invitations
	InvitationExpiryDays string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Super Admin bootstrap
	SuperAdminEmail    string
	SuperAdminPassword string

	// Notification service
	NotificationServiceURL string

	// Frontend URL (invitation links)
	FrontendURL string

	// HTTP server
	AuthServicePort string

	// Login / general rate limiting (HTTP layer)
	RateLimitMaxRequests       string
	RateLimitTimeWindowSeconds string
	LoginRateLimitMaxAttempts  string
	LoginRateLimitWindowSecs   string
	LoginRateLimitBlockMinutes string
	LoginMaxFailedAttempts     string
	LoginFailureWindowMinutes  string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "petrosmart"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours: getEnv("JWT_EXPIRE_HOURS", "24"),

		// OTP
		OtpExpiryMinutes: getEnv("OTP_EXPIRY_MINUTES", "10"),
		OtpMaxAttempts:   getEnv("OTP_MAX_ATTEMPTS", "5"),

		// Password policy
		PasswordHistoryLimit: getEnv("PASSWORD_HISTORY_LIMIT", "5"),

		// Forgot-password rate limiting
		PasswordResetMaxRequests: getEnv("PASSWORD_RESET_MAX_REQUESTS", "3"),
		PasswordResetWindowHours: getEnv("PASSWORD_RESET_WINDOW_HOURS", "24"),

		// Audit retention
		AuditRetentionDays: getEnv("AUDIT_RETENTION_DAYS", "90"),

		// Invitations
		InvitationExpiryDays: getEnv("INVITATION_EXPIRY_DAYS", "7"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Super Admin
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@petrosmart.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "admin123"),

		// Notification service
		NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8004"),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// HTTP server
		AuthServicePort: getEnv("AUTH_SERVICE_PORT", "8001"),

		// Rate Limiting
		RateLimitMaxRequests:       getEnv("RATE_LIMIT_MAX_REQUESTS", "100"),
		RateLimitTimeWindowSeconds: getEnv("RATE_LIMIT_TIME_WINDOW_SECONDS", "60"),
		LoginRateLimitMaxAttempts:  getEnv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "5"),
		LoginRateLimitWindowSecs:   getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "300"),
		LoginRateLimitBlockMinutes: getEnv("LOGIN_RATE_LIMIT_BLOCK_MINUTES", "30"),
		LoginMaxFailedAttempts:     getEnv("LOGIN_MAX_FAILED_ATTEMPTS", "10"),
		LoginFailureWindowMinutes:  getEnv("LOGIN_FAILURE_WINDOW_MINUTES", "15"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// GetJWTExpireDuration returns the configured session token lifetime
func (c *Config) GetJWTExpireDuration() time.Duration {
	if hours, err := strconv.Atoi(c.JWTExpireHours); err == nil {
		return time.Duration(hours) * time.Hour
	}
	return 24 * time.Hour
}

// GetOtpExpiry returns the configured OTP lifetime
func (c *Config) GetOtpExpiry() time.Duration {
	if minutes, err := strconv.Atoi(c.OtpExpiryMinutes); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return 10 * time.Minute
}

// GetOtpMaxAttempts returns the failed-attempt threshold before a code locks
func (c *Config) GetOtpMaxAttempts() int {
	return c.intField(c.OtpMaxAttempts, 5)
}

// GetPasswordHistoryLimit returns how many password hashes are retained per user
func (c *Config) GetPasswordHistoryLimit() int {
	return c.intField(c.PasswordHistoryLimit, 5)
}

// GetPasswordResetMaxRequests returns the forgot-password request cap per window
func (c *Config) GetPasswordResetMaxRequests() int {
	return c.intField(c.PasswordResetMaxRequests, 3)
}

// GetPasswordResetWindow returns the rolling window for the forgot-password cap
func (c *Config) GetPasswordResetWindow() time.Duration {
	return time.Duration(c.intField(c.PasswordResetWindowHours, 24)) * time.Hour
}

// GetAuditRetentionDays returns how long audit events are kept
func (c *Config) GetAuditRetentionDays() int {
	return c.intField(c.AuditRetentionDays, 90)
}

// GetInvitationExpiry returns the invitation validity period
func (c *Config) GetInvitationExpiry() time.Duration {
	return time.Duration(c.intField(c.InvitationExpiryDays, 7)) * 24 * time.Hour
}

// GetRateLimitMaxRequests returns the general per-IP request cap
func (c *Config) GetRateLimitMaxRequests() int {
	return c.intField(c.RateLimitMaxRequests, 100)
}

// GetRateLimitTimeWindow returns the general rate limit window
func (c *Config) GetRateLimitTimeWindow() time.Duration {
	return time.Duration(c.intField(c.RateLimitTimeWindowSeconds, 60)) * time.Second
}

// GetLoginRateLimitMaxAttempts returns the login attempt cap per window
func (c *Config) GetLoginRateLimitMaxAttempts() int {
	return c.intField(c.LoginRateLimitMaxAttempts, 5)
}

// GetLoginRateLimitWindow returns the login rate limit window
func (c *Config) GetLoginRateLimitWindow() time.Duration {
	return time.Duration(c.intField(c.LoginRateLimitWindowSecs, 300)) * time.Second
}

// GetLoginRateLimitBlockDuration returns how long a throttled IP stays blocked
func (c *Config) GetLoginRateLimitBlockDuration() time.Duration {
	return time.Duration(c.intField(c.LoginRateLimitBlockMinutes, 30)) * time.Minute
}

// GetLoginMaxFailedAttempts returns the per-account failed login cap per window
func (c *Config) GetLoginMaxFailedAttempts() int {
	return c.intField(c.LoginMaxFailedAttempts, 10)
}

// GetLoginFailureWindow returns the rolling window for the failed login cap
func (c *Config) GetLoginFailureWindow() time.Duration {
	return time.Duration(c.intField(c.LoginFailureWindowMinutes, 15)) * time.Minute
}

func (c *Config) intField(value string, defaultValue int) int {
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
