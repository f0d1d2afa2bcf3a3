package services

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"petrosmart-backend/shared/database"
	"petrosmart-backend/shared/database/models"
	"petrosmart-backend/shared/utils/cache"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// An in-memory sqlite database exists per connection, so a second
	// pooled connection would see empty tables.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	roles := []models.RoleType{
		models.RoleSuperAdmin,
		models.RoleAdmin,
		models.RoleManager,
		models.RoleStaff,
		models.RoleUser,
		models.RoleGuest,
	}
	for _, name := range roles {
		role := models.Role{Name: name, DisplayName: string(name), IsActive: true}
		if err := db.Create(&role).Error; err != nil {
			t.Fatalf("failed to seed role %s: %v", name, err)
		}
	}

	return db
}

func newTestCache(t *testing.T) *cache.CacheManager {
	t.Helper()

	srv := miniredis.RunT(t)
	cm, err := cache.NewCacheManager(srv.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	return cm
}

// fakeNotifier records outgoing emails so tests can read OTP codes and
// invitation links.
type fakeNotifier struct {
	mu              sync.Mutex
	otpCodes        map[string]string
	inviteLinks     map[string]string
	passwordChanged int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		otpCodes:    make(map[string]string),
		inviteLinks: make(map[string]string),
	}
}

func (f *fakeNotifier) SendOtpEmail(email, code, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpCodes[email] = code
	return nil
}

func (f *fakeNotifier) SendPasswordChangedEmail(email, name, ipAddress string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordChanged++
	return nil
}

func (f *fakeNotifier) SendInvitationEmail(email, link, roleType, inviterName string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inviteLinks[email] = link
	return nil
}

func (f *fakeNotifier) lastOtp(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otpCodes[email]
}
