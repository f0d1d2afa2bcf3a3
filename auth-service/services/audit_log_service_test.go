package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"petrosmart-backend/shared/database/models/auth"
)

func TestAuditRecordAndCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	for i := 0; i < 2; i++ {
		err := svc.Record(AuditEntry{
			Email:      "user@example.com",
			Action:     auth.AuditPasswordResetRequested,
			IPAddress:  "10.0.0.1",
			Successful: true,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	// Failed requests do not consume quota.
	err := svc.Record(AuditEntry{
		Email:      "user@example.com",
		Action:     auth.AuditPasswordResetRequested,
		Successful: false,
		Metadata:   map[string]interface{}{"reason": "unknown_email"},
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	count, err := svc.CountResetRequests("user@example.com", 24*time.Hour)
	if err != nil {
		t.Fatalf("CountResetRequests failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 successful requests, got %d", count)
	}

	count, err = svc.CountResetRequests("other@example.com", 24*time.Hour)
	if err != nil {
		t.Fatalf("CountResetRequests failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 requests for other email, got %d", count)
	}
}

func TestAuditCountWindowExcludesOldRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	err := svc.Record(AuditEntry{
		Email:      "user@example.com",
		Action:     auth.AuditPasswordResetRequested,
		Successful: true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := db.Model(&auth.AuditLog{}).
		Where("email = ?", "user@example.com").
		Update("created_at", time.Now().Add(-48*time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate audit row: %v", err)
	}

	count, err := svc.CountResetRequests("user@example.com", 24*time.Hour)
	if err != nil {
		t.Fatalf("CountResetRequests failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected old row outside window, got count %d", count)
	}
}

func TestAuditCountRecentFailed(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	for i := 0; i < 3; i++ {
		err := svc.Record(AuditEntry{
			Email:      "user@example.com",
			Action:     auth.AuditLoginFailed,
			Successful: false,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	count, err := svc.CountRecentFailed("user@example.com", auth.AuditLoginFailed, time.Hour)
	if err != nil {
		t.Fatalf("CountRecentFailed failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 failed logins, got %d", count)
	}
}

func TestAuditFindByUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		err := svc.Record(AuditEntry{
			UserID:     &userID,
			Email:      "user@example.com",
			Action:     auth.AuditLoginSuccess,
			Successful: true,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	logs, total, err := svc.FindByUser(userID, 2, 0)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(logs) != 2 {
		t.Fatalf("expected page of 2, got %d", len(logs))
	}
}

func TestAuditCleanupRetention(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	err := svc.Record(AuditEntry{
		Email:      "old@example.com",
		Action:     auth.AuditLoginSuccess,
		Successful: true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	err = svc.Record(AuditEntry{
		Email:      "fresh@example.com",
		Action:     auth.AuditLoginSuccess,
		Successful: true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := db.Model(&auth.AuditLog{}).
		Where("email = ?", "old@example.com").
		Update("created_at", time.Now().AddDate(0, 0, -91)).Error; err != nil {
		t.Fatalf("failed to backdate audit row: %v", err)
	}

	deleted, err := svc.Cleanup(90)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted row, got %d", deleted)
	}

	var count int64
	if err := db.Model(&auth.AuditLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining row, got %d", count)
	}
}
