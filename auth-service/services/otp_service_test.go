package services

import (
	"testing"
	"time"

	"petrosmart-backend/shared/database/models/auth"
)

func TestOtpIssueAndVerify(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	code, err := svc.Issue("user@example.com", auth.OtpRegistration, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	result, err := svc.Verify("user@example.com", code, auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got reason %q", result.Reason)
	}

	// The code is single use.
	result, err = svc.Verify("user@example.com", code, auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success || result.Reason != OtpReasonInvalid {
		t.Fatalf("expected invalid on reuse, got success=%v reason=%q", result.Success, result.Reason)
	}
}

func TestOtpVerifyNoCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	result, err := svc.Verify("nobody@example.com", "123456", auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success || result.Reason != OtpReasonInvalid {
		t.Fatalf("expected invalid, got success=%v reason=%q", result.Success, result.Reason)
	}
}

func TestOtpPurposeIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	code, err := svc.Issue("user@example.com", auth.OtpRegistration, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	result, err := svc.Verify("user@example.com", code, auth.OtpPasswordReset)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success {
		t.Fatal("code issued for registration must not verify for password reset")
	}
}

func TestOtpAttemptTrackingAndLockout(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, OtpConfig{Expiry: 10 * time.Minute, MaxAttempts: 3})

	code, err := svc.Issue("user@example.com", auth.OtpRegistration, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 1; i < 3; i++ {
		result, err := svc.Verify("user@example.com", wrong, auth.OtpRegistration)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if result.Reason != OtpReasonMismatch {
			t.Fatalf("attempt %d: expected mismatch, got %q", i, result.Reason)
		}
		if result.AttemptsLeft != 3-i {
			t.Fatalf("attempt %d: expected %d attempts left, got %d", i, 3-i, result.AttemptsLeft)
		}
	}

	// Third failure hits the threshold and locks the code.
	result, err := svc.Verify("user@example.com", wrong, auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != OtpReasonLocked {
		t.Fatalf("expected locked, got %q", result.Reason)
	}

	// The correct code is refused while locked.
	result, err = svc.Verify("user@example.com", code, auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success || result.Reason != OtpReasonLocked {
		t.Fatalf("expected locked for correct code, got success=%v reason=%q", result.Success, result.Reason)
	}
}

func TestOtpExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	code, err := svc.Issue("user@example.com", auth.OtpPasswordReset, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := db.Model(&auth.Otp{}).
		Where("email = ?", "user@example.com").
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("failed to backdate otp: %v", err)
	}

	result, err := svc.Verify("user@example.com", code, auth.OtpPasswordReset)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success || result.Reason != OtpReasonExpired {
		t.Fatalf("expected expired, got success=%v reason=%q", result.Success, result.Reason)
	}
}

func TestOtpNewestCodeIsAuthoritative(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	first, err := svc.Issue("user@example.com", auth.OtpRegistration, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Force distinct created_at ordering; sqlite timestamps can collide
	// within one transaction.
	if err := db.Model(&auth.Otp{}).
		Where("code = ?", first).
		Update("created_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("failed to backdate first otp: %v", err)
	}

	second, err := svc.Issue("user@example.com", auth.OtpRegistration, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if first != second {
		result, err := svc.Verify("user@example.com", first, auth.OtpRegistration)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if result.Success {
			t.Fatal("superseded code must not verify")
		}
	}

	result, err := svc.Verify("user@example.com", second, auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("newest code should verify, got reason %q", result.Reason)
	}
}

func TestOtpInvalidateActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	code, err := svc.Issue("user@example.com", auth.OtpRegistration, nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := svc.InvalidateActive("user@example.com", auth.OtpRegistration); err != nil {
		t.Fatalf("InvalidateActive failed: %v", err)
	}

	result, err := svc.Verify("user@example.com", code, auth.OtpRegistration)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success {
		t.Fatal("invalidated code must not verify")
	}
}

func TestOtpCleanupExpired(t *testing.T) {
	db := newTestDB(t)
	svc := NewOtpService(db, DefaultOtpConfig())

	if _, err := svc.Issue("old@example.com", auth.OtpRegistration, nil); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := svc.Issue("fresh@example.com", auth.OtpRegistration, nil); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := db.Model(&auth.Otp{}).
		Where("email = ?", "old@example.com").
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate otp: %v", err)
	}

	if err := svc.CleanupExpired(); err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}

	var count int64
	if err := db.Model(&auth.Otp{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining otp, got %d", count)
	}
}
