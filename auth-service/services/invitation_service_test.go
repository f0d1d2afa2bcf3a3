package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/shared/database/models"
)

func newTestInvitationService(t *testing.T, db *gorm.DB) (*InvitationService, *fakeNotifier) {
	t.Helper()
	notifier := newFakeNotifier()
	svc := NewInvitationService(db, notifier, 7*24*time.Hour, "http://localhost:3000")
	return svc, notifier
}

func createInviter(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		t.Fatalf("admin role missing: %v", err)
	}

	user := models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "x",
		RoleID:   &role.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create inviter: %v", err)
	}
	return &user
}

func TestInvitationCreate(t *testing.T) {
	db := newTestDB(t)
	svc, notifier := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	invitation, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(invitation.Token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(invitation.Token))
	}
	if invitation.Status != models.InvitationPending {
		t.Fatalf("expected pending, got %q", invitation.Status)
	}
	if time.Until(invitation.ExpiresAt) < 6*24*time.Hour {
		t.Fatalf("expiry too soon: %v", invitation.ExpiresAt)
	}
	if notifier.inviteLinks["staff@example.com"] == "" {
		t.Fatal("expected invitation email to be sent")
	}
}

func TestInvitationCreateDuplicatePending(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	if _, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID)
	var dup *DuplicateResourceError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateResourceError, got %v", err)
	}
}

func TestInvitationCreateForExistingAccount(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	_, err := svc.Create("admin@example.com", models.RoleStaff, nil, inviter.ID)
	var dup *DuplicateResourceError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateResourceError for existing account, got %v", err)
	}
}

func TestInvitationValidateLazyExpire(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	invitation, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := db.Model(invitation).Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate invitation: %v", err)
	}

	_, err = svc.Validate(invitation.Token)
	var invalidOp *InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}

	// Status was flipped to expired on the failed validation.
	var reloaded models.Invitation
	if err := db.First(&reloaded, "id = ?", invitation.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != models.InvitationExpired {
		t.Fatalf("expected expired status, got %q", reloaded.Status)
	}
}

func TestInvitationValidateUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)

	_, err := svc.Validate("deadbeef")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestInvitationRevoke(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	invitation, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Revoke(invitation.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	_, err = svc.Validate(invitation.Token)
	var invalidOp *InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError after revoke, got %v", err)
	}
}

func TestInvitationRevokeAcceptedFails(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	invitation, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.MarkAccepted(db, invitation, uuid.New()); err != nil {
		t.Fatalf("MarkAccepted failed: %v", err)
	}

	err = svc.Revoke(invitation.ID)
	var invalidOp *InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError for accepted invitation, got %v", err)
	}
}

func TestInvitationResend(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	invitation, err := svc.Create("staff@example.com", models.RoleStaff, nil, inviter.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	oldToken := invitation.Token

	refreshed, err := svc.Resend(invitation.ID)
	if err != nil {
		t.Fatalf("Resend failed: %v", err)
	}
	if refreshed.Token == oldToken {
		t.Fatal("resend must rotate the token")
	}

	// The old token is dead.
	if _, err := svc.Validate(oldToken); err == nil {
		t.Fatal("old token should no longer validate")
	}
	if _, err := svc.Validate(refreshed.Token); err != nil {
		t.Fatalf("new token should validate: %v", err)
	}
}

func TestInvitationExpirePending(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestInvitationService(t, db)
	inviter := createInviter(t, db)

	stale, err := svc.Create("stale@example.com", models.RoleStaff, nil, inviter.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create("live@example.com", models.RoleStaff, nil, inviter.ID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := db.Model(stale).Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate invitation: %v", err)
	}

	n, err := svc.ExpirePending()
	if err != nil {
		t.Fatalf("ExpirePending failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired invitation, got %d", n)
	}
}
