package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/shared/database/models"
	utils "petrosmart-backend/shared/utils/auth"
)

const invitationTokenBytes = 32

// InvitationService manages single-use registration invitations carrying a
// pre-assigned role and optional station.
type InvitationService struct {
	db          *gorm.DB
	notifier    Notifier
	expiry      time.Duration
	frontendURL string
}

func NewInvitationService(db *gorm.DB, notifier Notifier, expiry time.Duration, frontendURL string) *InvitationService {
	return &InvitationService{
		db:          db,
		notifier:    notifier,
		expiry:      expiry,
		frontendURL: frontendURL,
	}
}

// Create issues an invitation for an email that has neither an account nor a
// live pending invitation. The invite email is sent best-effort.
func (s *InvitationService) Create(email string, roleType models.RoleType, stationID *uuid.UUID, invitedBy uuid.UUID) (*models.Invitation, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, &InvalidOperationError{Message: err.Error()}
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		return nil, &DuplicateResourceError{Resource: "user", Field: "email"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var pending models.Invitation
	err := s.db.Where("email = ? AND status = ? AND expires_at > ?",
		email, models.InvitationPending, time.Now()).First(&pending).Error
	if err == nil {
		return nil, &DuplicateResourceError{Resource: "invitation", Field: "email"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := utils.GenerateRandomToken(invitationTokenBytes)
	if err != nil {
		return nil, err
	}

	invitation := models.Invitation{
		Token:     token,
		Email:     email,
		RoleType:  roleType,
		Status:    models.InvitationPending,
		StationID: stationID,
		ExpiresAt: time.Now().Add(s.expiry),
		InvitedBy: invitedBy,
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}

	s.sendInviteEmail(&invitation)

	return &invitation, nil
}

// Validate checks that a token belongs to a live invitation. Pending
// invitations past their expiry are flipped to expired on the spot.
func (s *InvitationService) Validate(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.Where("token = ?", token).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "invitation"}
		}
		return nil, err
	}

	switch invitation.Status {
	case models.InvitationAccepted:
		return nil, &InvalidOperationError{Message: "invitation has already been accepted"}
	case models.InvitationRevoked:
		return nil, &InvalidOperationError{Message: "invitation has been revoked"}
	case models.InvitationExpired:
		return nil, &InvalidOperationError{Message: "invitation has expired"}
	}

	if time.Now().After(invitation.ExpiresAt) {
		s.db.Model(&invitation).Update("status", models.InvitationExpired)
		return nil, &InvalidOperationError{Message: "invitation has expired"}
	}

	return &invitation, nil
}

// MarkAccepted records the accepting account on the invitation within the
// caller's transaction.
func (s *InvitationService) MarkAccepted(tx *gorm.DB, invitation *models.Invitation, userID uuid.UUID) error {
	now := time.Now()
	return tx.Model(invitation).Updates(map[string]interface{}{
		"status":      models.InvitationAccepted,
		"accepted_at": now,
		"accepted_by": userID,
	}).Error
}

// Revoke withdraws a pending or expired invitation. Accepted invitations
// stay accepted.
func (s *InvitationService) Revoke(id uuid.UUID) error {
	var invitation models.Invitation
	if err := s.db.First(&invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "invitation"}
		}
		return err
	}

	if invitation.Status == models.InvitationAccepted {
		return &InvalidOperationError{Message: "accepted invitations cannot be revoked"}
	}
	if invitation.Status == models.InvitationRevoked {
		return &InvalidOperationError{Message: "invitation is already revoked"}
	}

	return s.db.Model(&invitation).Update("status", models.InvitationRevoked).Error
}

// Resend refreshes a pending invitation with a new token and expiry and
// re-sends the invite email.
func (s *InvitationService) Resend(id uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.Preload("Inviter").First(&invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "invitation"}
		}
		return nil, err
	}

	if invitation.Status != models.InvitationPending {
		return nil, &InvalidOperationError{Message: "only pending invitations can be resent"}
	}

	token, err := utils.GenerateRandomToken(invitationTokenBytes)
	if err != nil {
		return nil, err
	}

	invitation.Token = token
	invitation.ExpiresAt = time.Now().Add(s.expiry)
	if err := s.db.Save(&invitation).Error; err != nil {
		return nil, err
	}

	s.sendInviteEmail(&invitation)

	return &invitation, nil
}

// FindByID returns a single invitation with its inviter loaded.
func (s *InvitationService) FindByID(id uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.Preload("Inviter").First(&invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "invitation"}
		}
		return nil, err
	}
	return &invitation, nil
}

// ExpirePending flips pending invitations past their expiry to expired and
// returns the number updated.
func (s *InvitationService) ExpirePending() (int64, error) {
	result := s.db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, time.Now()).
		Update("status", models.InvitationExpired)
	return result.RowsAffected, result.Error
}

func (s *InvitationService) sendInviteEmail(invitation *models.Invitation) {
	if s.notifier == nil {
		return
	}

	inviterName := "Petrosmart"
	if invitation.Inviter.ID != uuid.Nil {
		inviterName = invitation.Inviter.FirstName + " " + invitation.Inviter.LastName
	} else {
		var inviter models.User
		if err := s.db.First(&inviter, "id = ?", invitation.InvitedBy).Error; err == nil {
			inviterName = inviter.FirstName + " " + inviter.LastName
		}
	}

	link := fmt.Sprintf("%s/register/invite?token=%s", s.frontendURL, invitation.Token)
	if err := s.notifier.SendInvitationEmail(invitation.Email, link, string(invitation.RoleType), inviterName, invitation.ExpiresAt); err != nil {
		log.Printf("⚠️ Invitation email to %s failed: %v", invitation.Email, err)
	}
}
