package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation is a single-use registration credential. Tokens are 32 random
// bytes hex-encoded; accepted and revoked are terminal states.
type Invitation struct {
	ID         uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Token      string           `json:"token" gorm:"size:255;uniqueIndex;not null"`
	Email      string           `json:"email" gorm:"size:255;not null;index"`
	RoleType   RoleType         `json:"role_type" gorm:"size:50;not null"`
	Status     InvitationStatus `json:"status" gorm:"size:20;default:'pending';index"`
	StationID  *uuid.UUID       `json:"station_id" gorm:"type:uuid"`
	ExpiresAt  time.Time        `json:"expires_at" gorm:"not null"`
	InvitedBy  uuid.UUID        `json:"invited_by" gorm:"type:uuid;not null"`
	AcceptedAt *time.Time       `json:"accepted_at"`
	AcceptedBy *uuid.UUID       `json:"accepted_by" gorm:"type:uuid"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Relations
	Inviter User `json:"inviter" gorm:"foreignKey:InvitedBy"`
}

// BeforeCreate will set ID if not set
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
