package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OtpPurpose string

const (
	OtpRegistration  OtpPurpose = "registration"
	OtpPasswordReset OtpPurpose = "password_reset"
)

// Otp is a single-use 6-digit code bound to (email, purpose). A code locks
// after too many failed verification attempts and stays locked until it
// expires or is superseded.
type Otp struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string     `json:"-" gorm:"size:10;not null"`
	Purpose   OtpPurpose `json:"purpose" gorm:"size:50;not null;index:idx_otps_email_purpose"`
	Email     string     `json:"email" gorm:"size:255;not null;index:idx_otps_email_purpose"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	IsUsed    bool       `json:"is_used" gorm:"default:false"`
	Attempts  int        `json:"attempts" gorm:"default:0"`
	IsLocked  bool       `json:"is_locked" gorm:"default:false"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate will set ID if not set
func (o *Otp) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
