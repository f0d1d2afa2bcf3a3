package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditLoginSuccess           AuditAction = "login_success"
	AuditLoginFailed            AuditAction = "login_failed"
	AuditPasswordResetRequested AuditAction = "password_reset_requested"
	AuditPasswordResetFailed    AuditAction = "password_reset_failed"
	AuditPasswordResetSuccess   AuditAction = "password_reset_success"
	AuditOtpVerificationFailed  AuditAction = "otp_verification_failed"
	AuditAccountLocked          AuditAction = "account_locked"
)

// AuditLog is an append-only record of security-relevant events. Rows are
// never mutated; the only deletion path is the retention cleanup job.
type AuditLog struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     *uuid.UUID  `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Action     AuditAction `json:"action" gorm:"size:50;not null;index:idx_audit_email_action"`
	Email      string      `json:"email" gorm:"size:255;index:idx_audit_email_action"`
	IPAddress  string      `json:"ip_address" gorm:"size:45"`
	UserAgent  string      `json:"user_agent" gorm:"type:text"`
	Metadata   string      `json:"metadata,omitempty" gorm:"type:text"`
	Successful bool        `json:"successful" gorm:"default:false"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate will set ID if not set
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
