package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/shared/database/models/auth"
	utils "petrosmart-backend/shared/utils/auth"
)

const otpCodeLength = 6

// OtpConfig bundles the tunables for OTP issuance and verification.
type OtpConfig struct {
	Expiry      time.Duration
	MaxAttempts int
}

// DefaultOtpConfig returns the production defaults (10 minute expiry, lock
// after 5 failed attempts).
func DefaultOtpConfig() OtpConfig {
	return OtpConfig{
		Expiry:      10 * time.Minute,
		MaxAttempts: 5,
	}
}

// OtpService issues and verifies single-use numeric codes bound to
// (email, purpose).
type OtpService struct {
	db  *gorm.DB
	cfg OtpConfig
}

// NewOtpService creates an OtpService with explicit configuration
func NewOtpService(db *gorm.DB, cfg OtpConfig) *OtpService {
	return &OtpService{db: db, cfg: cfg}
}

// VerifyResult is the typed outcome of an OTP verification. Failure is an
// expected user-facing condition, not an error.
type VerifyResult struct {
	Success      bool
	Reason       OtpFailureReason
	AttemptsLeft int
}

// Issue generates a uniformly random 6-digit code (leading zeros
// preserved), persists it, and returns the plaintext for delivery.
func (s *OtpService) Issue(email string, purpose auth.OtpPurpose, userID *uuid.UUID) (string, error) {
	code, err := utils.GenerateNumericCode(otpCodeLength)
	if err != nil {
		return "", err
	}

	otp := auth.Otp{
		Code:      code,
		Purpose:   purpose,
		Email:     email,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.Expiry),
	}

	if err := s.db.Create(&otp).Error; err != nil {
		return "", err
	}

	return code, nil
}

// InvalidateActive marks all unused codes for (email, purpose) as used so
// at most one issued code is exploitable at a time.
func (s *OtpService) InvalidateActive(email string, purpose auth.OtpPurpose) error {
	return s.db.Model(&auth.Otp{}).
		Where("email = ? AND purpose = ? AND is_used = ?", email, purpose, false).
		Update("is_used", true).Error
}

// Verify checks a submitted code against the most recently issued unused
// code for (email, purpose). The newest code is authoritative when several
// exist. Expiry is a wall-clock check and takes precedence over lock state.
func (s *OtpService) Verify(email, code string, purpose auth.OtpPurpose) (VerifyResult, error) {
	var otp auth.Otp
	err := s.db.
		Where("email = ? AND purpose = ? AND is_used = ?", email, purpose, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return VerifyResult{Reason: OtpReasonInvalid}, nil
		}
		return VerifyResult{}, err
	}

	if time.Now().After(otp.ExpiresAt) {
		return VerifyResult{Reason: OtpReasonExpired}, nil
	}

	if otp.IsLocked {
		return VerifyResult{Reason: OtpReasonLocked}, nil
	}

	if otp.Code != code {
		otp.Attempts++
		updates := map[string]interface{}{"attempts": otp.Attempts}
		if otp.Attempts >= s.cfg.MaxAttempts {
			otp.IsLocked = true
			updates["is_locked"] = true
		}
		if err := s.db.Model(&otp).Updates(updates).Error; err != nil {
			return VerifyResult{}, err
		}

		if otp.IsLocked {
			return VerifyResult{Reason: OtpReasonLocked}, nil
		}
		return VerifyResult{
			Reason:       OtpReasonMismatch,
			AttemptsLeft: s.cfg.MaxAttempts - otp.Attempts,
		}, nil
	}

	// Single use: burn the code on success.
	if err := s.db.Model(&otp).Update("is_used", true).Error; err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{Success: true}, nil
}

// CleanupExpired deletes codes past their expiry. Meant for a periodic
// janitor, not the request path.
func (s *OtpService) CleanupExpired() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&auth.Otp{}).Error
}
