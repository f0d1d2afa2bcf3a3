package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for user-correctable conditions. Handlers translate these
// into HTTP statuses; anything else is treated as an infrastructure failure
// and surfaces as a generic server error.
var (
	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrRateLimitExceeded = errors.New("too many requests, please try again later")
	ErrPasswordReused    = errors.New("new password must not match any of your recent passwords")
)

// Session verification rejections. Each carries the concrete cause; all of
// them translate to 401 at the handler layer.
var (
	ErrTokenInvalid     = errors.New("token signature invalid or expired")
	ErrTokenBlacklisted = errors.New("token has been revoked")
	ErrSessionRevoked   = errors.New("session has been revoked")
)

// DuplicateResourceError reports a username/email collision.
type DuplicateResourceError struct {
	Resource string
	Field    string
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

// NotFoundError reports a missing resource (invitation, account).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// InvalidOperationError reports an illegal state transition, e.g. revoking
// an accepted invitation.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return e.Message
}

// OtpFailureReason classifies OTP verification failures.
type OtpFailureReason string

const (
	OtpReasonInvalid  OtpFailureReason = "invalid_or_expired"
	OtpReasonExpired  OtpFailureReason = "expired"
	OtpReasonLocked   OtpFailureReason = "locked"
	OtpReasonMismatch OtpFailureReason = "mismatch"
)

// OtpError carries the typed reason for a failed OTP verification, plus the
// remaining attempts when the code is still usable.
type OtpError struct {
	Reason       OtpFailureReason
	AttemptsLeft int
}

func (e *OtpError) Error() string {
	switch e.Reason {
	case OtpReasonExpired:
		return "verification code has expired"
	case OtpReasonLocked:
		return "verification code is locked due to too many failed attempts"
	case OtpReasonMismatch:
		return fmt.Sprintf("incorrect verification code, %d attempts remaining", e.AttemptsLeft)
	default:
		return "invalid or expired verification code"
	}
}
