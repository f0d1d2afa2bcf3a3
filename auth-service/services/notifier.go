package services

import "time"

// Notifier delivers auth related emails through the notification service.
// Delivery failures are logged and never fail the triggering operation.
type Notifier interface {
	SendOtpEmail(email, code, purpose string) error
	SendPasswordChangedEmail(email, name, ipAddress string) error
	SendInvitationEmail(email, link, roleType, inviterName string, expiresAt time.Time) error
}
