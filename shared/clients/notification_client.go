package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"petrosmart-backend/shared/config"
)

// NotificationClient handles communication with the notification service.
// Dispatch is fire-and-forget from the auth core's perspective: callers log
// send failures but never fail the state transition that triggered them.
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL: cfg.NotificationServiceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Email request structs
type OtpEmailRequest struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

type PasswordChangedEmailRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
}

type InvitationEmailRequest struct {
	Email          string `json:"email"`
	InvitationLink string `json:"invitation_link"`
	RoleType       string `json:"role_type"`
	InviterName    string `json:"inviter_name"`
	ExpiresAt      string `json:"expires_at"`
}

// SendOtpEmail delivers a one-time passcode
func (nc *NotificationClient) SendOtpEmail(email, code, purpose string) error {
	return nc.post("/api/notifications/email/otp", OtpEmailRequest{
		Email:   email,
		Code:    code,
		Purpose: purpose,
	})
}

// SendPasswordChangedEmail notifies an account that its password changed
func (nc *NotificationClient) SendPasswordChangedEmail(email, name, ipAddress string) error {
	return nc.post("/api/notifications/email/password-changed", PasswordChangedEmailRequest{
		Email:     email,
		Name:      name,
		IPAddress: ipAddress,
	})
}

// SendInvitationEmail delivers an invitation link
func (nc *NotificationClient) SendInvitationEmail(email, link, roleType, inviterName string, expiresAt time.Time) error {
	return nc.post("/api/notifications/email/invitation", InvitationEmailRequest{
		Email:          email,
		InvitationLink: link,
		RoleType:       roleType,
		InviterName:    inviterName,
		ExpiresAt:      expiresAt.Format(time.RFC3339),
	})
}

func (nc *NotificationClient) post(path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	resp, err := nc.httpClient.Post(
		fmt.Sprintf("%s%s", nc.baseURL, path),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("notification service returned status: %d", resp.StatusCode)
	}

	return nil
}
