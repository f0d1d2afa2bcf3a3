package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/shared/database/models"
	"petrosmart-backend/shared/database/models/auth"
	utils "petrosmart-backend/shared/utils/auth"
)

// AuthService orchestrates registration, login, password recovery and
// session verification on top of the focused auth services.
type AuthService struct {
	db               *gorm.DB
	tokens           *utils.TokenManager
	otp              *OtpService
	history          *PasswordHistoryService
	audit            *AuditLogService
	blacklist        *TokenBlacklistService
	invitations      *InvitationService
	notifier         Notifier
	resetMaxPerUser  int
	resetWindow      time.Duration
	loginMaxFailures int
	loginWindow      time.Duration
}

// AuthServiceDeps lists the collaborators AuthService is wired with.
type AuthServiceDeps struct {
	DB               *gorm.DB
	Tokens           *utils.TokenManager
	Otp              *OtpService
	History          *PasswordHistoryService
	Audit            *AuditLogService
	Blacklist        *TokenBlacklistService
	Invitations      *InvitationService
	Notifier         Notifier
	ResetMaxPerUser  int
	ResetWindow      time.Duration
	LoginMaxFailures int
	LoginWindow      time.Duration
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	if deps.ResetMaxPerUser <= 0 {
		deps.ResetMaxPerUser = 3
	}
	if deps.ResetWindow <= 0 {
		deps.ResetWindow = 24 * time.Hour
	}
	if deps.LoginMaxFailures <= 0 {
		deps.LoginMaxFailures = 10
	}
	if deps.LoginWindow <= 0 {
		deps.LoginWindow = 15 * time.Minute
	}
	return &AuthService{
		db:               deps.DB,
		tokens:           deps.Tokens,
		otp:              deps.Otp,
		history:          deps.History,
		audit:            deps.Audit,
		blacklist:        deps.Blacklist,
		invitations:      deps.Invitations,
		notifier:         deps.Notifier,
		resetMaxPerUser:  deps.ResetMaxPerUser,
		resetWindow:      deps.ResetWindow,
		loginMaxFailures: deps.LoginMaxFailures,
		loginWindow:      deps.LoginWindow,
	}
}

// TokenExpiry returns the configured session token lifetime.
func (s *AuthService) TokenExpiry() time.Duration {
	return s.tokens.Expiry()
}

// RegisterInput is the account data collected at registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// RequestContext carries the client network context recorded on audit rows.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// AuthResult is a signed-in account plus its session token.
type AuthResult struct {
	User  *models.User
	Token string
}

func (s *AuthService) validateRegistration(input RegisterInput) error {
	if err := utils.ValidateRequired(input.Username, "username"); err != nil {
		return &InvalidOperationError{Message: err.Error()}
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return &InvalidOperationError{Message: err.Error()}
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return &InvalidOperationError{Message: err.Error()}
	}
	return nil
}

func (s *AuthService) checkDuplicates(tx *gorm.DB, username, email string) error {
	var existing models.User
	if err := tx.Where("username = ?", username).First(&existing).Error; err == nil {
		return &DuplicateResourceError{Resource: "user", Field: "username"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := tx.Where("email = ?", email).First(&existing).Error; err == nil {
		return &DuplicateResourceError{Resource: "user", Field: "email"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func (s *AuthService) roleByName(tx *gorm.DB, name models.RoleType) (*models.Role, error) {
	var role models.Role
	if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "role"}
		}
		return nil, err
	}
	return &role, nil
}

func (s *AuthService) createUser(tx *gorm.DB, input RegisterInput, role *models.Role, stationID *uuid.UUID, emailVerified bool) (*models.User, error) {
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:      input.Username,
		Email:         input.Email,
		Password:      hashed,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Phone:         input.Phone,
		EmailVerified: emailVerified,
		RoleID:        &role.ID,
		StationID:     stationID,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	user.Role = *role

	return &user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	return s.tokens.Generate(user.ID, user.Username, string(user.Role.Name))
}

// Register creates an account directly with the default role and signs it
// in. Email stays unverified; the OTP flow is the verified path.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if err := s.validateRegistration(input); err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(s.db, input.Username, input.Email); err != nil {
		return nil, err
	}

	role, err := s.roleByName(s.db, models.RoleUser)
	if err != nil {
		return nil, err
	}

	user, err := s.createUser(s.db, input, role, nil, false)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// RegisterInit starts OTP-gated registration: it validates the submitted
// data, supersedes any earlier codes for the email, and mails a fresh one.
// No account exists until the code is verified.
func (s *AuthService) RegisterInit(input RegisterInput) error {
	if err := s.validateRegistration(input); err != nil {
		return err
	}
	if err := s.checkDuplicates(s.db, input.Username, input.Email); err != nil {
		return err
	}

	if err := s.otp.InvalidateActive(input.Email, auth.OtpRegistration); err != nil {
		return err
	}

	code, err := s.otp.Issue(input.Email, auth.OtpRegistration, nil)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendOtpEmail(input.Email, code, string(auth.OtpRegistration)); err != nil {
			log.Printf("⚠️ OTP email to %s failed: %v", input.Email, err)
		}
	}

	return nil
}

// CompleteOtpRegistration verifies the emailed code and creates the
// account. Duplicate checks run again inside the transaction since another
// registration may have landed between init and completion.
func (s *AuthService) CompleteOtpRegistration(input RegisterInput, code string, reqCtx RequestContext) (*AuthResult, error) {
	if err := s.validateRegistration(input); err != nil {
		return nil, err
	}

	result, err := s.otp.Verify(input.Email, code, auth.OtpRegistration)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		s.recordOtpFailure(input.Email, result, reqCtx)
		return nil, &OtpError{Reason: result.Reason, AttemptsLeft: result.AttemptsLeft}
	}

	var user *models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkDuplicates(tx, input.Username, input.Email); err != nil {
			return err
		}

		role, err := s.roleByName(tx, models.RoleUser)
		if err != nil {
			return err
		}

		user, err = s.createUser(tx, input, role, nil, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) recordOtpFailure(email string, result VerifyResult, reqCtx RequestContext) {
	action := auth.AuditOtpVerificationFailed
	if result.Reason == OtpReasonLocked {
		action = auth.AuditAccountLocked
	}

	if err := s.audit.Record(AuditEntry{
		Email:      email,
		Action:     action,
		IPAddress:  reqCtx.IPAddress,
		UserAgent:  reqCtx.UserAgent,
		Successful: false,
		Metadata:   map[string]interface{}{"reason": string(result.Reason)},
	}); err != nil {
		log.Printf("⚠️ Audit write failed: %v", err)
	}
}

// Login authenticates by username or email. Unknown account and wrong
// password are indistinguishable to the caller; both are audited. An
// account with too many recent failed attempts is refused outright until
// the window rolls over, counted from the audit log.
func (s *AuthService) Login(identifier, password string, reqCtx RequestContext) (*AuthResult, error) {
	var user models.User
	err := s.db.Preload("Role").
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordLogin(nil, identifier, false, "unknown_account", reqCtx)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	failures, err := s.audit.CountRecentFailed(user.Email, auth.AuditLoginFailed, s.loginWindow)
	if err != nil {
		return nil, err
	}
	if failures >= int64(s.loginMaxFailures) {
		s.recordLogin(&user.ID, user.Email, false, "rate_limited", reqCtx)
		return nil, ErrRateLimitExceeded
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		s.recordLogin(&user.ID, user.Email, false, "wrong_password", reqCtx)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, err
	}

	s.recordLogin(&user.ID, user.Email, true, "", reqCtx)

	return &AuthResult{User: &user, Token: token}, nil
}

func (s *AuthService) recordLogin(userID *uuid.UUID, email string, success bool, reason string, reqCtx RequestContext) {
	action := auth.AuditLoginFailed
	if success {
		action = auth.AuditLoginSuccess
	}

	var metadata map[string]interface{}
	if reason != "" {
		metadata = map[string]interface{}{"reason": reason}
	}

	if err := s.audit.Record(AuditEntry{
		UserID:     userID,
		Email:      email,
		Action:     action,
		IPAddress:  reqCtx.IPAddress,
		UserAgent:  reqCtx.UserAgent,
		Successful: success,
		Metadata:   metadata,
	}); err != nil {
		log.Printf("⚠️ Audit write failed: %v", err)
	}
}

// GoogleProfile is the identity asserted by a verified Google sign-in.
type GoogleProfile struct {
	GoogleID  string
	Email     string
	FirstName string
	LastName  string
}

// GoogleLogin signs in a federated identity. An existing account matching
// the Google ID is used as-is; an account matching only the email gets the
// Google ID linked; otherwise a fresh account is provisioned with an
// unusable random password.
func (s *AuthService) GoogleLogin(profile GoogleProfile, reqCtx RequestContext) (*AuthResult, error) {
	var user models.User
	err := s.db.Preload("Role").Where("google_id = ?", profile.GoogleID).First(&user).Error
	if err == nil {
		return s.finishGoogleLogin(&user, reqCtx)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = s.db.Preload("Role").Where("email = ?", profile.Email).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"google_id":      profile.GoogleID,
			"email_verified": true,
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		user.GoogleID = &profile.GoogleID
		user.EmailVerified = true
		return s.finishGoogleLogin(&user, reqCtx)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No account yet. The random password can never be used for a
	// password login; Google remains the only way in.
	password, err := utils.GenerateRandomToken(32)
	if err != nil {
		return nil, err
	}

	role, err := s.roleByName(s.db, models.RoleUser)
	if err != nil {
		return nil, err
	}

	created, err := s.createUser(s.db, RegisterInput{
		Username:  profile.Email,
		Email:     profile.Email,
		Password:  password,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}, role, nil, true)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(created).Update("google_id", profile.GoogleID).Error; err != nil {
		return nil, err
	}
	created.GoogleID = &profile.GoogleID

	return s.finishGoogleLogin(created, reqCtx)
}

func (s *AuthService) finishGoogleLogin(user *models.User, reqCtx RequestContext) (*AuthResult, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.recordLogin(&user.ID, user.Email, true, "google", reqCtx)
	return &AuthResult{User: user, Token: token}, nil
}

// ForgotPassword mails a password reset code. The response is identical
// whether or not the email has an account, so the endpoint cannot be used
// to enumerate users. Requests beyond the rolling window cap are refused.
func (s *AuthService) ForgotPassword(email string, reqCtx RequestContext) error {
	if err := utils.ValidateEmail(email); err != nil {
		return &InvalidOperationError{Message: err.Error()}
	}

	count, err := s.audit.CountResetRequests(email, s.resetWindow)
	if err != nil {
		return err
	}
	if count >= int64(s.resetMaxPerUser) {
		s.recordResetEvent(nil, email, auth.AuditPasswordResetRequested, false, "rate_limited", reqCtx)
		return ErrRateLimitExceeded
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown email: audit internally, answer exactly like the
			// known-email path.
			s.recordResetEvent(nil, email, auth.AuditPasswordResetRequested, false, "unknown_email", reqCtx)
			return nil
		}
		return err
	}

	if err := s.otp.InvalidateActive(email, auth.OtpPasswordReset); err != nil {
		return err
	}

	code, err := s.otp.Issue(email, auth.OtpPasswordReset, &user.ID)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendOtpEmail(email, code, string(auth.OtpPasswordReset)); err != nil {
			log.Printf("⚠️ Password reset email to %s failed: %v", email, err)
		}
	}

	s.recordResetEvent(&user.ID, email, auth.AuditPasswordResetRequested, true, "", reqCtx)

	return nil
}

func (s *AuthService) recordResetEvent(userID *uuid.UUID, email string, action auth.AuditAction, success bool, reason string, reqCtx RequestContext) {
	var metadata map[string]interface{}
	if reason != "" {
		metadata = map[string]interface{}{"reason": reason}
	}

	if err := s.audit.Record(AuditEntry{
		UserID:     userID,
		Email:      email,
		Action:     action,
		IPAddress:  reqCtx.IPAddress,
		UserAgent:  reqCtx.UserAgent,
		Successful: success,
		Metadata:   metadata,
	}); err != nil {
		log.Printf("⚠️ Audit write failed: %v", err)
	}
}

// ResetPassword finishes a password reset: verifies the emailed code,
// rejects recently used passwords, swaps the hash, and revokes every
// session the account holds.
func (s *AuthService) ResetPassword(email, code, newPassword string, reqCtx RequestContext) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return &InvalidOperationError{Message: err.Error()}
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordResetEvent(nil, email, auth.AuditPasswordResetFailed, false, "unknown_email", reqCtx)
			return &OtpError{Reason: OtpReasonInvalid}
		}
		return err
	}

	result, err := s.otp.Verify(email, code, auth.OtpPasswordReset)
	if err != nil {
		return err
	}
	if !result.Success {
		action := auth.AuditPasswordResetFailed
		if result.Reason == OtpReasonLocked {
			action = auth.AuditAccountLocked
		}
		s.recordResetEvent(&user.ID, email, action, false, string(result.Reason), reqCtx)
		return &OtpError{Reason: result.Reason, AttemptsLeft: result.AttemptsLeft}
	}

	return s.applyPasswordChange(&user, newPassword, auth.AuditPasswordResetSuccess, reqCtx)
}

// ChangePassword updates the password of a signed-in account after
// re-checking the current one. Sessions are revoked like a reset.
func (s *AuthService) ChangePassword(userID uuid.UUID, currentPassword, newPassword string, reqCtx RequestContext) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return &InvalidOperationError{Message: err.Error()}
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return err
	}

	if !utils.CheckPasswordHash(currentPassword, user.Password) {
		return ErrInvalidCredentials
	}

	return s.applyPasswordChange(&user, newPassword, auth.AuditPasswordResetSuccess, reqCtx)
}

// applyPasswordChange is the shared tail of reset and change: reuse check,
// hash swap, history record of the hash being replaced, session revocation
// floor, notification, audit.
func (s *AuthService) applyPasswordChange(user *models.User, newPassword string, action auth.AuditAction, reqCtx RequestContext) error {
	reused, err := s.history.IsReused(user.ID, newPassword)
	if err != nil {
		return err
	}
	if !reused && utils.CheckPasswordHash(newPassword, user.Password) {
		reused = true
	}
	if reused {
		s.recordResetEvent(&user.ID, user.Email, auth.AuditPasswordResetFailed, false, "password_reused", reqCtx)
		return ErrPasswordReused
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	oldHash := user.Password
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.history.WithTx(tx).Record(user.ID, oldHash); err != nil {
			return err
		}
		return tx.Model(user).Update("password", newHash).Error
	})
	if err != nil {
		return err
	}
	user.Password = newHash

	if err := s.blacklist.BlacklistUserTokens(user.ID); err != nil {
		log.Printf("⚠️ Session revocation for user %s failed: %v", user.ID, err)
	}

	if s.notifier != nil {
		name := user.FirstName + " " + user.LastName
		if err := s.notifier.SendPasswordChangedEmail(user.Email, name, reqCtx.IPAddress); err != nil {
			log.Printf("⚠️ Password changed email to %s failed: %v", user.Email, err)
		}
	}

	s.recordResetEvent(&user.ID, user.Email, action, true, "", reqCtx)

	return nil
}

// RegisterWithInvitation creates an account from a live invitation. The
// account takes the invitation's role and station, and the invitation is
// consumed in the same transaction as the account creation.
func (s *AuthService) RegisterWithInvitation(token string, input RegisterInput, reqCtx RequestContext) (*AuthResult, error) {
	invitation, err := s.invitations.Validate(token)
	if err != nil {
		return nil, err
	}

	input.Email = invitation.Email
	if err := s.validateRegistration(input); err != nil {
		return nil, err
	}

	var user *models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkDuplicates(tx, input.Username, input.Email); err != nil {
			return err
		}

		role, err := s.roleByName(tx, invitation.RoleType)
		if err != nil {
			return err
		}

		user, err = s.createUser(tx, input, role, invitation.StationID, true)
		if err != nil {
			return err
		}

		return s.invitations.MarkAccepted(tx, invitation, user.ID)
	})
	if err != nil {
		return nil, err
	}

	authToken, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: authToken}, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *AuthService) Logout(tokenString string) error {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		// An invalid token holds no session to revoke.
		return nil
	}
	return s.blacklist.BlacklistToken(tokenString, claims.ExpiresAt.Time)
}

// ValidateSession verifies a session token end to end: signature and
// expiry, per-token blacklist, the account revocation floor, and finally
// that the account still exists. Each rejection carries its cause as a
// distinct sentinel; handlers collapse them to 401.
func (s *AuthService) ValidateSession(tokenString string) (*models.User, *utils.Claims, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}

	revoked, err := s.blacklist.IsTokenBlacklisted(tokenString)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenBlacklisted
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}

	if claims.IssuedAt != nil {
		floored, err := s.blacklist.AreUserTokensBlacklisted(userID, claims.IssuedAt.Time)
		if err != nil {
			return nil, nil, err
		}
		if floored {
			return nil, nil, ErrSessionRevoked
		}
	}

	var user models.User
	if err := s.db.Preload("Role").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionRevoked
		}
		return nil, nil, err
	}

	return &user, claims, nil
}
