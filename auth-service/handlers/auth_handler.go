package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petrosmart-backend/auth-service/middleware"
	"petrosmart-backend/auth-service/services"
	"petrosmart-backend/shared/database/models"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login Request/Response structs
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"jdoe"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	User      UserInfo  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserInfo struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	RoleName      string     `json:"role_name"`
	StationID     *uuid.UUID `json:"station_id,omitempty"`
	EmailVerified bool       `json:"email_verified"`
}

// Register Request struct
type RegisterRequest struct {
	Username  string `json:"username" binding:"required" example:"jdoe"`
	Email     string `json:"email" binding:"required,email" example:"user@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"securepassword123"`
	FirstName string `json:"first_name" binding:"required" example:"John"`
	LastName  string `json:"last_name" binding:"required" example:"Doe"`
	Phone     string `json:"phone" example:"+905551112233"`
}

// VerifyRegistration Request struct
type VerifyRegistrationRequest struct {
	RegisterRequest
	Code string `json:"code" binding:"required" example:"123456"`
}

// GoogleLogin Request struct
type GoogleLoginRequest struct {
	GoogleID  string `json:"google_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate Request/Response structs
type ValidateRequest struct {
	Token string `json:"token" binding:"required"`
}

type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	RoleName  string    `json:"role_name,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (h *AuthHandler) requestContext(c *gin.Context) services.RequestContext {
	return services.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

func (h *AuthHandler) registerInput(req RegisterRequest) services.RegisterInput {
	return services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
}

func (h *AuthHandler) authResponse(result *services.AuthResult) LoginResponse {
	return LoginResponse{
		Token:     result.Token,
		ExpiresAt: time.Now().Add(h.auth.TokenExpiry()),
		User:      userInfo(result.User),
	}
}

func userInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		RoleName:      string(user.Role.Name),
		StationID:     user.StationID,
		EmailVerified: user.EmailVerified,
	}
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate by username or email and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Login(req.Username, req.Password, h.requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.authResponse(result))
}

// POST /api/auth/register
// @Summary Register new user
// @Description Create an account directly and sign it in
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "User registration data"
// @Success 201 {object} handlers.LoginResponse "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid request format or validation error"
// @Failure 409 {object} map[string]string "Username or email already exists"
// @Failure 429 {object} map[string]string "Too many registration attempts"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Register(h.registerInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.authResponse(result))
}

// POST /api/auth/register/init
// @Summary Start verified registration
// @Description Validate registration data and email a verification code; no account is created yet
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "User registration data"
// @Success 200 {object} map[string]string "Verification code sent"
// @Failure 400 {object} map[string]string "Invalid request format or validation error"
// @Failure 409 {object} map[string]string "Username or email already exists"
// @Router /auth/register/init [post]
func (h *AuthHandler) RegisterInit(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.RegisterInit(h.registerInput(req)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent. Please check your email."})
}

// POST /api/auth/register/verify
// @Summary Complete verified registration
// @Description Verify the emailed code and create the account with a verified email
// @Tags auth
// @Accept json
// @Produce json
// @Param register body VerifyRegistrationRequest true "Registration data with verification code"
// @Success 201 {object} handlers.LoginResponse "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid or expired verification code"
// @Failure 409 {object} map[string]string "Username or email already exists"
// @Failure 429 {object} map[string]string "Verification code locked"
// @Router /auth/register/verify [post]
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req VerifyRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.CompleteOtpRegistration(h.registerInput(req.RegisterRequest), req.Code, h.requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.authResponse(result))
}

// POST /api/auth/google
// @Summary Google sign-in
// @Description Sign in with a verified Google identity, linking or provisioning an account as needed
// @Tags auth
// @Accept json
// @Produce json
// @Param profile body GoogleLoginRequest true "Verified Google profile"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.GoogleLogin(services.GoogleProfile{
		GoogleID:  req.GoogleID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, h.requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.authResponse(result))
}

// POST /api/auth/logout
// @Summary User logout
// @Description Revoke the presented session token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out successfully"
// @Failure 400 {object} map[string]string "Token required"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString := middleware.ExtractBearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}

	if err := h.auth.Logout(tokenString); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// POST /api/auth/validate
// @Summary Validate session token
// @Description Check a session token against signature, expiry and revocation state
// @Tags auth
// @Accept json
// @Produce json
// @Param validate body ValidateRequest true "Session token to validate"
// @Success 200 {object} handlers.ValidateResponse "Token validation result"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /auth/validate [post]
func (h *AuthHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, claims, err := h.auth.ValidateSession(req.Token)
	if err != nil {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:     true,
		UserID:    user.ID,
		Username:  user.Username,
		RoleName:  string(user.Role.Name),
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// GET /api/auth/me
// @Summary Current account
// @Description Return the authenticated account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.UserInfo "Authenticated account"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, userInfo(user))
}
