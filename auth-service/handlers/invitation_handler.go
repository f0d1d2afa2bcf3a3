package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/auth-service/middleware"
	"petrosmart-backend/auth-service/services"
	"petrosmart-backend/shared/database/models"
	"petrosmart-backend/shared/utils/query"
)

type InvitationHandler struct {
	db          *gorm.DB
	invitations *services.InvitationService
	auth        *services.AuthService
}

func NewInvitationHandler(db *gorm.DB, invitations *services.InvitationService, auth *services.AuthService) *InvitationHandler {
	return &InvitationHandler{db: db, invitations: invitations, auth: auth}
}

// CreateInvitation Request struct
type CreateInvitationRequest struct {
	Email     string     `json:"email" binding:"required,email" example:"newstaff@example.com"`
	RoleType  string     `json:"role_type" binding:"required" example:"staff"`
	StationID *uuid.UUID `json:"station_id"`
}

// RegisterWithInvitation Request struct
type RegisterWithInvitationRequest struct {
	Token     string `json:"token" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

// Roles that can be granted through an invitation. Super admin is bootstrap
// only.
var invitableRoles = map[models.RoleType]bool{
	models.RoleAdmin:   true,
	models.RoleManager: true,
	models.RoleStaff:   true,
	models.RoleUser:    true,
	models.RoleGuest:   true,
}

// POST /api/invitations
// @Summary Create invitation
// @Description Invite an email address to register with a pre-assigned role
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitation body CreateInvitationRequest true "Invitation data"
// @Success 201 {object} models.Invitation "Invitation created"
// @Failure 400 {object} map[string]string "Invalid request format or role"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 409 {object} map[string]string "Account or pending invitation already exists"
// @Router /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roleType := models.RoleType(req.RoleType)
	if !invitableRoles[roleType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role type"})
		return
	}

	inviter := middleware.CurrentUser(c)
	if inviter == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	invitation, err := h.invitations.Create(req.Email, roleType, req.StationID, inviter.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

// GET /api/invitations
// @Summary List invitations
// @Description List invitations with filtering, search and pagination
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search in email"
// @Success 200 {object} map[string]interface{} "Invitations with pagination"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	params := query.ParseListParams(c)

	scope := query.Scope{
		FilterColumns: map[string]string{
			"status":    "status",
			"role_type": "role_type",
			"email":     "email",
		},
		SearchColumns: []string{"email"},
		SortColumns: map[string]string{
			"email":      "email",
			"status":     "status",
			"created_at": "created_at",
			"expires_at": "expires_at",
		},
	}

	base := scope.Apply(h.db.Model(&models.Invitation{}), params)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count invitations"})
		return
	}

	var invitations []models.Invitation
	if err := query.Paginate(base, params.Page, params.Limit).
		Preload("Inviter").
		Find(&invitations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list invitations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       invitations,
		"pagination": query.NewPagination(params.Page, params.Limit, total),
	})
}

// GET /api/invitations/:id
// @Summary Get invitation
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} models.Invitation "Invitation"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Router /invitations/{id} [get]
func (h *InvitationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return
	}

	invitation, err := h.invitations.FindByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitation)
}

// DELETE /api/invitations/:id
// @Summary Revoke invitation
// @Description Withdraw a pending invitation; accepted invitations cannot be revoked
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} map[string]string "Invitation revoked"
// @Failure 400 {object} map[string]string "Invitation already accepted or revoked"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Router /invitations/{id} [delete]
func (h *InvitationHandler) Revoke(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return
	}

	if err := h.invitations.Revoke(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
}

// POST /api/invitations/:id/resend
// @Summary Resend invitation
// @Description Refresh a pending invitation with a new token and expiry and re-send the email
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} models.Invitation "Refreshed invitation"
// @Failure 400 {object} map[string]string "Invitation is not pending"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Router /invitations/{id}/resend [post]
func (h *InvitationHandler) Resend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return
	}

	invitation, err := h.invitations.Resend(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitation)
}

// GET /api/invitations/validate/:token
// @Summary Validate invitation token
// @Description Check whether an invitation token is live; used by the registration form
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} map[string]interface{} "Invitation details"
// @Failure 400 {object} map[string]string "Invitation expired, revoked or accepted"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Router /invitations/validate/{token} [get]
func (h *InvitationHandler) ValidateToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	invitation, err := h.invitations.Validate(token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"email":      invitation.Email,
		"role_type":  invitation.RoleType,
		"station_id": invitation.StationID,
		"expires_at": invitation.ExpiresAt,
	})
}

// POST /api/auth/register/invitation
// @Summary Register with invitation
// @Description Create an account from a live invitation; the account takes the invitation's role and station
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterWithInvitationRequest true "Invitation token and registration data"
// @Success 201 {object} handlers.LoginResponse "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid invitation or validation error"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 409 {object} map[string]string "Username already exists"
// @Router /auth/register/invitation [post]
func (h *InvitationHandler) RegisterWithInvitation(c *gin.Context) {
	var req RegisterWithInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.RegisterWithInvitation(req.Token, services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, services.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		Token:     result.Token,
		ExpiresAt: time.Now().Add(h.auth.TokenExpiry()),
		User:      userInfo(result.User),
	})
}
