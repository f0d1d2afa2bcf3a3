package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petrosmart-backend/auth-service/middleware"
)

// ForgotPassword Request struct
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"user@example.com"`
}

// ResetPassword Request struct
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email" example:"user@example.com"`
	Code        string `json:"code" binding:"required" example:"123456"`
	NewPassword string `json:"new_password" binding:"required,min=8" example:"newsecurepass1"`
}

// ChangePassword Request struct
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// POST /api/auth/forgot-password
// @Summary Request password reset
// @Description Email a password reset code. The response does not reveal whether the email has an account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]string "Reset code sent if the account exists"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 429 {object} map[string]string "Too many reset requests"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ForgotPassword(req.Email, h.requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists for this email, a reset code has been sent.",
	})
}

// POST /api/auth/reset-password
// @Summary Reset password
// @Description Verify the emailed code and set a new password. All existing sessions are revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} map[string]string "Password reset successfully"
// @Failure 400 {object} map[string]string "Invalid code, reused password or validation error"
// @Failure 429 {object} map[string]string "Verification code locked"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ResetPassword(req.Email, req.Code, req.NewPassword, h.requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. Please log in again."})
}

// POST /api/auth/change-password
// @Summary Change password
// @Description Change the password of the signed-in account. All existing sessions are revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string "Password changed successfully"
// @Failure 400 {object} map[string]string "Reused password or validation error"
// @Failure 401 {object} map[string]string "Wrong current password"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.auth.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword, h.requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully. Please log in again."})
}
