package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petrosmart-backend/auth-service/services"
)

// respondError translates service-level errors into HTTP statuses. Typed
// errors are user-correctable; everything else is a server failure and the
// detail stays out of the response.
func respondError(c *gin.Context, err error) {
	var dup *services.DuplicateResourceError
	var notFound *services.NotFoundError
	var invalidOp *services.InvalidOperationError
	var otpErr *services.OtpError

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSessionRevoked),
		errors.Is(err, services.ErrTokenInvalid),
		errors.Is(err, services.ErrTokenBlacklisted):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPasswordReused):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalidOp):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &otpErr):
		status := http.StatusBadRequest
		if otpErr.Reason == services.OtpReasonLocked {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{
			"error":  otpErr.Error(),
			"reason": string(otpErr.Reason),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
