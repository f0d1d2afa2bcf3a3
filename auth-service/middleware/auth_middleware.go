package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petrosmart-backend/auth-service/services"
	"petrosmart-backend/shared/database/models"
	"petrosmart-backend/shared/utils/permission"
)

// AuthMiddleware validates the bearer token through the full session check
// (signature, expiry, blacklist, revocation floor) and puts the account in
// the request context.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractBearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		user, claims, err := authService.ValidateSession(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("claims", claims)
		c.Set("token", tokenString)

		c.Next()
	}
}

// RequirePermission gates a route on a type-level capability check. It must
// run after AuthMiddleware.
func RequirePermission(action permission.Action, subject permission.Subject) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if !permission.Can(user, action, subject, nil) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated account set by AuthMiddleware, or
// nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// ExtractBearerToken returns the raw token from the Authorization header,
// or "" when the header is missing or malformed.
func ExtractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
