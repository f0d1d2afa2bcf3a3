// Package docs Petrosmart API documentation
package docs

// Swagger documentation info
// @title Petrosmart Auth API
// @version 1.0
// @description Authentication and authorization service for the Petrosmart fuel station platform

// @contact.name API Support
// @contact.email support@petrosmart.com

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// @tag.name auth
// @tag.description Registration, login and session management

// @tag.name invitations
// @tag.description Invitation-based onboarding

// @tag.name audit
// @tag.description Security event history
