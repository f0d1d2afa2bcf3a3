package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"petrosmart-backend/auth-service/middleware"
	"petrosmart-backend/auth-service/services"
	"petrosmart-backend/shared/database/models/auth"
	"petrosmart-backend/shared/utils/query"
)

type AuditHandler struct {
	db    *gorm.DB
	audit *services.AuditLogService
}

func NewAuditHandler(db *gorm.DB, audit *services.AuditLogService) *AuditHandler {
	return &AuditHandler{db: db, audit: audit}
}

// GET /api/auth/activity
// @Summary Own account activity
// @Description List the authenticated account's recent security events
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{} "Audit events with pagination"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /auth/activity [get]
func (h *AuditHandler) MyActivity(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	params := query.ParseListParams(c)

	logs, total, err := h.audit.FindByUser(user.ID, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       logs,
		"pagination": query.NewPagination(params.Page, params.Limit, total),
	})
}

// GET /api/audit-logs
// @Summary List audit events
// @Description List all audit events with filtering, search and pagination
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search in email and IP address"
// @Success 200 {object} map[string]interface{} "Audit events with pagination"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	params := query.ParseListParams(c)

	scope := query.Scope{
		FilterColumns: map[string]string{
			"action":     "action",
			"email":      "email",
			"successful": "successful",
			"user_id":    "user_id",
		},
		SearchColumns: []string{"email", "ip_address"},
		SortColumns: map[string]string{
			"action":     "action",
			"email":      "email",
			"created_at": "created_at",
		},
	}

	base := scope.Apply(h.db.Model(&auth.AuditLog{}), params)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count audit events"})
		return
	}

	var logs []auth.AuditLog
	if err := query.Paginate(base, params.Page, params.Limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list audit events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       logs,
		"pagination": query.NewPagination(params.Page, params.Limit, total),
	})
}
