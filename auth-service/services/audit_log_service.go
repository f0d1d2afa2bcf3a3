package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/shared/database/models/auth"
)

// AuditEntry carries the request context recorded alongside an auth event.
type AuditEntry struct {
	UserID     *uuid.UUID
	Email      string
	Action     auth.AuditAction
	IPAddress  string
	UserAgent  string
	Successful bool
	Metadata   map[string]interface{}
}

// AuditLogService persists authentication events and answers the counting
// queries used for rate limiting.
type AuditLogService struct {
	db *gorm.DB
}

func NewAuditLogService(db *gorm.DB) *AuditLogService {
	return &AuditLogService{db: db}
}

// Record writes an audit row. Metadata is stored as JSON text; a marshal
// failure drops the metadata but never the event.
func (s *AuditLogService) Record(entry AuditEntry) error {
	row := auth.AuditLog{
		UserID:     entry.UserID,
		Email:      entry.Email,
		Action:     entry.Action,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Successful: entry.Successful,
	}

	if entry.Metadata != nil {
		if data, err := json.Marshal(entry.Metadata); err == nil {
			row.Metadata = string(data)
		}
	}

	return s.db.Create(&row).Error
}

// CountResetRequests counts successful password reset requests for an email
// within the rolling window. Failed attempts do not consume quota.
func (s *AuditLogService) CountResetRequests(email string, window time.Duration) (int64, error) {
	var count int64
	err := s.db.Model(&auth.AuditLog{}).
		Where("email = ? AND action = ? AND successful = ? AND created_at > ?",
			email, auth.AuditPasswordResetRequested, true, time.Now().Add(-window)).
		Count(&count).Error
	return count, err
}

// CountRecentFailed counts failed events of the given action for an email
// within the window.
func (s *AuditLogService) CountRecentFailed(email string, action auth.AuditAction, window time.Duration) (int64, error) {
	var count int64
	err := s.db.Model(&auth.AuditLog{}).
		Where("email = ? AND action = ? AND successful = ? AND created_at > ?",
			email, action, false, time.Now().Add(-window)).
		Count(&count).Error
	return count, err
}

// FindByUser returns the newest events for an account, most recent first.
func (s *AuditLogService) FindByUser(userID uuid.UUID, limit, offset int) ([]auth.AuditLog, int64, error) {
	var logs []auth.AuditLog
	var total int64

	query := s.db.Model(&auth.AuditLog{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// Cleanup removes events older than the retention period and returns the
// number of deleted rows.
func (s *AuditLogService) Cleanup(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&auth.AuditLog{})
	return result.RowsAffected, result.Error
}
