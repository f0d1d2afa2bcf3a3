package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"petrosmart-backend/shared/database/models/auth"
	utils "petrosmart-backend/shared/utils/auth"
)

// PasswordHistoryService tracks recent password hashes per account and
// rejects reuse on reset.
type PasswordHistoryService struct {
	db    *gorm.DB
	limit int
}

// NewPasswordHistoryService creates a guard retaining the given number of
// most recent hashes per account.
func NewPasswordHistoryService(db *gorm.DB, limit int) *PasswordHistoryService {
	if limit <= 0 {
		limit = 5
	}
	return &PasswordHistoryService{db: db, limit: limit}
}

// WithTx returns a copy of the guard bound to the given transaction handle,
// so history writes commit or roll back together with the caller's updates.
func (s *PasswordHistoryService) WithTx(tx *gorm.DB) *PasswordHistoryService {
	return &PasswordHistoryService{db: tx, limit: s.limit}
}

// Record appends a hash to the account's history and prunes entries beyond
// the retention limit in one pass.
func (s *PasswordHistoryService) Record(userID uuid.UUID, passwordHash string) error {
	entry := auth.PasswordHistory{
		UserID:       userID,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return err
	}

	var history []auth.PasswordHistory
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&history).Error; err != nil {
		return err
	}

	if len(history) > s.limit {
		for _, old := range history[s.limit:] {
			if err := s.db.Delete(&auth.PasswordHistory{}, "id = ?", old.ID).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// IsReused reports whether the candidate plaintext matches any retained
// hash. Hashes are salted, so each one needs its own comparison.
func (s *PasswordHistoryService) IsReused(userID uuid.UUID, candidate string) (bool, error) {
	var history []auth.PasswordHistory
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(s.limit).
		Find(&history).Error; err != nil {
		return false, err
	}

	for _, entry := range history {
		if utils.CheckPasswordHash(candidate, entry.PasswordHash) {
			return true, nil
		}
	}

	return false, nil
}
