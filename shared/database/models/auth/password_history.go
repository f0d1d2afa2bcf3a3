package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordHistory keeps the most recent password hashes per user so resets
// can reject reuse. Only the newest entries are retained; older rows are
// pruned on insert.
type PasswordHistory struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate will set ID if not set
func (p *PasswordHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
