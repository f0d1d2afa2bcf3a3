package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Station struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	Address   string     `json:"address" gorm:"type:text"`
	City      string     `json:"city" gorm:"size:100"`
	Status    string     `json:"status" gorm:"size:20;default:'ACTIVE'"`
	ManagerID *uuid.UUID `json:"manager_id" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate will set ID if not set
func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
