package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleType is the fixed set of role names. The set itself never changes;
// capability grants for each role are defined centrally in
// shared/utils/permission.
type RoleType string

const (
	RoleSuperAdmin RoleType = "super_admin"
	RoleAdmin      RoleType = "admin"
	RoleManager    RoleType = "manager"
	RoleStaff      RoleType = "staff"
	RoleUser       RoleType = "user"
	RoleGuest      RoleType = "guest"
)

type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        RoleType  `json:"name" gorm:"size:50;uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate will set ID if not set
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
