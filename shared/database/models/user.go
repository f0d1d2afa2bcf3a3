package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Username      string     `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	Password      string     `json:"-" gorm:"not null"`
	FirstName     string     `json:"first_name" gorm:"size:100"`
	LastName      string     `json:"last_name" gorm:"size:100"`
	Phone         string     `json:"phone" gorm:"size:20"`
	GoogleID      *string    `json:"google_id,omitempty" gorm:"size:255;index"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	RoleID        *uuid.UUID `json:"role_id" gorm:"type:uuid"`
	StationID     *uuid.UUID `json:"station_id" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations. Account read paths always preload Role; callers may rely
	// on Role being populated after a lookup.
	Role    Role     `json:"role" gorm:"foreignKey:RoleID"`
	Station *Station `json:"station,omitempty" gorm:"foreignKey:StationID"`
}

// BeforeCreate will set ID if not set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
