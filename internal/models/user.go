package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Admins manage gadgets; agents get read access plus the
// self-destruct endpoint.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// User represents a registered user in the system
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"default:'agent'" json:"role"`

	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
