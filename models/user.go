package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Workers authenticate with a PIN, everyone else with login/password.
const (
	RoleAdmin         = "Admin"
	RoleMaster        = "Master"
	RoleDiagnostician = "Diagnostician"
	RoleStorekeeper   = "Storekeeper"
	RoleWorker        = "Worker"
)

// User statuses
const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

// User represents an actor in the system (admin, master, diagnostician,
// storekeeper or worker)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"not null" json:"full_name"`
	Role         string         `gorm:"not null" json:"role"`
	Login        *string        `gorm:"uniqueIndex" json:"login"`
	PasswordHash *string        `json:"-"` // bcrypt, set for non-worker roles
	PinHash      *string        `json:"-"` // bcrypt over the 4-digit PIN, workers only
	Status       string         `gorm:"not null;default:'Active'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether role is one of the recognized user roles
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMaster, RoleDiagnostician, RoleStorekeeper, RoleWorker:
		return true
	}
	return false
}
