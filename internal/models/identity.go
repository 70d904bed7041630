package models

import (
	"time"

	"github.com/google/uuid"
)

// AppRole is the access role carried by a user's JWT and stored in user_roles.
type AppRole string

const (
	RoleOwner AppRole = "owner"
	RoleStaff AppRole = "staff"
)

// Profile is the identity record for an authenticated user. It is consumed
// by the authentication collaborator; the payment domain never mutates it.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the profiles table.
func (Profile) TableName() string {
	return "profiles"
}

// UserRole maps a user to an access role.
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      AppRole   `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for the user_roles table.
func (UserRole) TableName() string {
	return "user_roles"
}
