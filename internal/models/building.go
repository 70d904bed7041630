package models

import (
	"time"

	"github.com/google/uuid"
)

// Building represents a single property (hostel/PG building) that owns rooms.
// All nullable fields use pointers to distinguish between zero values and NULL.
type Building struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null;index" json:"name"`
	Address    *string    `gorm:"type:text" json:"address,omitempty"`
	TotalRooms int        `gorm:"not null;default:0" json:"total_rooms"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the buildings table.
func (Building) TableName() string {
	return "buildings"
}
