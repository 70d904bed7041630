package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant represents a paying guest. RoomID is nullable: nil means the tenant
// is unassigned or has left. Reassignment overwrites the reference; there is
// no stay history. LeavingDate is set only on deactivation.
type Tenant struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Phone       string          `gorm:"size:20;not null" json:"phone"`
	Occupation  *string         `gorm:"size:255" json:"occupation,omitempty"`
	RoomID      *uuid.UUID      `gorm:"type:uuid;index" json:"room_id,omitempty"`
	MonthlyRent decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_rent"`
	JoiningDate time.Time       `gorm:"type:date;not null" json:"joining_date"`
	LeavingDate *time.Time      `gorm:"type:date" json:"leaving_date,omitempty"`
	IsActive    bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the tenants table.
func (Tenant) TableName() string {
	return "tenants"
}

// TenantWithRoom is a tenant joined with their room and its building.
type TenantWithRoom struct {
	Tenant
	Room *RoomWithBuilding `json:"room,omitempty"`
}
