package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Room represents a rentable room inside a building. Capacity is the number
// of beds; occupancy against it is reported, never enforced at write time.
type Room struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BuildingID uuid.UUID       `gorm:"type:uuid;not null;index" json:"building_id"`
	RoomNumber string          `gorm:"size:50;not null" json:"room_number"`
	RoomType   string          `gorm:"size:50;not null" json:"room_type"`
	Capacity   int             `gorm:"not null;default:1" json:"capacity"`
	RentAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rent_amount"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the rooms table.
func (Room) TableName() string {
	return "rooms"
}

// RoomWithBuilding is a room joined with its owning building.
type RoomWithBuilding struct {
	Room
	Building *Building `json:"building,omitempty"`
}
