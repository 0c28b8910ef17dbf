package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room represents a rentable room in the boarding house
type Room struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	RoomNumber  string          `gorm:"size:255;uniqueIndex;not null" json:"room_number"`
	Description string          `gorm:"type:text" json:"description"`
	BaseRent    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_rent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *Room) Validate() error {
	if r.RoomNumber == "" {
		return &FieldError{Field: "room_number", Message: "is required"}
	}
	if r.BaseRent.IsNegative() {
		return &FieldError{Field: "base_rent", Message: "must not be negative"}
	}
	return nil
}
