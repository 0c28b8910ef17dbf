package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Tenant represents a person renting a room. A tenant may be unassigned (RoomID nil).
type Tenant struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	FullName         string              `gorm:"size:255;not null" json:"full_name"`
	PhoneNumber      string              `gorm:"size:20" json:"phone_number"`
	Email            string              `gorm:"size:254" json:"email"`
	RoomID           *uint               `gorm:"index" json:"room_id"`
	Room             *Room               `gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL" json:"room,omitempty"`
	LeaseStartDate   datatypes.Date      `gorm:"not null" json:"lease_start_date"`
	LeaseEndDate     *datatypes.Date     `json:"lease_end_date"`
	IsActive         bool                `gorm:"not null;index" json:"is_active"`
	FixedWaterCharge decimal.NullDecimal `gorm:"column:fixed_water_charge;type:decimal(7,2)" json:"fixed_water_charge"`
	FixedWiFiCharge  decimal.NullDecimal `gorm:"column:fixed_wifi_charge;type:decimal(7,2)" json:"fixed_wifi_charge"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// LeaseStart returns the lease start as a UTC date.
func (t *Tenant) LeaseStart() time.Time {
	return time.Time(t.LeaseStartDate)
}

// LeaseEnd returns the lease end and whether one is set.
func (t *Tenant) LeaseEnd() (time.Time, bool) {
	if t.LeaseEndDate == nil {
		return time.Time{}, false
	}
	return time.Time(*t.LeaseEndDate), true
}

// Validate enforces the tenant invariants: the lease cannot end before it starts and fixed
// charges are never negative.
func (t *Tenant) Validate() error {
	if t.FullName == "" {
		return &FieldError{Field: "full_name", Message: "is required"}
	}
	if time.Time(t.LeaseStartDate).IsZero() {
		return &FieldError{Field: "lease_start_date", Message: "is required"}
	}
	if end, ok := t.LeaseEnd(); ok && end.Before(t.LeaseStart()) {
		return &FieldError{Field: "lease_end_date", Message: "must not be before lease_start_date"}
	}
	if t.FixedWaterCharge.Valid && t.FixedWaterCharge.Decimal.IsNegative() {
		return &FieldError{Field: "fixed_water_charge", Message: "must not be negative"}
	}
	if t.FixedWiFiCharge.Valid && t.FixedWiFiCharge.Decimal.IsNegative() {
		return &FieldError{Field: "fixed_wifi_charge", Message: "must not be negative"}
	}
	return nil
}
