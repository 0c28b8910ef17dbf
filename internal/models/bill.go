package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BillType string

const (
	BillTypeRent        BillType = "Rent"
	BillTypeElectricity BillType = "Electricity"
	BillTypeWater       BillType = "Water"
	BillTypeWiFi        BillType = "WiFi"
	BillTypeOther       BillType = "Other"
)

// BillTypes lists every bill type in display order.
var BillTypes = []BillType{BillTypeRent, BillTypeElectricity, BillTypeWater, BillTypeWiFi, BillTypeOther}

func (t BillType) Valid() bool {
	for _, bt := range BillTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// Bill represents a charge owed by a tenant.
//
// Recurring bills carry a structured billing period (PeriodYear, PeriodMonth). PeriodSeq is 0 for
// the bill a generator creates for a period and counts up for forced duplicates, so the unique
// index on (tenant, type, year, month, seq) rejects accidental double billing. Non-periodic bills
// leave the period columns NULL, which never collide in the index.
type Bill struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TenantID       uint            `gorm:"not null;index;uniqueIndex:idx_bill_period,priority:1" json:"tenant_id"`
	Tenant         *Tenant         `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	BillType       BillType        `gorm:"size:20;not null;index;uniqueIndex:idx_bill_period,priority:2" json:"bill_type"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	DueDate        datatypes.Date  `gorm:"not null;index" json:"due_date"`
	IsPaid         bool            `gorm:"not null;index" json:"is_paid"`
	Description    string          `gorm:"type:text" json:"description"`
	PeriodYear     *int            `gorm:"uniqueIndex:idx_bill_period,priority:3" json:"period_year,omitempty"`
	PeriodMonth    *int            `gorm:"uniqueIndex:idx_bill_period,priority:4" json:"period_month,omitempty"`
	PeriodSeq      int             `gorm:"not null;uniqueIndex:idx_bill_period,priority:5" json:"period_seq"`
	LastRemindedAt *time.Time      `json:"last_reminded_at,omitempty"`
	DateCreated    time.Time       `gorm:"autoCreateTime" json:"date_created"`
	DateUpdated    time.Time       `gorm:"autoUpdateTime" json:"date_updated"`
}

// Due returns the due date as a UTC date.
func (b *Bill) Due() time.Time {
	return time.Time(b.DueDate)
}

// HasPeriod reports whether the bill belongs to a billing period.
func (b *Bill) HasPeriod() bool {
	return b.PeriodYear != nil && b.PeriodMonth != nil
}

func (b *Bill) Validate() error {
	if b.TenantID == 0 {
		return &FieldError{Field: "tenant_id", Message: "is required"}
	}
	if !b.BillType.Valid() {
		return &FieldError{Field: "bill_type", Message: "unknown bill type " + string(b.BillType)}
	}
	if b.Amount.IsNegative() {
		return &FieldError{Field: "amount", Message: "must not be negative"}
	}
	if b.Due().IsZero() {
		return &FieldError{Field: "due_date", Message: "is required"}
	}
	return nil
}
