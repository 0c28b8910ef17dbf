package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment represents an amount applied against a bill. Payments are never capped at the bill
// amount, so overpayment is representable.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BillID        uint            `gorm:"not null;index" json:"bill_id"`
	Bill          *Bill           `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"bill,omitempty"`
	TenantID      uint            `gorm:"not null;index" json:"tenant_id"`
	Tenant        *Tenant         `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	PaymentDate   datatypes.Date  `gorm:"not null;index" json:"payment_date"`
	PaymentMethod string          `gorm:"size:255" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	DateRecorded  time.Time       `gorm:"autoCreateTime" json:"date_recorded"`
}

func (p *Payment) Validate() error {
	if p.BillID == 0 {
		return &FieldError{Field: "bill_id", Message: "is required"}
	}
	if !p.AmountPaid.IsPositive() {
		return &FieldError{Field: "amount_paid", Message: "must be positive"}
	}
	if time.Time(p.PaymentDate).IsZero() {
		return &FieldError{Field: "payment_date", Message: "is required"}
	}
	return nil
}
