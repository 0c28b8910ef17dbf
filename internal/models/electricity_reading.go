package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ElectricityReading represents a meter reading taken for a tenant. PreviousReadingValue is NULL
// only for a tenant's first reading.
type ElectricityReading struct {
	ID                   uint                `gorm:"primaryKey" json:"id"`
	TenantID             uint                `gorm:"not null;uniqueIndex:idx_reading_tenant_date,priority:1" json:"tenant_id"`
	Tenant               *Tenant             `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	ReadingDate          datatypes.Date      `gorm:"not null;uniqueIndex:idx_reading_tenant_date,priority:2" json:"reading_date"`
	ReadingValue         decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"reading_value"`
	PreviousReadingValue decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"previous_reading_value"`
	Consumption          decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"consumption"`
	UnitPrice            decimal.Decimal     `gorm:"type:decimal(6,3);not null" json:"unit_price"`
	IsBilled             bool                `gorm:"not null;index" json:"is_billed"`
	BillID               *uint               `gorm:"index" json:"bill_id"`
	Bill                 *Bill               `gorm:"foreignKey:BillID;constraint:OnDelete:SET NULL" json:"bill,omitempty"`
	Notes                string              `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time           `json:"created_at"`
}

func (ElectricityReading) TableName() string {
	return "electricity_readings"
}

// Date returns the reading date as a UTC date.
func (r *ElectricityReading) Date() time.Time {
	return time.Time(r.ReadingDate)
}
