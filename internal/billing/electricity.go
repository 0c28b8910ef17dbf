package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

// ElectricityDueDays is the gap between a meter reading and its bill's due date.
const ElectricityDueDays = 15

type ReadingInput struct {
	TenantID       uint
	CurrentReading decimal.Decimal
	UnitPrice      decimal.Decimal
	// ReadingDate defaults to today.
	ReadingDate time.Time
	Notes       string
}

type ReadingResult struct {
	ReadingID   uint
	BillID      uint
	TenantName  string
	Previous    decimal.NullDecimal
	Consumption decimal.Decimal
	Amount      decimal.Decimal
	DueDate     time.Time
	Warnings    []string
}

// MeterBilling turns meter readings into electricity bills.
type MeterBilling struct {
	store *store.Store
	clock Clock
}

func NewMeterBilling(s *store.Store, clock Clock) *MeterBilling {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MeterBilling{store: s, clock: clock}
}

// RecordReadingAndBill stores the reading and the electricity bill it produces in one
// transaction. Consumption is measured against the tenant's latest billed reading; without one
// the meter is taken to have started at zero.
func (mb *MeterBilling) RecordReadingAndBill(ctx context.Context, in ReadingInput) (*ReadingResult, error) {
	if in.CurrentReading.IsNegative() {
		return nil, invalid("reading_value", "must not be negative, got %s", in.CurrentReading)
	}
	if in.UnitPrice.IsNegative() {
		return nil, invalid("unit_price", "must not be negative, got %s", in.UnitPrice)
	}
	readingDate := models.Day(in.ReadingDate)
	if in.ReadingDate.IsZero() {
		readingDate = Today(mb.clock)
	}

	res := &ReadingResult{DueDate: readingDate.AddDate(0, 0, ElectricityDueDays)}

	err := mb.store.Transaction(ctx, func(tx *store.Store) error {
		tenant, err := tx.GetTenant(ctx, in.TenantID)
		if err != nil {
			return fmt.Errorf("tenant %d: %w", in.TenantID, err)
		}
		res.TenantName = tenant.FullName
		if !tenant.IsActive {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Warning: Tenant %s (ID: %d) is not active.", tenant.FullName, tenant.ID))
		}

		exists, err := tx.ReadingExists(ctx, tenant.ID, readingDate)
		if err != nil {
			return err
		}
		if exists {
			return invalid("reading_date", "tenant %d already has a reading on %s", tenant.ID, readingDate.Format(models.DateLayout))
		}

		last, err := tx.LatestBilledReading(ctx, tenant.ID)
		if err != nil {
			return err
		}
		previous := decimal.Zero
		if last != nil {
			previous = last.ReadingValue
			res.Previous = decimal.NewNullDecimal(previous)
			if in.CurrentReading.LessThan(previous) {
				return invalid("reading_value", "current reading (%s) cannot be less than the previous billed reading (%s) from %s",
					in.CurrentReading, previous, last.Date().Format(models.DateLayout))
			}
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("No previous billed reading found for %s. Assuming this is the first reading period or starting from zero.", tenant.FullName))
		}

		res.Consumption = in.CurrentReading.Sub(previous)
		if res.Consumption.IsNegative() {
			return invalid("consumption", "calculated consumption (%s) is negative", res.Consumption)
		}
		res.Amount = res.Consumption.Mul(in.UnitPrice).Round(2)

		bill := &models.Bill{
			TenantID:    tenant.ID,
			BillType:    models.BillTypeElectricity,
			Amount:      res.Amount,
			DueDate:     models.NewDate(res.DueDate),
			Description: electricityDescription(readingDate, in.CurrentReading, res.Previous, res.Consumption, in.UnitPrice),
		}
		if err := tx.CreateBill(ctx, bill); err != nil {
			return err
		}
		// A zero-consumption bill is settled as soon as it exists.
		if _, err := RecomputeBillStatus(ctx, tx, bill.ID); err != nil {
			return fmt.Errorf("failed to recompute bill %d: %w", bill.ID, err)
		}

		reading := &models.ElectricityReading{
			TenantID:             tenant.ID,
			ReadingDate:          models.NewDate(readingDate),
			ReadingValue:         in.CurrentReading,
			PreviousReadingValue: res.Previous,
			Consumption:          decimal.NewNullDecimal(res.Consumption),
			UnitPrice:            in.UnitPrice,
			IsBilled:             true,
			BillID:               &bill.ID,
			Notes:                in.Notes,
		}
		if err := tx.CreateReading(ctx, reading); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return invalid("reading_date", "tenant %d already has a reading on %s", tenant.ID, readingDate.Format(models.DateLayout))
			}
			return err
		}

		res.BillID = bill.ID
		res.ReadingID = reading.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BILLING] electricity bill %d for tenant %d: %s kWh, amount %s", res.BillID, in.TenantID, res.Consumption, res.Amount.StringFixed(2))
	return res, nil
}

func electricityDescription(date time.Time, current decimal.Decimal, previous decimal.NullDecimal, consumption, unitPrice decimal.Decimal) string {
	prev := "N/A"
	if previous.Valid {
		prev = previous.Decimal.StringFixed(2)
	}
	return fmt.Sprintf("Electricity charge for period ending %s. Current reading: %s kWh, Previous reading: %s kWh. Consumption: %s kWh @ %s/kWh.",
		date.Format(models.DateLayout), current.StringFixed(2), prev, consumption.StringFixed(2), unitPrice.StringFixed(3))
}
