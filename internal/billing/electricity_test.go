package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
	"github.com/beesaferoot/boardinghouse/internal/testutil"
)

func newMeterBilling(t *testing.T) (*billing.MeterBilling, *store.Store) {
	t.Helper()
	s := testutil.NewStore(t)
	clock := billing.FixedClock{T: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	return billing.NewMeterBilling(s, clock), s
}

func TestFirstReadingBillsFullValue(t *testing.T) {
	mb, s := newMeterBilling(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, s, "Ana", nil, "2026-01-01")

	res, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID:       tenant.ID,
		CurrentReading: testutil.Dec("120.5"),
		UnitPrice:      testutil.Dec("1.25"),
		ReadingDate:    testutil.Date(t, "2026-09-30"),
		Notes:          "meter installed",
	})
	require.NoError(t, err)

	assert.False(t, res.Previous.Valid)
	assert.Equal(t, "120.50", res.Consumption.StringFixed(2))
	assert.Equal(t, "150.63", res.Amount.StringFixed(2))
	assert.Equal(t, "2026-10-15", res.DueDate.Format(models.DateLayout))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "No previous billed reading")

	bill, err := s.GetBill(ctx, res.BillID)
	require.NoError(t, err)
	assert.Equal(t, models.BillTypeElectricity, bill.BillType)
	assert.False(t, bill.IsPaid)
	assert.False(t, bill.HasPeriod())
	assert.Equal(t, "Electricity charge for period ending 2026-09-30. Current reading: 120.50 kWh, Previous reading: N/A kWh. Consumption: 120.50 kWh @ 1.250/kWh.", bill.Description)

	reading, err := s.GetReading(ctx, res.ReadingID)
	require.NoError(t, err)
	assert.True(t, reading.IsBilled)
	assert.False(t, reading.PreviousReadingValue.Valid)
	require.NotNil(t, reading.BillID)
	assert.Equal(t, res.BillID, *reading.BillID)
	assert.Equal(t, "meter installed", reading.Notes)
}

func TestSecondReadingBillsConsumption(t *testing.T) {
	mb, s := newMeterBilling(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, s, "Ana", nil, "2026-01-01")

	_, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID: tenant.ID, CurrentReading: testutil.Dec("100"), UnitPrice: testutil.Dec("1.5"),
		ReadingDate: testutil.Date(t, "2026-09-30"),
	})
	require.NoError(t, err)

	res, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID: tenant.ID, CurrentReading: testutil.Dec("150"), UnitPrice: testutil.Dec("1.5"),
	})
	require.NoError(t, err)
	require.True(t, res.Previous.Valid)
	assert.True(t, res.Previous.Decimal.Equal(testutil.Dec("100")))
	assert.Equal(t, "50.00", res.Consumption.StringFixed(2))
	assert.Equal(t, "75.00", res.Amount.StringFixed(2))
	assert.Equal(t, "2026-10-31", res.DueDate.Format(models.DateLayout))
	assert.Empty(t, res.Warnings)

	reading, err := s.GetReading(ctx, res.ReadingID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", reading.Date().Format(models.DateLayout))
}

func TestZeroConsumptionBillIsSettled(t *testing.T) {
	mb, s := newMeterBilling(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, s, "Ana", nil, "2026-01-01", func(tn *models.Tenant) {
		tn.Email = "ana@example.com"
	})

	_, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID: tenant.ID, CurrentReading: testutil.Dec("100"), UnitPrice: testutil.Dec("1.5"),
		ReadingDate: testutil.Date(t, "2026-08-31"),
	})
	require.NoError(t, err)

	res, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID: tenant.ID, CurrentReading: testutil.Dec("100"), UnitPrice: testutil.Dec("1.5"),
		ReadingDate: testutil.Date(t, "2026-09-30"),
	})
	require.NoError(t, err)
	assert.True(t, res.Consumption.IsZero())
	assert.Equal(t, "0.00", res.Amount.StringFixed(2))

	bill, err := s.GetBill(ctx, res.BillID)
	require.NoError(t, err)
	assert.True(t, bill.IsPaid)

	today := testutil.Date(t, "2026-10-16")
	overdue, err := s.ReminderCandidates(ctx, nil, &today)
	require.NoError(t, err)
	for _, b := range overdue {
		assert.NotEqual(t, res.BillID, b.ID)
	}
}

func TestDecreasingReadingCreatesNothing(t *testing.T) {
	mb, s := newMeterBilling(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, s, "Ana", nil, "2026-01-01")

	_, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID: tenant.ID, CurrentReading: testutil.Dec("100"), UnitPrice: testutil.Dec("1"),
		ReadingDate: testutil.Date(t, "2026-09-30"),
	})
	require.NoError(t, err)

	_, err = mb.RecordReadingAndBill(ctx, billing.ReadingInput{
		TenantID: tenant.ID, CurrentReading: testutil.Dec("90"), UnitPrice: testutil.Dec("1"),
		ReadingDate: testutil.Date(t, "2026-10-15"),
	})
	assert.True(t, billing.IsValidation(err))

	readings, err := s.ListReadings(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
	bills, err := s.ListBills(ctx, store.BillFilter{TenantID: tenant.ID})
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

func TestReadingValidation(t *testing.T) {
	mb, s := newMeterBilling(t)
	ctx := context.Background()
	inactive := testutil.Tenant(t, s, "Ana", nil, "2026-01-01", func(tn *models.Tenant) { tn.IsActive = false })

	_, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{TenantID: 404, CurrentReading: testutil.Dec("1"), UnitPrice: testutil.Dec("1")})
	assert.ErrorIs(t, err, billing.ErrNotFound)

	_, err = mb.RecordReadingAndBill(ctx, billing.ReadingInput{TenantID: inactive.ID, CurrentReading: testutil.Dec("1"), UnitPrice: testutil.Dec("-1")})
	assert.True(t, billing.IsValidation(err))

	res, err := mb.RecordReadingAndBill(ctx, billing.ReadingInput{TenantID: inactive.ID, CurrentReading: testutil.Dec("10"), UnitPrice: testutil.Dec("2")})
	require.NoError(t, err)
	assert.Contains(t, res.Warnings[0], "is not active")

	_, err = mb.RecordReadingAndBill(ctx, billing.ReadingInput{TenantID: inactive.ID, CurrentReading: testutil.Dec("20"), UnitPrice: testutil.Dec("2")})
	var ve *billing.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reading_date", ve.Field)
}
