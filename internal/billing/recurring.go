package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

// DefaultDueDays is the due-day setting used when a run does not give one. For rent it is the
// day of the month; for water and WiFi it is an offset from the 1st.
var DefaultDueDays = map[models.BillType]int{
	models.BillTypeRent:  5,
	models.BillTypeWater: 15,
	models.BillTypeWiFi:  15,
}

// ParseKind maps a command-line kind ("rent", "water", "wifi") to its bill type.
func ParseKind(s string) (models.BillType, error) {
	switch strings.ToLower(s) {
	case "rent":
		return models.BillTypeRent, nil
	case "water":
		return models.BillTypeWater, nil
	case "wifi":
		return models.BillTypeWiFi, nil
	}
	return "", invalid("kind", "unknown recurring charge %q (want rent, water or wifi)", s)
}

type GenerateRequest struct {
	Kind models.BillType
	// Month and Year default to the current month when zero.
	Month int
	Year  int
	// DueDays defaults to DefaultDueDays[Kind] when nil.
	DueDays *int
	Force   bool
}

type GeneratedBill struct {
	BillID     uint
	TenantID   uint
	TenantName string
	Amount     decimal.Decimal
	DueDate    time.Time
}

type SkippedTenant struct {
	TenantID   uint
	TenantName string
	Reason     string
}

// TenantFailure records a tenant whose bill could not be created.
type TenantFailure struct {
	TenantID   uint
	TenantName string
	Err        error
}

func (f TenantFailure) Error() string {
	return fmt.Sprintf("tenant %d (%s): %v", f.TenantID, f.TenantName, f.Err)
}

func (f TenantFailure) Unwrap() error { return f.Err }

type GenerateResult struct {
	Kind     models.BillType
	Year     int
	Month    time.Month
	Eligible int
	Created  []GeneratedBill
	Skipped  []SkippedTenant
	Failed   []TenantFailure
}

// Period renders the billing month, e.g. "October 2026".
func (r *GenerateResult) Period() string {
	return fmt.Sprintf("%s %d", r.Month, r.Year)
}

// Err joins every per-tenant failure, or returns nil.
func (r *GenerateResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Generator creates monthly rent, water and WiFi bills.
type Generator struct {
	store *store.Store
	clock Clock
}

func NewGenerator(s *store.Store, clock Clock) *Generator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Generator{store: s, clock: clock}
}

type charge struct {
	tenant models.Tenant
	amount decimal.Decimal
	desc   string
}

// Generate bills every eligible tenant for the requested month. Request validation happens
// before any tenant is touched. Each tenant is then billed in its own transaction, so one
// tenant's failure is reported in the result without affecting the others.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	now := g.clock.Now()
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, invalid("month", "must be between 1 and 12, got %d", req.Month)
	}
	if req.Year < 2000 || req.Year > now.Year()+5 {
		return nil, invalid("year", "%d seems unlikely, want 2000..%d", req.Year, now.Year()+5)
	}
	dueDays, ok := DefaultDueDays[req.Kind]
	if !ok {
		return nil, invalid("kind", "%q is not a recurring charge", req.Kind)
	}
	if req.DueDays != nil {
		dueDays = *req.DueDays
	}
	if dueDays < 0 {
		return nil, invalid("due_days", "must not be negative, got %d", dueDays)
	}

	periodStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	result := &GenerateResult{Kind: req.Kind, Year: req.Year, Month: periodStart.Month()}

	var due time.Time
	if req.Kind == models.BillTypeRent {
		if dueDays < 1 || dueDays > daysIn(periodStart) {
			return nil, invalid("due_days", "%d is not a valid day for %s", dueDays, result.Period())
		}
		due = periodStart.AddDate(0, 0, dueDays-1)
	} else {
		due = periodStart.AddDate(0, 0, dueDays)
	}

	charges, err := g.charges(ctx, req.Kind, periodStart, result.Period())
	if err != nil {
		return nil, err
	}
	result.Eligible = len(charges)

	for _, c := range charges {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		g.billTenant(ctx, req, c, due, result)
	}

	log.Printf("[BILLING] %s %s: %d created, %d skipped, %d failed",
		strings.ToLower(string(req.Kind)), result.Period(), len(result.Created), len(result.Skipped), len(result.Failed))
	return result, nil
}

func (g *Generator) charges(ctx context.Context, kind models.BillType, periodStart time.Time, period string) ([]charge, error) {
	var charges []charge
	switch kind {
	case models.BillTypeRent:
		tenants, err := g.store.ListRentEligibleTenants(ctx, periodStart)
		if err != nil {
			return nil, err
		}
		for _, t := range tenants {
			charges = append(charges, charge{
				tenant: t,
				amount: t.Room.BaseRent,
				desc:   fmt.Sprintf("Room Rent for %s (Room %s).", period, t.Room.RoomNumber),
			})
		}
	case models.BillTypeWater:
		tenants, err := g.store.ListFixedChargeTenants(ctx, store.FixedWater)
		if err != nil {
			return nil, err
		}
		for _, t := range tenants {
			charges = append(charges, charge{
				tenant: t,
				amount: t.FixedWaterCharge.Decimal,
				desc:   fmt.Sprintf("Monthly fixed water charge for %s.", period),
			})
		}
	case models.BillTypeWiFi:
		tenants, err := g.store.ListFixedChargeTenants(ctx, store.FixedWiFi)
		if err != nil {
			return nil, err
		}
		for _, t := range tenants {
			charges = append(charges, charge{
				tenant: t,
				amount: t.FixedWiFiCharge.Decimal,
				desc:   fmt.Sprintf("Monthly fixed WiFi charge for %s.", period),
			})
		}
	}
	return charges, nil
}

func (g *Generator) billTenant(ctx context.Context, req GenerateRequest, c charge, due time.Time, result *GenerateResult) {
	period := store.Period{TenantID: c.tenant.ID, Type: req.Kind, Year: req.Year, Month: req.Month}
	var bill *models.Bill
	skipped := false

	err := g.store.Transaction(ctx, func(tx *store.Store) error {
		seq := 0
		if req.Force {
			next, err := tx.NextPeriodSeq(ctx, period)
			if err != nil {
				return err
			}
			seq = next
		} else {
			exists, err := tx.BillExistsForPeriod(ctx, period)
			if err != nil {
				return err
			}
			if exists {
				skipped = true
				return nil
			}
		}

		year, month := req.Year, req.Month
		bill = &models.Bill{
			TenantID:    c.tenant.ID,
			BillType:    req.Kind,
			Amount:      c.amount,
			DueDate:     models.NewDate(due),
			Description: c.desc,
			PeriodYear:  &year,
			PeriodMonth: &month,
			PeriodSeq:   seq,
		}
		return tx.CreateBill(ctx, bill)
	})

	switch {
	case err == nil && skipped:
		result.Skipped = append(result.Skipped, SkippedTenant{TenantID: c.tenant.ID, TenantName: c.tenant.FullName, Reason: "Bill already exists."})
	case errors.Is(err, store.ErrDuplicate):
		result.Skipped = append(result.Skipped, SkippedTenant{TenantID: c.tenant.ID, TenantName: c.tenant.FullName, Reason: "Bill was created concurrently."})
	case err != nil:
		log.Printf("[BILLING] failed to bill tenant %d for %s: %v", c.tenant.ID, result.Period(), err)
		result.Failed = append(result.Failed, TenantFailure{TenantID: c.tenant.ID, TenantName: c.tenant.FullName, Err: err})
	default:
		result.Created = append(result.Created, GeneratedBill{
			BillID:     bill.ID,
			TenantID:   c.tenant.ID,
			TenantName: c.tenant.FullName,
			Amount:     bill.Amount,
			DueDate:    due,
		})
	}
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}
