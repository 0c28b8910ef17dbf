package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

// BillFilter narrows ListBills. Zero values mean "no constraint".
type BillFilter struct {
	TenantID  uint
	Type      models.BillType
	Unpaid    bool
	Paid      bool
	DueOn     *time.Time
	DueBefore *time.Time
	Search    string
}

// Period identifies a recurring billing period for one tenant and bill type.
type Period struct {
	TenantID uint
	Type     models.BillType
	Year     int
	Month    int
}

func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	if err := bill.Validate(); err != nil {
		return err
	}
	if err := s.create(ctx, bill); err != nil {
		return fmt.Errorf("failed to create %s bill for tenant %d: %w", bill.BillType, bill.TenantID, err)
	}
	return nil
}

// GetBill loads a bill with its tenant.
func (s *Store) GetBill(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.conn(ctx).Preload("Tenant").First(&bill, id).Error; err != nil {
		return nil, translate(err)
	}
	return &bill, nil
}

func (s *Store) ListBills(ctx context.Context, f BillFilter) ([]models.Bill, error) {
	q := s.conn(ctx).Preload("Tenant").Order("bills.due_date DESC").Order("bills.id DESC")
	if f.TenantID != 0 {
		q = q.Where("bills.tenant_id = ?", f.TenantID)
	}
	if f.Type != "" {
		q = q.Where("bills.bill_type = ?", f.Type)
	}
	if f.Unpaid {
		q = q.Where("bills.is_paid = ?", false)
	}
	if f.Paid {
		q = q.Where("bills.is_paid = ?", true)
	}
	if f.DueOn != nil {
		q = q.Where("bills.due_date = ?", models.NewDate(*f.DueOn))
	}
	if f.DueBefore != nil {
		q = q.Where("bills.due_date < ?", models.NewDate(*f.DueBefore))
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Joins("JOIN tenants ON tenants.id = bills.tenant_id").
			Where("tenants.full_name LIKE ? OR bills.description LIKE ?", like, like)
	}
	var bills []models.Bill
	if err := q.Find(&bills).Error; err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

// SetBillPaid writes only the paid flag.
func (s *Store) SetBillPaid(ctx context.Context, id uint, paid bool) error {
	res := s.conn(ctx).Model(&models.Bill{}).Where("id = ?", id).Update("is_paid", paid)
	if res.Error != nil {
		return fmt.Errorf("failed to update bill %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: bill %d", ErrNotFound, id)
	}
	return nil
}

// DeleteBill removes a bill and its payments. Readings billed by it keep their row with bill_id cleared.
func (s *Store) DeleteBill(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db := tx.conn(ctx)
		if err := db.Where("bill_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payments of bill %d: %w", id, err)
		}
		if err := db.Model(&models.ElectricityReading{}).Where("bill_id = ?", id).
			Update("bill_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach readings from bill %d: %w", id, err)
		}
		res := db.Delete(&models.Bill{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete bill %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: bill %d", ErrNotFound, id)
		}
		return nil
	})
}

// BillExistsForPeriod reports whether any bill already covers the period.
func (s *Store) BillExistsForPeriod(ctx context.Context, p Period) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Bill{}).
		Where("tenant_id = ? AND bill_type = ? AND period_year = ? AND period_month = ?", p.TenantID, p.Type, p.Year, p.Month).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing bill: %w", err)
	}
	return n > 0, nil
}

// NextPeriodSeq returns the sequence number for an additional bill in an already billed period.
func (s *Store) NextPeriodSeq(ctx context.Context, p Period) (int, error) {
	var max sql.NullInt64
	err := s.conn(ctx).Model(&models.Bill{}).
		Select("MAX(period_seq)").
		Where("tenant_id = ? AND bill_type = ? AND period_year = ? AND period_month = ?", p.TenantID, p.Type, p.Year, p.Month).
		Row().Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read period sequence: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// MarkReminded stamps the bill's last reminder time.
func (s *Store) MarkReminded(ctx context.Context, id uint, at time.Time) error {
	err := s.conn(ctx).Model(&models.Bill{}).Where("id = ?", id).
		Update("last_reminded_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to mark bill %d reminded: %w", id, err)
	}
	return nil
}

// UnpaidTotal sums the amounts of every unpaid bill.
func (s *Store) UnpaidTotal(ctx context.Context) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.conn(ctx).Model(&models.Bill{}).
		Where("is_paid = ?", false).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total unpaid bills: %w", err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

// ReminderCandidates returns unpaid bills of active tenants with an email address whose due
// date matches the query: due on exactly dueOn, or due strictly before dueBefore.
func (s *Store) ReminderCandidates(ctx context.Context, dueOn, dueBefore *time.Time) ([]models.Bill, error) {
	q := s.conn(ctx).
		Preload("Tenant").
		Joins("JOIN tenants ON tenants.id = bills.tenant_id").
		Where("bills.is_paid = ?", false).
		Where("tenants.is_active = ?", true).
		Where("tenants.email IS NOT NULL AND tenants.email <> ''").
		Order("bills.due_date").Order("bills.id")
	if dueOn != nil {
		q = q.Where("bills.due_date = ?", models.NewDate(*dueOn))
	}
	if dueBefore != nil {
		q = q.Where("bills.due_date < ?", models.NewDate(*dueBefore))
	}
	var bills []models.Bill
	if err := q.Find(&bills).Error; err != nil {
		return nil, fmt.Errorf("failed to select reminder candidates: %w", err)
	}
	return bills, nil
}
