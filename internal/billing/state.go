package billing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

// BillLedger is the slice of the store the state engine needs.
type BillLedger interface {
	GetBill(ctx context.Context, id uint) (*models.Bill, error)
	SumPaymentsForBill(ctx context.Context, billID uint) (decimal.Decimal, error)
	SetBillPaid(ctx context.Context, id uint, paid bool) error
}

// RecomputeBillStatus re-reads the bill and its payments and sets is_paid to
// sum(payments) >= amount. The flag is written only when it changes. A bill that no longer
// exists is ignored.
func RecomputeBillStatus(ctx context.Context, ledger BillLedger, billID uint) (bool, error) {
	bill, err := ledger.GetBill(ctx, billID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	total, err := ledger.SumPaymentsForBill(ctx, billID)
	if err != nil {
		return false, err
	}

	paid := total.GreaterThanOrEqual(bill.Amount)
	if paid == bill.IsPaid {
		return false, nil
	}
	if err := ledger.SetBillPaid(ctx, billID, paid); err != nil {
		return false, err
	}
	return true, nil
}
