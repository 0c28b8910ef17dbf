package billing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

// PaymentInput describes a payment to record or the new state of an existing one.
// TenantID may be left zero; it is always taken from the bill.
type PaymentInput struct {
	BillID   uint
	TenantID uint
	Amount   decimal.Decimal
	Date     time.Time
	Method   string
	Notes    string
}

// Receipt is the outcome of a payment mutation as seen by the affected bill.
type Receipt struct {
	Payment *models.Payment
	Bill    *models.Bill
	Paid    decimal.Decimal
	Balance decimal.Decimal
}

// PaymentService records payments and keeps every affected bill's paid flag in step.
type PaymentService struct {
	store *store.Store
	clock Clock
}

func NewPaymentService(s *store.Store, clock Clock) *PaymentService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &PaymentService{store: s, clock: clock}
}

func (ps *PaymentService) build(ctx context.Context, tx *store.Store, in PaymentInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, invalid("amount_paid", "must be positive, got %s", in.Amount)
	}
	bill, err := tx.GetBill(ctx, in.BillID)
	if err != nil {
		return nil, fmt.Errorf("bill %d: %w", in.BillID, err)
	}
	if in.TenantID != 0 && in.TenantID != bill.TenantID {
		return nil, invalid("tenant_id", "payment tenant %d does not match bill %d tenant %d", in.TenantID, bill.ID, bill.TenantID)
	}
	date := in.Date
	if date.IsZero() {
		date = Today(ps.clock)
	}
	return &models.Payment{
		BillID:        bill.ID,
		TenantID:      bill.TenantID,
		AmountPaid:    in.Amount.Round(2),
		PaymentDate:   models.NewDate(date),
		PaymentMethod: in.Method,
		Notes:         in.Notes,
	}, nil
}

func (ps *PaymentService) receipt(ctx context.Context, tx *store.Store, payment *models.Payment) (*Receipt, error) {
	bill, err := tx.GetBill(ctx, payment.BillID)
	if err != nil {
		return nil, err
	}
	paid, err := tx.SumPaymentsForBill(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	return &Receipt{Payment: payment, Bill: bill, Paid: paid, Balance: bill.Amount.Sub(paid)}, nil
}

// Record stores a new payment and recomputes its bill.
func (ps *PaymentService) Record(ctx context.Context, in PaymentInput) (*Receipt, error) {
	var rcpt *Receipt
	err := ps.store.Transaction(ctx, func(tx *store.Store) error {
		payment, err := ps.build(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if _, err := RecomputeBillStatus(ctx, tx, payment.BillID); err != nil {
			return fmt.Errorf("failed to recompute bill %d: %w", payment.BillID, err)
		}
		rcpt, err = ps.receipt(ctx, tx, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BILLING] payment %d of %s recorded for bill %d", rcpt.Payment.ID, rcpt.Payment.AmountPaid.StringFixed(2), rcpt.Bill.ID)
	return rcpt, nil
}

// Update replaces a payment's fields. Moving a payment to another bill recomputes both bills.
func (ps *PaymentService) Update(ctx context.Context, id uint, in PaymentInput) (*Receipt, error) {
	var rcpt *Receipt
	err := ps.store.Transaction(ctx, func(tx *store.Store) error {
		existing, err := tx.GetPayment(ctx, id)
		if err != nil {
			return fmt.Errorf("payment %d: %w", id, err)
		}
		if in.BillID == 0 {
			in.BillID = existing.BillID
		}
		if in.Date.IsZero() {
			in.Date = time.Time(existing.PaymentDate)
		}
		payment, err := ps.build(ctx, tx, in)
		if err != nil {
			return err
		}
		payment.ID = existing.ID
		payment.DateRecorded = existing.DateRecorded
		if err := tx.UpdatePayment(ctx, payment); err != nil {
			return err
		}

		if existing.BillID != payment.BillID {
			if _, err := RecomputeBillStatus(ctx, tx, existing.BillID); err != nil {
				return fmt.Errorf("failed to recompute bill %d: %w", existing.BillID, err)
			}
		}
		if _, err := RecomputeBillStatus(ctx, tx, payment.BillID); err != nil {
			return fmt.Errorf("failed to recompute bill %d: %w", payment.BillID, err)
		}
		rcpt, err = ps.receipt(ctx, tx, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rcpt, nil
}

// Delete removes a payment and recomputes the bill it was applied to.
func (ps *PaymentService) Delete(ctx context.Context, id uint) (*models.Bill, error) {
	var bill *models.Bill
	err := ps.store.Transaction(ctx, func(tx *store.Store) error {
		payment, err := tx.GetPayment(ctx, id)
		if err != nil {
			return fmt.Errorf("payment %d: %w", id, err)
		}
		if err := tx.DeletePayment(ctx, id); err != nil {
			return err
		}
		if _, err := RecomputeBillStatus(ctx, tx, payment.BillID); err != nil {
			return fmt.Errorf("failed to recompute bill %d: %w", payment.BillID, err)
		}
		bill, err = tx.GetBill(ctx, payment.BillID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BILLING] payment %d deleted from bill %d", id, bill.ID)
	return bill, nil
}
