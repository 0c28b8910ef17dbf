package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	if err := s.create(ctx, payment); err != nil {
		return fmt.Errorf("failed to record payment for bill %d: %w", payment.BillID, err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.conn(ctx).First(&payment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *Store) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	err := s.conn(ctx).Model(&models.Payment{}).Where("id = ?", payment.ID).
		Select("bill_id", "tenant_id", "amount_paid", "payment_date", "payment_method", "notes").
		Updates(payment).Error
	if err != nil {
		return fmt.Errorf("failed to update payment %d: %w", payment.ID, translate(err))
	}
	return nil
}

func (s *Store) DeletePayment(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Payment{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete payment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: payment %d", ErrNotFound, id)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, billID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.conn(ctx).Where("bill_id = ?", billID).Order("payment_date").Order("id").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments of bill %d: %w", billID, err)
	}
	return payments, nil
}

// SumPaymentsForBill totals every payment recorded against a bill.
func (s *Store) SumPaymentsForBill(ctx context.Context, billID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.conn(ctx).Model(&models.Payment{}).Where("bill_id = ?", billID).Pluck("amount_paid", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total payments of bill %d: %w", billID, err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

// SumPaymentsSince totals payments dated on or after since.
func (s *Store) SumPaymentsSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.conn(ctx).Model(&models.Payment{}).
		Where("payment_date >= ?", models.NewDate(since)).
		Pluck("amount_paid", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total payments: %w", err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}
