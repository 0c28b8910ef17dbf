// Package report computes the financial summary and occupancy views.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

type FinancialSummary struct {
	TotalUnpaidAllTime decimal.Decimal `json:"total_unpaid_all_time"`
	TotalPaidThisMonth decimal.Decimal `json:"total_paid_this_month"`
	CurrentMonthName   string          `json:"current_month_name"`
}

type Occupancy struct {
	TotalRooms    int64  `json:"total_rooms"`
	OccupiedRooms int64  `json:"occupied_rooms_count"`
	VacantRooms   int64  `json:"vacant_rooms_count"`
	OccupancyRate string `json:"occupancy_rate"`
}

type Service struct {
	store *store.Store
	clock billing.Clock
}

func NewService(s *store.Store, clock billing.Clock) *Service {
	if clock == nil {
		clock = billing.SystemClock{}
	}
	return &Service{store: s, clock: clock}
}

// FinancialSummary totals every unpaid bill and the payments dated in the current month.
func (s *Service) FinancialSummary(ctx context.Context) (*FinancialSummary, error) {
	today := billing.Today(s.clock)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	unpaid, err := s.store.UnpaidTotal(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.store.SumPaymentsSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}
	return &FinancialSummary{
		TotalUnpaidAllTime: unpaid,
		TotalPaidThisMonth: paid,
		CurrentMonthName:   fmt.Sprintf("%s %d", today.Month(), today.Year()),
	}, nil
}

func (s *Service) Occupancy(ctx context.Context) (*Occupancy, error) {
	total, err := s.store.CountRooms(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.store.CountOccupiedRooms(ctx)
	if err != nil {
		return nil, err
	}
	vacant, err := s.store.CountVacantRooms(ctx)
	if err != nil {
		return nil, err
	}
	return &Occupancy{
		TotalRooms:    total,
		OccupiedRooms: occupied,
		VacantRooms:   vacant,
		OccupancyRate: Rate(occupied, total),
	}, nil
}

// Rate formats occupied/total as a percentage with two decimals; "0.00%" when there are no rooms.
func Rate(occupied, total int64) string {
	if total == 0 {
		return "0.00%"
	}
	pct := decimal.NewFromInt(occupied).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total))
	return pct.StringFixed(2) + "%"
}
