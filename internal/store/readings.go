package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

func (s *Store) CreateReading(ctx context.Context, reading *models.ElectricityReading) error {
	if err := s.create(ctx, reading); err != nil {
		return fmt.Errorf("failed to save reading for tenant %d: %w", reading.TenantID, err)
	}
	return nil
}

func (s *Store) GetReading(ctx context.Context, id uint) (*models.ElectricityReading, error) {
	var reading models.ElectricityReading
	if err := s.conn(ctx).First(&reading, id).Error; err != nil {
		return nil, translate(err)
	}
	return &reading, nil
}

// LatestBilledReading returns the tenant's most recent billed reading, or nil if there is none.
// Ties on reading date are broken by creation time then id.
func (s *Store) LatestBilledReading(ctx context.Context, tenantID uint) (*models.ElectricityReading, error) {
	var reading models.ElectricityReading
	err := s.conn(ctx).
		Where("tenant_id = ? AND is_billed = ?", tenantID, true).
		Order("reading_date DESC").Order("created_at DESC").Order("id DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last reading for tenant %d: %w", tenantID, err)
	}
	return &reading, nil
}

// ReadingExists reports whether the tenant already has a reading on the given date.
func (s *Store) ReadingExists(ctx context.Context, tenantID uint, date time.Time) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.ElectricityReading{}).
		Where("tenant_id = ? AND reading_date = ?", tenantID, models.NewDate(date)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check readings for tenant %d: %w", tenantID, err)
	}
	return n > 0, nil
}

func (s *Store) ListReadings(ctx context.Context, tenantID uint) ([]models.ElectricityReading, error) {
	var readings []models.ElectricityReading
	err := s.conn(ctx).Where("tenant_id = ?", tenantID).Order("reading_date DESC").Order("id DESC").Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list readings for tenant %d: %w", tenantID, err)
	}
	return readings, nil
}
