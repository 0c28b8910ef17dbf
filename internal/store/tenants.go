package store

import (
	"context"
	"fmt"
	"time"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

// FixedCharge names the per-tenant flat charge columns.
type FixedCharge string

const (
	FixedWater FixedCharge = "fixed_water_charge"
	FixedWiFi  FixedCharge = "fixed_wifi_charge"
)

func (s *Store) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	if tenant.RoomID != nil {
		if _, err := s.GetRoom(ctx, *tenant.RoomID); err != nil {
			return fmt.Errorf("room %d: %w", *tenant.RoomID, err)
		}
	}
	if err := s.create(ctx, tenant); err != nil {
		return fmt.Errorf("failed to create tenant %s: %w", tenant.FullName, err)
	}
	return nil
}

// GetTenant loads a tenant with its room.
func (s *Store) GetTenant(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.conn(ctx).Preload("Room").First(&tenant, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (s *Store) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	return translate(s.conn(ctx).Omit("CreatedAt", "Room").Save(tenant).Error)
}

// DeleteTenant removes a tenant together with the bills, payments and readings it owns.
func (s *Store) DeleteTenant(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db := tx.conn(ctx)
		if err := db.Where("tenant_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payments of tenant %d: %w", id, err)
		}
		if err := db.Where("tenant_id = ?", id).Delete(&models.ElectricityReading{}).Error; err != nil {
			return fmt.Errorf("failed to delete readings of tenant %d: %w", id, err)
		}
		if err := db.Where("tenant_id = ?", id).Delete(&models.Bill{}).Error; err != nil {
			return fmt.Errorf("failed to delete bills of tenant %d: %w", id, err)
		}
		res := db.Delete(&models.Tenant{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete tenant %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: tenant %d", ErrNotFound, id)
		}
		return nil
	})
}

// TenantFilter narrows ListTenants.
type TenantFilter struct {
	ActiveOnly bool
	RoomID     *uint
	Search     string
}

func (s *Store) ListTenants(ctx context.Context, f TenantFilter) ([]models.Tenant, error) {
	q := s.conn(ctx).Preload("Room").Order("full_name")
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ? OR phone_number LIKE ?", like, like, like)
	}
	var tenants []models.Tenant
	if err := q.Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// ListRentEligibleTenants returns active tenants with an assigned room whose lease covers
// periodStart and whose room has a positive base rent.
func (s *Store) ListRentEligibleTenants(ctx context.Context, periodStart time.Time) ([]models.Tenant, error) {
	start := models.NewDate(periodStart)
	var tenants []models.Tenant
	err := s.conn(ctx).
		Preload("Room").
		Joins("JOIN rooms ON rooms.id = tenants.room_id").
		Where("tenants.is_active = ?", true).
		Where("tenants.lease_start_date <= ?", start).
		Where("tenants.lease_end_date IS NULL OR tenants.lease_end_date >= ?", start).
		Where("rooms.base_rent > 0").
		Order("tenants.id").
		Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rent eligible tenants: %w", err)
	}
	return tenants, nil
}

// ListFixedChargeTenants returns active tenants whose given fixed charge is set and positive.
func (s *Store) ListFixedChargeTenants(ctx context.Context, charge FixedCharge) ([]models.Tenant, error) {
	switch charge {
	case FixedWater, FixedWiFi:
	default:
		return nil, fmt.Errorf("unknown fixed charge column %q", charge)
	}
	col := string(charge)
	var tenants []models.Tenant
	err := s.conn(ctx).
		Where("is_active = ?", true).
		Where(col + " IS NOT NULL AND " + col + " > 0").
		Order("id").
		Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants with %s: %w", col, err)
	}
	return tenants, nil
}
