// Package testutil opens migrated throwaway databases and seeds ledger fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beesaferoot/boardinghouse/internal/config"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
	"github.com/beesaferoot/boardinghouse/migration"
)

// DSN returns a fresh sqlite database path under the test's temp dir.
func DSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ledger.db")
}

// NewDB opens a sqlite database with every migration applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return MigrateDSN(t, DSN(t))
}

// MigrateDSN opens the sqlite database at dsn and applies every migration.
func MigrateDSN(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := (&config.Config{DatabaseURL: dsn, DBDriver: "sqlite"}).OpenDB()
	require.NoError(t, err)
	_, err = migration.NewMigrator(db).Up()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewStore is NewDB wrapped in a Store.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(NewDB(t))
}

func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func NullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(Dec(s))
}

func Room(t *testing.T, s *store.Store, number, rent string) *models.Room {
	t.Helper()
	room := &models.Room{RoomNumber: number, BaseRent: Dec(rent)}
	require.NoError(t, s.CreateRoom(context.Background(), room))
	return room
}

// Tenant creates an active tenant; mutate adjusts it before insert.
func Tenant(t *testing.T, s *store.Store, name string, room *models.Room, leaseStart string, mutate ...func(*models.Tenant)) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		FullName:       name,
		LeaseStartDate: models.NewDate(Date(t, leaseStart)),
		IsActive:       true,
	}
	if room != nil {
		tenant.RoomID = &room.ID
	}
	for _, fn := range mutate {
		fn(tenant)
	}
	require.NoError(t, s.CreateTenant(context.Background(), tenant))
	return tenant
}

// Bill creates an unpaid non-periodic bill.
func Bill(t *testing.T, s *store.Store, tenant *models.Tenant, billType models.BillType, amount, due string) *models.Bill {
	t.Helper()
	bill := &models.Bill{
		TenantID: tenant.ID,
		BillType: billType,
		Amount:   Dec(amount),
		DueDate:  models.NewDate(Date(t, due)),
	}
	require.NoError(t, s.CreateBill(context.Background(), bill))
	return bill
}
