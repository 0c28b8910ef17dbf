package migration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

type TestModel struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

type MockModelRegistry struct{}

func (r *MockModelRegistry) GetModels() map[string]interface{} {
	return map[string]interface{}{
		"TestModel": TestModel{},
	}
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")+"?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestValidateRegistry(t *testing.T) {
	t.Cleanup(func() { GlobalModelRegistry = nil })

	GlobalModelRegistry = nil
	assert.Error(t, ValidateRegistry())

	GlobalModelRegistry = &MockModelRegistry{}
	assert.NoError(t, ValidateRegistry())
}

func TestRegisteredMigrationsAreOrdered(t *testing.T) {
	migrations := GetRegisteredMigrations()
	require.Len(t, migrations, 2)
	assert.Equal(t, "create_ledger_tables", migrations[0].Name)
	assert.Equal(t, "backfill_bill_billing_period", migrations[1].Name)
}

func TestMigratorUpDown(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db)

	applied, err := m.Up()
	require.NoError(t, err)
	assert.Len(t, applied, 2)
	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model))
	}

	applied, err = m.Up()
	require.NoError(t, err)
	assert.Empty(t, applied)

	statuses, err := m.Status()
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Applied, s.Migration.Name)
	}

	reverted, err := m.Down()
	require.NoError(t, err)
	assert.Equal(t, "backfill_bill_billing_period", reverted.Name)

	reverted, err = m.Down()
	require.NoError(t, err)
	assert.Equal(t, "create_ledger_tables", reverted.Name)
	assert.False(t, db.Migrator().HasTable(&models.Bill{}))

	_, err = m.Down()
	assert.Error(t, err)

	history, err := m.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMigratorRollsBackFailedMigration(t *testing.T) {
	db := openDB(t)
	m := &Migrator{db: db}
	m.Register(&Migration{
		Version: "1",
		Name:    "create_test_models",
		Up:      func(tx *gorm.DB) error { return tx.AutoMigrate(&TestModel{}) },
		Down:    func(tx *gorm.DB) error { return tx.Migrator().DropTable(&TestModel{}) },
	})
	m.Register(&Migration{
		Version: "2",
		Name:    "broken",
		Up:      func(tx *gorm.DB) error { return tx.Exec("SELECT * FROM missing_table").Error },
		Down:    func(tx *gorm.DB) error { return nil },
	})

	applied, err := m.Up()
	assert.Error(t, err)
	require.Len(t, applied, 1)

	pending, err := m.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "broken", pending[0].Name)
}

func TestParseLegacyPeriod(t *testing.T) {
	year, month, ok := ParseLegacyPeriod("Room Rent for October 2024 (Room 101).")
	require.True(t, ok)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 10, month)

	_, _, ok = ParseLegacyPeriod("Electricity charge for period ending 2024-10-31.")
	assert.False(t, ok)
}

func TestBackfillBillingPeriod(t *testing.T) {
	db := openDB(t)
	require.NoError(t, createLedgerTables(db))

	tenant := models.Tenant{FullName: "Ana", LeaseStartDate: models.NewDate(mustDate(t, "2024-01-01")), IsActive: true}
	require.NoError(t, db.Create(&tenant).Error)

	due := models.NewDate(mustDate(t, "2024-10-05"))
	legacy := []models.Bill{
		{TenantID: tenant.ID, BillType: models.BillTypeRent, Amount: decimal.NewFromInt(100), DueDate: due, Description: "Room Rent for October 2024 (Room 101)."},
		{TenantID: tenant.ID, BillType: models.BillTypeRent, Amount: decimal.NewFromInt(100), DueDate: due, Description: "Room Rent for October 2024 (Room 101)."},
		{TenantID: tenant.ID, BillType: models.BillTypeWater, Amount: decimal.NewFromInt(20), DueDate: due, Description: "Monthly fixed water charge for October 2024."},
		{TenantID: tenant.ID, BillType: models.BillTypeOther, Amount: decimal.NewFromInt(5), DueDate: due, Description: "Key replacement for October 2024"},
	}
	for i := range legacy {
		require.NoError(t, db.Omit("Tenant").Create(&legacy[i]).Error)
	}

	require.NoError(t, backfillBillingPeriod(db))

	var bills []models.Bill
	require.NoError(t, db.Order("id").Find(&bills).Error)
	require.Len(t, bills, 4)
	for _, b := range bills[:3] {
		require.True(t, b.HasPeriod(), b.Description)
		assert.Equal(t, 2024, *b.PeriodYear)
		assert.Equal(t, 10, *b.PeriodMonth)
	}
	assert.Equal(t, 0, bills[0].PeriodSeq)
	assert.Equal(t, 1, bills[1].PeriodSeq)
	assert.Equal(t, 0, bills[2].PeriodSeq)
	assert.False(t, bills[3].HasPeriod())
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}
