package migration

import (
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

func init() {
	RegisterMigration(&Migration{
		Version: "20250101000000",
		Name:    "create_ledger_tables",
		Up:      createLedgerTables,
		Down:    dropLedgerTables,
	})
	RegisterMigration(&Migration{
		Version: "20250115000000",
		Name:    "backfill_bill_billing_period",
		Up:      backfillBillingPeriod,
		Down:    clearBillingPeriod,
	})
}

func createLedgerTables(tx *gorm.DB) error {
	return tx.AutoMigrate(models.All()...)
}

func dropLedgerTables(tx *gorm.DB) error {
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := tx.Migrator().DropTable(all[i]); err != nil {
			return err
		}
	}
	return nil
}

// legacyPeriod matches the month label older recurring bills carried only in their description,
// e.g. "Room Rent for October 2024 (Room 101)."
var legacyPeriod = regexp.MustCompile(`for (January|February|March|April|May|June|July|August|September|October|November|December) (\d{4})`)

var recurringTypes = []models.BillType{models.BillTypeRent, models.BillTypeWater, models.BillTypeWiFi}

// ParseLegacyPeriod extracts the billing month from a recurring bill description.
func ParseLegacyPeriod(description string) (year, month int, ok bool) {
	m := legacyPeriod.FindStringSubmatch(description)
	if m == nil {
		return 0, 0, false
	}
	t, err := time.Parse("January 2006", m[1]+" "+m[2])
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

func backfillBillingPeriod(tx *gorm.DB) error {
	var bills []models.Bill
	err := tx.Where("period_year IS NULL AND bill_type IN ?", recurringTypes).
		Order("id").
		Find(&bills).Error
	if err != nil {
		return err
	}

	for _, bill := range bills {
		year, month, ok := ParseLegacyPeriod(bill.Description)
		if !ok {
			continue
		}

		var count int64
		err := tx.Model(&models.Bill{}).
			Where("tenant_id = ? AND bill_type = ? AND period_year = ? AND period_month = ?", bill.TenantID, bill.BillType, year, month).
			Count(&count).Error
		if err != nil {
			return err
		}

		err = tx.Model(&models.Bill{}).Where("id = ?", bill.ID).Updates(map[string]interface{}{
			"period_year":  year,
			"period_month": month,
			"period_seq":   count,
		}).Error
		if err != nil {
			return fmt.Errorf("bill %d: %w", bill.ID, err)
		}
	}
	return nil
}

func clearBillingPeriod(tx *gorm.DB) error {
	return tx.Model(&models.Bill{}).
		Where("period_year IS NOT NULL").
		Updates(map[string]interface{}{"period_year": nil, "period_month": nil, "period_seq": 0}).Error
}
