// Package commands holds the cobra commands of the boardinghouse binary.
package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beesaferoot/boardinghouse/internal/config"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

func getDB(debug bool) (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.DBDebug = true
	}
	db, err := cfg.OpenDB()
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func getStore() (*store.Store, *config.Config, func(), error) {
	db, cfg, err := getDB(false)
	if err != nil {
		return nil, nil, nil, err
	}
	return store.New(db), cfg, func() { closeDB(db) }, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func parseID(name, s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return uint(id), nil
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", name, s)
	}
	return d, nil
}

// parseOptionalDate returns the zero time for an empty flag.
func parseOptionalDate(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date format for --%s should be YYYY-MM-DD. You provided: %s", flag, s)
	}
	return d, nil
}
