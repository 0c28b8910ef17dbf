// Package config loads runtime settings from the environment and opens the database.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	DatabaseURL string
	DBDriver    string
	DBDebug     bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string

	HTTPAddr  string
	JWTSecret string

	RentSchedule         string
	WaterSchedule        string
	WiFiSchedule         string
	ReminderSchedule     string
	ReminderUpcomingDays int
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	raw := GetEnv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// Load reads the configuration. The .env file, if any, must already be loaded.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      GetEnv("DATABASE_URL"),
		DBDriver:         strings.ToLower(GetEnv("DB_DRIVER")),
		SMTPHost:         GetEnv("SMTP_HOST"),
		SMTPUsername:     GetEnv("SMTP_USERNAME"),
		SMTPPassword:     GetEnv("SMTP_PASSWORD"),
		FromEmail:        GetEnv("DEFAULT_FROM_EMAIL", "noreply@boardinghouse.local"),
		HTTPAddr:         GetEnv("HTTP_ADDR", ":8080"),
		JWTSecret:        GetEnv("JWT_SECRET"),
		RentSchedule:     GetEnv("RENT_SCHEDULE", "5 0 1 * *"),
		WaterSchedule:    GetEnv("WATER_SCHEDULE", "10 0 1 * *"),
		WiFiSchedule:     GetEnv("WIFI_SCHEDULE", "15 0 1 * *"),
		ReminderSchedule: GetEnv("REMINDER_SCHEDULE", "0 8 * * *"),
	}

	cfg.DBDebug, _ = strconv.ParseBool(GetEnv("DB_DEBUG", "false"))

	var err error
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.ReminderUpcomingDays, err = getInt("REMINDER_UPCOMING_DAYS", 3); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Driver resolves the database driver from DB_DRIVER or the shape of DATABASE_URL.
func (c *Config) Driver() string {
	if c.DBDriver != "" {
		return c.DBDriver
	}
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"),
		strings.HasPrefix(c.DatabaseURL, "postgresql://"),
		strings.Contains(c.DatabaseURL, "host="):
		return "postgres"
	}
	return "sqlite"
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Driver() {
	case "postgres":
		return postgres.Open(c.DatabaseURL), nil
	case "sqlite":
		dsn := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
		if !strings.Contains(dsn, "_foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
}

// OpenDB connects to the configured database.
func (c *Config) OpenDB() (*gorm.DB, error) {
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment or .env file")
	}
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	}
	if c.DBDebug {
		gormCfg.Logger = NewGormLogger()
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if c.Driver() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}
