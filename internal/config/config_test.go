package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "ledger.db")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("HTTP_ADDR", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "5 0 1 * *", cfg.RentSchedule)
	assert.Equal(t, 3, cfg.ReminderUpcomingDays)
	assert.Equal(t, "sqlite", cfg.Driver())
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("REMINDER_UPCOMING_DAYS", "three")
	_, err := Load()
	assert.ErrorContains(t, err, "REMINDER_UPCOMING_DAYS")
}

func TestDriver(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{DatabaseURL: "postgres://u:p@localhost/db"}, "postgres"},
		{Config{DatabaseURL: "host=localhost user=u dbname=db"}, "postgres"},
		{Config{DatabaseURL: "sqlite://ledger.db"}, "sqlite"},
		{Config{DatabaseURL: "anything", DBDriver: "postgres"}, "postgres"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.Driver(), tt.cfg.DatabaseURL)
	}
}

func TestOpenDB(t *testing.T) {
	_, err := (&Config{}).OpenDB()
	assert.EqualError(t, err, "DATABASE_URL not set in environment or .env file")

	cfg := &Config{DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "ledger.db")}
	db, err := cfg.OpenDB()
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}
