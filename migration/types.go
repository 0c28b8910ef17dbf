package migration

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

type MigrationRecord struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// MigrationStatus pairs a known migration with whether it has been applied.
type MigrationStatus struct {
	Migration *Migration
	Applied   bool
	AppliedAt *time.Time
}

var (
	globalMigrations = make([]*Migration, 0)
	registryMutex    sync.RWMutex
)

func RegisterMigration(migration *Migration) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	globalMigrations = append(globalMigrations, migration)
}

// GetRegisteredMigrations returns a copy of the registry ordered by version.
func GetRegisteredMigrations() []*Migration {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	migrations := make([]*Migration, len(globalMigrations))
	copy(migrations, globalMigrations)
	sortMigrations(migrations)
	return migrations
}

func ResetMigrations() {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	globalMigrations = make([]*Migration, 0)
}

func sortMigrations(migrations []*Migration) {
	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
}

type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: GetRegisteredMigrations(),
	}
}

func (m *Migrator) Register(migration *Migration) {
	m.migrations = append(m.migrations, migration)
	sortMigrations(m.migrations)
}

func (m *Migrator) Migrations() []*Migration {
	return m.migrations
}

func (m *Migrator) ensureVersionTable() error {
	return m.db.AutoMigrate(&MigrationRecord{})
}

func (m *Migrator) appliedRecords() (map[string]MigrationRecord, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, fmt.Errorf("failed to create migration table: %v", err)
	}

	var records []MigrationRecord
	if err := m.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %v", err)
	}

	applied := make(map[string]MigrationRecord, len(records))
	for _, record := range records {
		applied[record.Version] = record
	}
	return applied, nil
}

func (m *Migrator) GetAppliedVersions() (map[string]bool, error) {
	records, err := m.appliedRecords()
	if err != nil {
		return nil, err
	}
	versions := make(map[string]bool, len(records))
	for version := range records {
		versions[version] = true
	}
	return versions, nil
}

// Pending returns the migrations not yet applied, in version order.
func (m *Migrator) Pending() ([]*Migration, error) {
	applied, err := m.GetAppliedVersions()
	if err != nil {
		return nil, err
	}

	var pending []*Migration
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction, and returns the ones applied.
func (m *Migrator) Up() ([]*Migration, error) {
	pending, err := m.Pending()
	if err != nil {
		return nil, err
	}

	var done []*Migration
	for _, mr := range pending {
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mr.Up(tx); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", mr.Name, err)
			}
			record := MigrationRecord{
				Version:   mr.Version,
				Name:      mr.Name,
				AppliedAt: time.Now().UTC(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", mr.Name, err)
			}
			return nil
		})
		if err != nil {
			return done, err
		}
		done = append(done, mr)
	}
	return done, nil
}

// Down reverts the most recently applied migration and returns it.
func (m *Migrator) Down() (*Migration, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}

	var lastRecord MigrationRecord
	if err := m.db.Order("applied_at DESC").Order("version DESC").First(&lastRecord).Error; err != nil {
		return nil, fmt.Errorf("no migrations to revert")
	}

	var targetMigration *Migration
	for _, migration := range m.migrations {
		if migration.Version == lastRecord.Version {
			targetMigration = migration
			break
		}
	}

	if targetMigration == nil {
		return nil, fmt.Errorf("migration for version %s not found", lastRecord.Version)
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := targetMigration.Down(tx); err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", targetMigration.Name, err)
		}
		if err := tx.Delete(&lastRecord).Error; err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targetMigration, nil
}

func (m *Migrator) Status() ([]MigrationStatus, error) {
	applied, err := m.appliedRecords()
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		status := MigrationStatus{Migration: migration}
		if record, ok := applied[migration.Version]; ok {
			at := record.AppliedAt
			status.Applied = true
			status.AppliedAt = &at
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// History lists applied migrations, most recent first.
func (m *Migrator) History() ([]MigrationRecord, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}
	var records []MigrationRecord
	if err := m.db.Order("applied_at DESC").Order("version DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get migration history: %v", err)
	}
	return records, nil
}

// ModelRegistry exposes the persisted models by name.
type ModelRegistry interface {
	GetModels() map[string]interface{}
}

// GlobalModelRegistry is set by the binary before schema validation runs.
var GlobalModelRegistry ModelRegistry

func ValidateRegistry() error {
	if GlobalModelRegistry == nil {
		return fmt.Errorf("no model registry provided. Please set migration.GlobalModelRegistry in main.go")
	}
	return nil
}
