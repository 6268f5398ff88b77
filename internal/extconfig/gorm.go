package extconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/otcheredev/pcd-manager/internal/codec"
)

// extendedConfigRow is the gorm model backing GormRegistry, one row per
// registered (system_id, config_report_id) pair.
type extendedConfigRow struct {
	Key            string `gorm:"primaryKey"`
	SystemID       []byte
	ConfigReportID uint16
	ObjectsJSON    []byte
}

func (extendedConfigRow) TableName() string { return "extended_configs" }

// GormRegistry is the production Registry implementation: postgres for
// a real deployment, sqlite (glebarez/sqlite, cgo-free) for tests and
// single-file deployments, selected by which DSN the caller opens.
type GormRegistry struct {
	db *gorm.DB
}

// NewPostgresRegistry opens a gorm connection to dsn using the postgres
// driver and verifies the extended_configs table exists (migrations are
// applied separately by internal/database via golang-migrate).
func NewPostgresRegistry(dsn string) (*GormRegistry, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("extconfig: open postgres: %w", err)
	}
	if !db.Migrator().HasTable(&extendedConfigRow{}) {
		return nil, fmt.Errorf("extconfig: extended_configs table missing; apply database migrations first")
	}
	return &GormRegistry{db: db}, nil
}

// NewSQLiteRegistry opens a gorm connection to a sqlite file at path.
// AutoMigrate is acceptable here (unlike postgres) since sqlite
// deployments are single-node and don't share a migration history.
func NewSQLiteRegistry(path string) (*GormRegistry, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("extconfig: open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&extendedConfigRow{}); err != nil {
		return nil, fmt.Errorf("extconfig: automigrate sqlite: %w", err)
	}
	return &GormRegistry{db: db}, nil
}

func (g *GormRegistry) Lookup(ctx context.Context, systemID []byte, configReportID uint16) ([]codec.ConfigObject, bool, error) {
	var row extendedConfigRow
	err := g.db.WithContext(ctx).First(&row, "key = ?", key(systemID, configReportID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("extconfig: gorm lookup: %w", err)
	}
	objects, err := unmarshalObjects(row.ObjectsJSON)
	if err != nil {
		return nil, false, err
	}
	return objects, true, nil
}

func (g *GormRegistry) Register(ctx context.Context, systemID []byte, configReportID uint16, objects []codec.ConfigObject) error {
	data, err := marshalObjects(objects)
	if err != nil {
		return err
	}
	row := extendedConfigRow{
		Key:            key(systemID, configReportID),
		SystemID:       systemID,
		ConfigReportID: configReportID,
		ObjectsJSON:    data,
	}
	err = g.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("extconfig: gorm register: %w", err)
	}
	return nil
}
