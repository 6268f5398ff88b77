// Package database owns the Postgres connection used by the admin API:
// opening the pool, applying schema migrations via golang-migrate (which
// also create the table the gorm-backed extconfig.Registry reads through
// its own connection), and exposing the *gorm.DB used for queries
// afterwards.
package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds the Postgres connection parameters used by both the
// migration runner and the gorm pool.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel string
}

func (c Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// migrateURL renders cfg as the postgres:// URL golang-migrate's source
// driver expects, as opposed to the libpq key=value form gorm accepts.
func (c Config) migrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Migrate applies every pending migration under migrations/ to the
// database described by cfg. ErrNoChange is not an error: it just means
// the schema was already current.
func Migrate(cfg Config) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("database: open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.migrateURL())
	if err != nil {
		return fmt.Errorf("database: init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database: apply migrations: %w", err)
	}
	log.Info().Msg("database: migrations applied")
	return nil
}

// Connect opens the gorm pool used by the admin API, after Migrate has
// already run. extconfig.NewPostgresRegistry opens its own connection
// from a DSN and does not use this pool.
func Connect(cfg Config) (*gorm.DB, error) {
	var gl gormlogger.Interface
	switch cfg.LogLevel {
	case "silent":
		gl = gormlogger.Default.LogMode(gormlogger.Silent)
	case "error":
		gl = gormlogger.Default.LogMode(gormlogger.Error)
	case "warn":
		gl = gormlogger.Default.LogMode(gormlogger.Warn)
	default:
		gl = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(cfg.dsn()), &gorm.Config{
		Logger:  gl,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
