package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"accountbook/internal/config"
)

// Open connects with the configured driver and brings the schema up to date.
// MySQL is migrated with the versioned scripts; SQLite is auto-migrated and seeded.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	default:
		if err := RunMigrations(cfg.MySQLDSN); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return NewMySQL(cfg.MySQLDSN)
	}
}

// Ping checks that the pool can reach the database.
func Ping(ctx context.Context, gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying pool.
func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
