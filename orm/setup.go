package orm

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the cache database, migrates the cache table and drops
// expired rows.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", driver, err)
	}
	if err := db.AutoMigrate(&APICache{}); err != nil {
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	if err := CleanupCache(db, time.Now()); err != nil {
		return nil, fmt.Errorf("cleanup cache: %w", err)
	}
	return db, nil
}
