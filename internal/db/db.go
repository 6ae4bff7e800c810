package db

import (
	"fmt"

	"vibermm/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite file at path, migrates every model, backfills
// columns added after a store was first created and seeds empty tables with
// the console's mock data.
func Open(path string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// A single connection keeps in-memory databases coherent and serialises
	// writers on the file.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	backfill(db, log)

	if err := Seed(db); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	return db, nil
}

func backfill(db *gorm.DB, log *zap.Logger) {
	// Backfill empty device status values
	if err := db.Model(&models.Device{}).
		Where("status IS NULL OR status = ''").
		Updates(map[string]interface{}{"status": models.StatusOffline}).Error; err != nil {
		log.Warn("failed to backfill device status", zap.Error(err))
	}

	if err := db.Model(&models.PatchStatus{}).
		Where("status IS NULL OR status = ''").
		Updates(map[string]interface{}{"status": models.PatchNotAssessed}).Error; err != nil {
		log.Warn("failed to backfill patch status", zap.Error(err))
	}

	if err := db.Model(&models.Alert{}).
		Where("status IS NULL OR status = ''").
		Updates(map[string]interface{}{"status": "new"}).Error; err != nil {
		log.Warn("failed to backfill alert status", zap.Error(err))
	}
}
