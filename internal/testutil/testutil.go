package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory sqlite database migrated with the production model set.
// Each call gets its own database, closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	badges := models.DefaultBadges()
	if err := db.Create(&badges).Error; err != nil {
		tb.Fatalf("failed to seed badges: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// Logger returns a logger that discards output
func Logger(tb testing.TB) *slog.Logger {
	tb.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
