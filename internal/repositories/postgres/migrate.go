package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table and seeds badge tiers
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := NewBadgePostgreSQL(db).SeedDefaults(ctx, nil); err != nil {
		return fmt.Errorf("failed to seed badges: %w", err)
	}
	return nil
}
