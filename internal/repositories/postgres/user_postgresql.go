package postgres

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return repositories.MapError(u.helpers.Conn(ctx, tx).Create(user).Error)
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.helpers.Conn(ctx, tx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) ListByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.User, error) {
	var users []*models.User
	if err := u.helpers.Conn(ctx, tx).
		Where("role = ?", role).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return users, nil
}

type BadgePostgreSQL struct {
	helpers *SharedHelpers
}

func NewBadgePostgreSQL(db *gorm.DB) repositories.BadgeRepository {
	return &BadgePostgreSQL{helpers: NewSharedHelpers(db)}
}

func (b *BadgePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]models.Badge, error) {
	var badges []models.Badge
	if err := b.helpers.Conn(ctx, tx).Order("min_points ASC").Find(&badges).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return badges, nil
}

// SeedDefaults inserts the default tiers when the table is empty
func (b *BadgePostgreSQL) SeedDefaults(ctx context.Context, tx *gorm.DB) error {
	conn := b.helpers.Conn(ctx, tx)

	var count int64
	if err := conn.Model(&models.Badge{}).Count(&count).Error; err != nil {
		return repositories.MapError(err)
	}
	if count > 0 {
		return nil
	}

	badges := models.DefaultBadges()
	return repositories.MapError(conn.Create(&badges).Error)
}
