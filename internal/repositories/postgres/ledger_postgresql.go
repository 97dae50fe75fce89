package postgres

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
)

type LedgerPostgreSQL struct {
	helpers *SharedHelpers
}

func NewLedgerPostgreSQL(db *gorm.DB) repositories.LedgerRepository {
	return &LedgerPostgreSQL{helpers: NewSharedHelpers(db)}
}

// Append is the only write the ledger supports
func (l *LedgerPostgreSQL) Append(ctx context.Context, tx *gorm.DB, entry *models.PointsLedgerEntry) error {
	return repositories.MapError(l.helpers.Conn(ctx, tx).Create(entry).Error)
}

func (l *LedgerPostgreSQL) SumByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	var total int64
	err := l.helpers.Conn(ctx, tx).
		Model(&models.PointsLedgerEntry{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, repositories.MapError(err)
}

func (l *LedgerPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PointsLedgerEntry, error) {
	var entries []*models.PointsLedgerEntry
	if err := l.helpers.Conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return entries, nil
}

const learnerStandingsQuery = `
SELECT u.id AS user_id,
       u.name AS name,
       COALESCE((SELECT SUM(pl.points) FROM points_ledger pl WHERE pl.user_id = u.id), 0) AS total_points,
       (SELECT COUNT(*) FROM course_progress cp WHERE cp.user_id = u.id AND cp.progress_percentage >= 100) AS completed_course_count
FROM users u
WHERE u.role = ?
ORDER BY total_points DESC, completed_course_count DESC, u.id ASC
LIMIT ?`

// GetLearnerStandings computes totals at query time straight from the ledger
func (l *LedgerPostgreSQL) GetLearnerStandings(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.LearnerStanding, error) {
	var rows []repositories.LearnerStanding
	if err := l.helpers.Conn(ctx, tx).
		Raw(learnerStandingsQuery, models.RoleLearner, limit).
		Scan(&rows).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return rows, nil
}
