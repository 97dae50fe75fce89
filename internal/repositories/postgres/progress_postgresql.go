package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	helpers *SharedHelpers
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{helpers: NewSharedHelpers(db)}
}

// ===== LESSON PROGRESS =====

func (p *ProgressPostgreSQL) GetLessonProgress(ctx context.Context, tx *gorm.DB, userID, lessonID string) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := p.helpers.Conn(ctx, tx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &progress, nil
}

// UpsertLessonCompletion increments time in SQL so concurrent completions never
// overwrite each other, and never writes is_completed = false
func (p *ProgressPostgreSQL) UpsertLessonCompletion(ctx context.Context, tx *gorm.DB, userID, lessonID string, timeSpent int, at time.Time) (*models.LessonProgress, error) {
	conn := p.helpers.Conn(ctx, tx)

	row := models.LessonProgress{
		UserID:           userID,
		LessonID:         lessonID,
		IsCompleted:      true,
		TimeSpentSeconds: timeSpent,
		CompletedAt:      &at,
		CreatedAt:        at,
		UpdatedAt:        at,
	}

	err := conn.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_completed":       true,
			"time_spent_seconds": gorm.Expr("lesson_progress.time_spent_seconds + ?", timeSpent),
			"completed_at":       at,
			"updated_at":         at,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, repositories.MapError(err)
	}

	return p.GetLessonProgress(ctx, tx, userID, lessonID)
}

func (p *ProgressPostgreSQL) CountCompletedLessons(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error) {
	var count int64
	err := p.helpers.Conn(ctx, tx).
		Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.is_completed = ? AND lessons.course_id = ?",
			userID, true, courseID).
		Count(&count).Error
	return count, repositories.MapError(err)
}

// GetLessonCompletionCounts returns one row per lesson of the course in position
// order, including lessons nobody completed yet
func (p *ProgressPostgreSQL) GetLessonCompletionCounts(ctx context.Context, tx *gorm.DB, courseID string) ([]repositories.LessonCompletionCount, error) {
	var rows []repositories.LessonCompletionCount
	err := p.helpers.Conn(ctx, tx).
		Table("lessons").
		Select("lessons.id AS lesson_id, "+
			"COUNT(lesson_progress.user_id) AS completed_count, "+
			"COALESCE(AVG(lesson_progress.time_spent_seconds), 0) AS average_time_spent").
		Joins("LEFT JOIN lesson_progress ON lesson_progress.lesson_id = lessons.id AND lesson_progress.is_completed = ?", true).
		Where("lessons.course_id = ?", courseID).
		Group("lessons.id, lessons.position").
		Order("lessons.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, repositories.MapError(err)
	}
	return rows, nil
}

// ===== COURSE PROGRESS =====

func (p *ProgressPostgreSQL) GetCourseProgress(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	if err := p.helpers.Conn(ctx, tx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) ListCourseProgressByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.CourseProgress, error) {
	var rows []*models.CourseProgress
	if err := p.helpers.Conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return rows, nil
}

func (p *ProgressPostgreSQL) UpsertCourseProgress(ctx context.Context, tx *gorm.DB, progress *models.CourseProgress) error {
	err := p.helpers.Conn(ctx, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lessons_completed",
			"total_lessons",
			"quizzes_completed",
			"total_quizzes",
			"progress_percentage",
			"last_accessed_at",
		}),
	}).Create(progress).Error
	return repositories.MapError(err)
}

func (p *ProgressPostgreSQL) LockCourseProgress(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) error {
	conn := p.helpers.Conn(ctx, tx)

	placeholder := models.CourseProgress{
		UserID:         userID,
		CourseID:       courseID,
		LastAccessedAt: at,
	}
	if err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&placeholder).Error; err != nil {
		return repositories.MapError(err)
	}

	var locked models.CourseProgress
	err := conn.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&locked).Error
	return repositories.MapError(err)
}
