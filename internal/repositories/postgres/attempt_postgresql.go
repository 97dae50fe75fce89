package postgres

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return repositories.MapError(a.helpers.Conn(ctx, tx).Create(attempt).Error)
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.helpers.Conn(ctx, tx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID string) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.helpers.Conn(ctx, tx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetNextAttemptNumber(ctx context.Context, tx *gorm.DB, userID, quizID string) (int, error) {
	var count int64
	if err := a.helpers.Conn(ctx, tx).
		Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error; err != nil {
		return 0, repositories.MapError(err)
	}
	return int(count) + 1, nil
}

func (a *AttemptPostgreSQL) SumTimeSpent(ctx context.Context, tx *gorm.DB, userID, quizID string) (int64, error) {
	var total int64
	err := a.helpers.Conn(ctx, tx).
		Model(&models.QuizAttempt{}).
		Select("COALESCE(SUM(time_spent_seconds), 0)").
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Scan(&total).Error
	return total, repositories.MapError(err)
}

func (a *AttemptPostgreSQL) CountAttemptedQuizzes(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error) {
	var count int64
	err := a.helpers.Conn(ctx, tx).
		Model(&models.QuizAttempt{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.user_id = ? AND quizzes.course_id = ?", userID, courseID).
		Distinct("quiz_attempts.quiz_id").
		Count(&count).Error
	return count, repositories.MapError(err)
}

func (a *AttemptPostgreSQL) GetLearnerAttemptCounts(ctx context.Context, tx *gorm.DB, quizID string) ([]repositories.LearnerAttemptCount, error) {
	var rows []repositories.LearnerAttemptCount
	err := a.helpers.Conn(ctx, tx).
		Model(&models.QuizAttempt{}).
		Select("user_id, quiz_id, COUNT(*) AS attempts, COALESCE(SUM(time_spent_seconds), 0) AS time_spent_seconds").
		Where("quiz_id = ?", quizID).
		Group("user_id, quiz_id").
		Order("user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, repositories.MapError(err)
	}
	return rows, nil
}
