package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (e *EnrollmentPostgreSQL) Get(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	if err := e.helpers.Conn(ctx, tx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.CourseEnrollment, error) {
	var enrollments []*models.CourseEnrollment
	if err := e.helpers.Conn(ctx, tx).
		Where("course_id = ?", courseID).
		Order("user_id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) Enroll(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (bool, error) {
	enrollment := models.CourseEnrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     models.EnrollmentYetToStart,
		EnrolledAt: at,
		UpdatedAt:  at,
	}

	result := e.helpers.Conn(ctx, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if result.Error != nil {
		return false, repositories.MapError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (e *EnrollmentPostgreSQL) LockInProgress(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (*models.CourseEnrollment, error) {
	if _, err := e.Enroll(ctx, tx, userID, courseID, at); err != nil {
		return nil, err
	}

	conn := e.helpers.Conn(ctx, tx)

	var enrollment models.CourseEnrollment
	if err := conn.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, repositories.MapError(err)
	}

	if enrollment.Status == models.EnrollmentYetToStart {
		if err := conn.Model(&models.CourseEnrollment{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Updates(map[string]interface{}{
				"status":     models.EnrollmentInProgress,
				"updated_at": at,
			}).Error; err != nil {
			return nil, repositories.MapError(err)
		}
		enrollment.Status = models.EnrollmentInProgress
		enrollment.UpdatedAt = at
	}

	return &enrollment, nil
}

// MarkCompleted relies on the conditional update to serialize concurrent
// completions: the second writer re-evaluates status and affects no rows.
// A missing row is inserted with ON CONFLICT DO NOTHING so a concurrent first
// completion or enrollment never surfaces as a unique violation.
func (e *EnrollmentPostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (bool, error) {
	conn := e.helpers.Conn(ctx, tx)

	complete := func() (bool, error) {
		result := conn.Model(&models.CourseEnrollment{}).
			Where("user_id = ? AND course_id = ? AND status <> ?", userID, courseID, models.EnrollmentCompleted).
			Updates(map[string]interface{}{
				"status":       models.EnrollmentCompleted,
				"completed_at": at,
				"updated_at":   at,
			})
		if result.Error != nil {
			return false, repositories.MapError(result.Error)
		}
		return result.RowsAffected > 0, nil
	}

	transitioned, err := complete()
	if err != nil || transitioned {
		return transitioned, err
	}

	enrollment := models.CourseEnrollment{
		UserID:      userID,
		CourseID:    courseID,
		Status:      models.EnrollmentCompleted,
		EnrolledAt:  at,
		CompletedAt: &at,
		UpdatedAt:   at,
	}
	result := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if result.Error != nil {
		return false, repositories.MapError(result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// The row appeared concurrently; it may still be YET_TO_START or IN_PROGRESS
	return complete()
}
