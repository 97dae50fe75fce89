package postgres

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	helpers *SharedHelpers
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return repositories.MapError(c.helpers.Conn(ctx, tx).Create(course).Error)
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	if err := c.helpers.Conn(ctx, tx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) ([]*models.Course, error) {
	var courses []*models.Course
	if err := c.helpers.Conn(ctx, tx).
		Where("instructor_id = ?", instructorID).
		Order("created_at ASC").
		Find(&courses).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return courses, nil
}

// ===== LESSONS =====

func (c *CoursePostgreSQL) CreateLesson(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return repositories.MapError(c.helpers.Conn(ctx, tx).Create(lesson).Error)
}

func (c *CoursePostgreSQL) GetLessonByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := c.helpers.Conn(ctx, tx).Where("id = ?", id).First(&lesson).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &lesson, nil
}

func (c *CoursePostgreSQL) GetLessons(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	if err := c.helpers.Conn(ctx, tx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return lessons, nil
}

func (c *CoursePostgreSQL) CountLessons(ctx context.Context, tx *gorm.DB, courseID string) (int64, error) {
	var count int64
	err := c.helpers.Conn(ctx, tx).Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, repositories.MapError(err)
}

// ===== QUIZZES =====

func (c *CoursePostgreSQL) CreateQuiz(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return repositories.MapError(c.helpers.Conn(ctx, tx).Create(quiz).Error)
}

func (c *CoursePostgreSQL) GetQuizByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.helpers.Conn(ctx, tx).Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &quiz, nil
}

func (c *CoursePostgreSQL) GetQuizzes(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	if err := c.helpers.Conn(ctx, tx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&quizzes).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return quizzes, nil
}

func (c *CoursePostgreSQL) CountQuizzes(ctx context.Context, tx *gorm.DB, courseID string) (int64, error) {
	var count int64
	err := c.helpers.Conn(ctx, tx).Model(&models.Quiz{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, repositories.MapError(err)
}
