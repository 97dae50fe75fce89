package repositories

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for user lookups
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	ListByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.User, error)
}

// CourseRepository interface for the course catalog: courses, lessons and quizzes
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) ([]*models.Course, error)

	// Lessons
	CreateLesson(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetLessonByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error)
	GetLessons(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Lesson, error)
	CountLessons(ctx context.Context, tx *gorm.DB, courseID string) (int64, error)

	// Quizzes
	CreateQuiz(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetQuizByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	GetQuizzes(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Quiz, error)
	CountQuizzes(ctx context.Context, tx *gorm.DB, courseID string) (int64, error)
}

// BadgeRepository interface for badge reference data
type BadgeRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]models.Badge, error)
	SeedDefaults(ctx context.Context, tx *gorm.DB) error
}
