package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository interface for quiz attempt operations
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error)
	ListByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID string) ([]*models.QuizAttempt, error)

	// GetNextAttemptNumber returns 1 + the number of prior attempts for the pair
	GetNextAttemptNumber(ctx context.Context, tx *gorm.DB, userID, quizID string) (int, error)
	SumTimeSpent(ctx context.Context, tx *gorm.DB, userID, quizID string) (int64, error)

	// CountAttemptedQuizzes counts distinct quizzes of a course the user attempted at least once
	CountAttemptedQuizzes(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error)
	GetLearnerAttemptCounts(ctx context.Context, tx *gorm.DB, quizID string) ([]LearnerAttemptCount, error)
}

// LedgerRepository interface for the append-only points ledger
type LedgerRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.PointsLedgerEntry) error
	SumByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PointsLedgerEntry, error)

	// GetLearnerStandings returns learners ordered by points, then completed courses, then id
	GetLearnerStandings(ctx context.Context, tx *gorm.DB, limit int) ([]LearnerStanding, error)
}

// EnrollmentRepository interface for course enrollment state
type EnrollmentRepository interface {
	Get(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseEnrollment, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.CourseEnrollment, error)

	// Enroll creates a YET_TO_START enrollment; it reports false when one already exists
	Enroll(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (bool, error)
	// LockInProgress ensures an enrollment exists, locks its row for the rest of tx and
	// moves it from YET_TO_START to IN_PROGRESS
	LockInProgress(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (*models.CourseEnrollment, error)
	// MarkCompleted transitions the enrollment into COMPLETED; it reports false
	// when the enrollment was already COMPLETED and nothing was written
	MarkCompleted(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (bool, error)
}

// ProgressRepository interface for lesson and course progress rows
type ProgressRepository interface {
	GetLessonProgress(ctx context.Context, tx *gorm.DB, userID, lessonID string) (*models.LessonProgress, error)
	// UpsertLessonCompletion marks the lesson completed and adds timeSpent to the stored total
	UpsertLessonCompletion(ctx context.Context, tx *gorm.DB, userID, lessonID string, timeSpent int, at time.Time) (*models.LessonProgress, error)
	CountCompletedLessons(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error)
	GetLessonCompletionCounts(ctx context.Context, tx *gorm.DB, courseID string) ([]LessonCompletionCount, error)

	GetCourseProgress(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error)
	ListCourseProgressByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.CourseProgress, error)
	UpsertCourseProgress(ctx context.Context, tx *gorm.DB, progress *models.CourseProgress) error
	// LockCourseProgress ensures the (user, course) aggregate row exists and locks it
	// for the rest of tx, so recomputes of the same pair run one after another
	LockCourseProgress(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) error
}

// EventRepository interface for the append-only event log
type EventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error)
	List(ctx context.Context, tx *gorm.DB, filters EventFilters) ([]*models.Event, error)
}

// NotificationRepository interface for learner and instructor notifications
type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Notification, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.NotificationStatus, readAt *time.Time) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters NotificationFilters) ([]*models.Notification, int64, error)
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID string, at time.Time) (int64, error)
}
