package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

// TxRunner runs fn inside one database transaction. Any error returned by fn
// rolls back every write made through tx.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository groups the activity store repositories behind one handle
type Repository interface {
	TxRunner

	User() UserRepository
	Course() CourseRepository
	Enrollment() EnrollmentRepository
	Progress() ProgressRepository
	Attempt() AttemptRepository
	Ledger() LedgerRepository
	Badge() BadgeRepository
	Event() EventRepository
	Notification() NotificationRepository
}

// ===== SHARED FILTER STRUCTS =====

type EventFilters struct {
	UserID    *string           `json:"user_id"`
	CourseIDs []string          `json:"course_ids"`
	Type      *models.EventType `json:"type"`
	DateFrom  *time.Time        `json:"date_from"`
	DateTo    *time.Time        `json:"date_to"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

type NotificationFilters struct {
	Status *models.NotificationStatus `json:"status"`
	Limit  int                        `json:"limit"`
	Offset int                        `json:"offset"`
}

// ===== AGGREGATE ROWS =====

// LearnerStanding is one leaderboard row before ranks are assigned
type LearnerStanding struct {
	UserID               string `json:"user_id"`
	Name                 string `json:"name"`
	TotalPoints          int64  `json:"total_points"`
	CompletedCourseCount int64  `json:"completed_course_count"`
}

// LessonCompletionCount is the number of learners who completed a lesson
type LessonCompletionCount struct {
	LessonID         string  `json:"lesson_id"`
	CompletedCount   int64   `json:"completed_count"`
	AverageTimeSpent float64 `json:"average_time_spent"`
}

// LearnerAttemptCount is how many times one learner attempted one quiz
type LearnerAttemptCount struct {
	UserID           string `json:"user_id"`
	QuizID           string `json:"quiz_id"`
	Attempts         int64  `json:"attempts"`
	TimeSpentSeconds int64  `json:"time_spent_seconds"`
}
