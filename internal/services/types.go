package services

import (
	"time"

	"github.com/SAP-F-2025/progress-service/internal/insights"
	"github.com/SAP-F-2025/progress-service/internal/models"
)

// ===== SCORING =====

type SubmitQuizAttemptRequest struct {
	UserID           string  `json:"user_id" validate:"required"`
	QuizID           string  `json:"quiz_id" validate:"required"`
	Score            float64 `json:"score" validate:"gte=0,lte=100000"`
	TotalQuestions   int     `json:"total_questions" validate:"required,gte=1"`
	TimeSpentSeconds int     `json:"time_spent_seconds" validate:"gte=0"`
}

type SubmitQuizAttemptResult struct {
	AttemptID     string            `json:"attempt_id"`
	AttemptNumber int               `json:"attempt_number"`
	PointsAwarded int               `json:"points_awarded"`
	Percentage    int               `json:"percentage"`
	EventID       string            `json:"event_id"`
	Alert         *insights.Insight `json:"alert,omitempty"`
}

type CompleteCourseResult struct {
	AlreadyCompleted   bool       `json:"already_completed"`
	PointsAwarded      int        `json:"points_awarded"`
	CompletedAt        *time.Time `json:"completed_at"`
	InstructorNotified bool       `json:"instructor_notified"`
	EventID            string     `json:"event_id,omitempty"`
	NotificationID     string     `json:"notification_id,omitempty"`
}

type UserPoints struct {
	UserID      string        `json:"user_id"`
	TotalPoints int64         `json:"total_points"`
	Badge       *models.Badge `json:"badge,omitempty"`
}

// ===== PROGRESS =====

type CompleteLessonRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	LessonID         string `json:"lesson_id" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
}

type CompleteLessonResult struct {
	LessonProgress *models.LessonProgress `json:"lesson_progress"`
	CourseProgress *models.CourseProgress `json:"course_progress"`
	Event          *EventView             `json:"event"`
	Notification   *models.Notification   `json:"notification,omitempty"`
	Alert          *insights.Insight      `json:"alert,omitempty"`
}

type EnrollResult struct {
	Enrollment *models.CourseEnrollment `json:"enrollment"`
	Created    bool                     `json:"created"`
	Progress   *models.CourseProgress   `json:"progress,omitempty"`
}

// ===== EVENTS AND NOTIFICATIONS =====

type EventListRequest struct {
	Type     *models.EventType `form:"type" json:"type" validate:"omitempty,event_type"`
	CourseID *string           `form:"course_id" json:"course_id"`
	DateFrom *time.Time        `form:"date_from" json:"date_from" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo   *time.Time        `form:"date_to" json:"date_to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit    int               `form:"limit" json:"limit" validate:"gte=0"`
	Offset   int               `form:"offset" json:"offset" validate:"gte=0"`
}

// EventView is an event with its metadata decoded into the typed variant
type EventView struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	CourseID  *string              `json:"course_id,omitempty"`
	LessonID  *string              `json:"lesson_id,omitempty"`
	Type      models.EventType     `json:"type"`
	Metadata  models.EventMetadata `json:"metadata"`
	CreatedAt time.Time            `json:"created_at"`
}

type NotificationListRequest struct {
	Status *models.NotificationStatus `form:"status" json:"status" validate:"omitempty,notification_status"`
	Limit  int                        `form:"limit" json:"limit" validate:"gte=0"`
	Offset int                        `form:"offset" json:"offset" validate:"gte=0"`
}

type NotificationList struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

// ===== LEADERBOARD =====

type LeaderboardEntry struct {
	Rank                 int    `json:"rank"`
	UserID               string `json:"user_id"`
	Name                 string `json:"name"`
	TotalPoints          int64  `json:"total_points"`
	CompletedCourseCount int64  `json:"completed_course_count"`
	Badge                string `json:"badge,omitempty"`
}

// ===== REPORTING =====

type CourseInsightReport struct {
	CourseID         string           `json:"course_id"`
	CourseTitle      string           `json:"course_title"`
	EnrolledLearners int              `json:"enrolled_learners"`
	Dropoff          insights.Insight `json:"dropoff"`
	Lessons          []LessonInsight  `json:"lessons"`
	Quizzes          []QuizInsight    `json:"quizzes"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

type LessonInsight struct {
	LessonID                string           `json:"lesson_id"`
	Title                   string           `json:"title"`
	Position                int              `json:"position"`
	CompletedCount          int64            `json:"completed_count"`
	CompletionRate          float64          `json:"completion_rate"`
	AverageTimeSpentSeconds float64          `json:"average_time_spent_seconds"`
	Pacing                  insights.Insight `json:"pacing"`
}

type QuizInsight struct {
	QuizID             string            `json:"quiz_id"`
	Title              string            `json:"title"`
	LearnersAttempted  int               `json:"learners_attempted"`
	AverageAttempts    float64           `json:"average_attempts"`
	Difficulty         insights.Insight  `json:"difficulty"`
	StrugglingLearners []LearnerStruggle `json:"struggling_learners"`
}

type LearnerStruggle struct {
	UserID           string           `json:"user_id"`
	Attempts         int64            `json:"attempts"`
	TimeSpentSeconds int64            `json:"time_spent_seconds"`
	Insight          insights.Insight `json:"insight"`
}
