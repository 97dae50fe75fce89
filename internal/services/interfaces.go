package services

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

// ScoringService records quiz attempts and course completions into the points ledger
type ScoringService interface {
	SubmitQuizAttempt(ctx context.Context, req *SubmitQuizAttemptRequest) (*SubmitQuizAttemptResult, error)
	CompleteCourse(ctx context.Context, userID, courseID string) (*CompleteCourseResult, error)
	GetUserPoints(ctx context.Context, userID string) (*UserPoints, error)
}

// ProgressService is the only writer of CourseProgress rows
type ProgressService interface {
	// Transaction participants
	RecomputeCourseProgress(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error)
	MarkCourseProgressComplete(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error)

	// Activity
	CompleteLesson(ctx context.Context, req *CompleteLessonRequest) (*CompleteLessonResult, error)
	EnrollInCourse(ctx context.Context, userID, courseID string) (*EnrollResult, error)

	// Reads
	GetCourseProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error)
	GetUserCourseProgress(ctx context.Context, userID string) ([]*models.CourseProgress, error)

	InvalidateCourseProgress(ctx context.Context, userID, courseID string)
}

// DispatcherService appends activity events, manages notifications and
// publishes committed events to the message broker
type DispatcherService interface {
	AppendEvent(ctx context.Context, tx *gorm.DB, userID string, courseID, lessonID *string, metadata models.EventMetadata) (*models.Event, error)
	CreateNotification(ctx context.Context, tx *gorm.DB, userID, title, message string, relatedEventID *string) (*models.Notification, error)
	Publish(ctx context.Context, event *models.Event, notifications ...*models.Notification)

	MarkRead(ctx context.Context, notificationID, userID string) (*models.Notification, error)
	Dismiss(ctx context.Context, notificationID, userID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	GetUserNotifications(ctx context.Context, userID string, req *NotificationListRequest) (*NotificationList, error)

	GetUserEvents(ctx context.Context, userID string, req *EventListRequest) ([]*EventView, error)
	GetInstructorEvents(ctx context.Context, instructorID string, req *EventListRequest) ([]*EventView, error)
}

// LeaderboardService ranks learners by ledger points
type LeaderboardService interface {
	GetTopLearners(ctx context.Context, n int) ([]LeaderboardEntry, error)
}

// ReportService assembles insight inputs from persisted history and exports reports
type ReportService interface {
	GetCourseInsights(ctx context.Context, requesterID, courseID string) (*CourseInsightReport, error)
	ExportLeaderboard(ctx context.Context, n int) ([]byte, error)
	ExportCourseInsights(ctx context.Context, requesterID, courseID string) ([]byte, error)
}
