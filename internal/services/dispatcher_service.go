package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/events"
	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/internal/validator"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"gorm.io/gorm"
)

type dispatcherService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	metrics   *monitoring.Recorder
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewDispatcherService(repo repositories.Repository, publisher events.EventPublisher, metrics *monitoring.Recorder, logger *slog.Logger, validator *validator.Validator) DispatcherService {
	return &dispatcherService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		log:       NewServiceLogger(logger, LogConfig{Service: "progress-service", Component: "dispatcher"}),
		validator: validator,
		now:       utcNow,
	}
}

// ===== WRITE PATH (inside caller transactions) =====

func (s *dispatcherService) AppendEvent(ctx context.Context, tx *gorm.DB, userID string, courseID, lessonID *string, metadata models.EventMetadata) (*models.Event, error) {
	event, err := models.NewEvent(userID, courseID, lessonID, metadata)
	if err != nil {
		return nil, err
	}
	event.CreatedAt = s.now()

	if err := s.repo.Event().Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to append %s event: %w", event.Type, err)
	}
	return event, nil
}

func (s *dispatcherService) CreateNotification(ctx context.Context, tx *gorm.DB, userID, title, message string, relatedEventID *string) (*models.Notification, error) {
	if title == "" {
		return nil, singleValidationError("title", "is required", "required", title)
	}

	notification := &models.Notification{
		UserID:         userID,
		Title:          title,
		Message:        message,
		Status:         models.NotificationUnread,
		RelatedEventID: relatedEventID,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Notification().Create(ctx, tx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// Publish sends a committed event to the broker. Failures are logged and counted, never returned.
func (s *dispatcherService) Publish(ctx context.Context, event *models.Event, notifications ...*models.Notification) {
	if event == nil || s.publisher == nil {
		return
	}

	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if n != nil {
			ids = append(ids, n.ID)
		}
	}

	msg, err := events.NewActivityMessage(event, ids...)
	if err == nil {
		err = s.publisher.PublishActivity(ctx, msg)
	}
	if err != nil {
		s.metrics.ObservePublishFailure()
		s.logger.Warn("Failed to publish activity event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

// ===== NOTIFICATIONS =====

func (s *dispatcherService) MarkRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	op := s.log.WithOperation(ctx, "mark_notification_read", userID)
	notification, err := s.transition(ctx, notificationID, userID, models.NotificationRead)
	op.LogResult(notificationID, "notification", err)
	return notification, err
}

func (s *dispatcherService) Dismiss(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	op := s.log.WithOperation(ctx, "dismiss_notification", userID)
	notification, err := s.transition(ctx, notificationID, userID, models.NotificationDismissed)
	op.LogResult(notificationID, "notification", err)
	return notification, err
}

func (s *dispatcherService) transition(ctx context.Context, notificationID, userID string, next models.NotificationStatus) (*models.Notification, error) {
	notification, err := s.repo.Notification().GetByID(ctx, nil, notificationID)
	if err != nil {
		return nil, notFound(err, ErrNotificationNotFound)
	}
	if notification.UserID != userID {
		return nil, NewPermissionError(ErrNotificationAccessDenied, userID, notificationID, "notification", string(next), "not the recipient")
	}

	if notification.Status == next {
		return notification, nil
	}
	if !notification.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, notification.Status, next)
	}

	readAt := notification.ReadAt
	if next == models.NotificationRead {
		now := s.now()
		readAt = &now
	}

	if err := s.repo.Notification().UpdateStatus(ctx, nil, notificationID, next, readAt); err != nil {
		return nil, notFound(err, ErrNotificationNotFound)
	}

	notification.Status = next
	notification.ReadAt = readAt
	return notification, nil
}

func (s *dispatcherService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, singleValidationError("user_id", "is required", "required", userID)
	}
	updated, err := s.repo.Notification().MarkAllRead(ctx, nil, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.logger.Info("Marked notifications read", "user_id", userID, "count", updated)
	return updated, nil
}

func (s *dispatcherService) GetUserNotifications(ctx context.Context, userID string, req *NotificationListRequest) (*NotificationList, error) {
	if req == nil {
		req = &NotificationListRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	notifications, total, err := s.repo.Notification().ListByUser(ctx, nil, userID, repositories.NotificationFilters{
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return &NotificationList{
		Notifications: notifications,
		Total:         total,
		Limit:         effectiveLimit(req.Limit),
		Offset:        req.Offset,
	}, nil
}

// ===== EVENT READS =====

func (s *dispatcherService) GetUserEvents(ctx context.Context, userID string, req *EventListRequest) ([]*EventView, error) {
	if req == nil {
		req = &EventListRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := eventFilters(req)
	filters.UserID = &userID
	return s.listEvents(ctx, filters)
}

func (s *dispatcherService) GetInstructorEvents(ctx context.Context, instructorID string, req *EventListRequest) ([]*EventView, error) {
	if req == nil {
		req = &EventListRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	instructor, err := s.repo.User().GetByID(ctx, nil, instructorID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if instructor.Role != models.RoleInstructor && instructor.Role != models.RoleAdmin {
		return nil, NewPermissionError(ErrInvalidRole, instructorID, "", "events", "list", "instructor role required")
	}

	courses, err := s.repo.Course().GetByInstructor(ctx, nil, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}

	courseIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		if req.CourseID != nil && *req.CourseID != course.ID {
			continue
		}
		courseIDs = append(courseIDs, course.ID)
	}

	filters := eventFilters(req)
	filters.CourseIDs = courseIDs
	return s.listEvents(ctx, filters)
}

func (s *dispatcherService) listEvents(ctx context.Context, filters repositories.EventFilters) ([]*EventView, error) {
	rows, err := s.repo.Event().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	views := make([]*EventView, 0, len(rows))
	for _, row := range rows {
		view, err := NewEventView(row)
		if err != nil {
			s.logger.Warn("Skipping event with undecodable metadata", "event_id", row.ID, "error", err)
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func eventFilters(req *EventListRequest) repositories.EventFilters {
	filters := repositories.EventFilters{
		Type:     req.Type,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.CourseID != nil {
		filters.CourseIDs = []string{*req.CourseID}
	}
	return filters
}

// NewEventView decodes the metadata of a stored event
func NewEventView(event *models.Event) (*EventView, error) {
	metadata, err := event.DecodeMetadata()
	if err != nil {
		return nil, err
	}
	return &EventView{
		ID:        event.ID,
		UserID:    event.UserID,
		CourseID:  event.CourseID,
		LessonID:  event.LessonID,
		Type:      event.Type,
		Metadata:  metadata,
		CreatedAt: event.CreatedAt,
	}, nil
}
