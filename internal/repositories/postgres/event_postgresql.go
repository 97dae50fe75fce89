package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
)

type EventPostgreSQL struct {
	helpers *SharedHelpers
}

func NewEventPostgreSQL(db *gorm.DB) repositories.EventRepository {
	return &EventPostgreSQL{helpers: NewSharedHelpers(db)}
}

// Create appends an event; events are never updated afterwards
func (e *EventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return repositories.MapError(e.helpers.Conn(ctx, tx).Create(event).Error)
}

func (e *EventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	var event models.Event
	if err := e.helpers.Conn(ctx, tx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &event, nil
}

func (e *EventPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.Event, error) {
	var events []*models.Event

	query := e.helpers.Conn(ctx, tx).Model(&models.Event{})
	query = e.helpers.ApplyEventFilters(query, filters)
	query = e.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	if err := query.Order("created_at DESC").Order("id DESC").Find(&events).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return events, nil
}

type NotificationPostgreSQL struct {
	helpers *SharedHelpers
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (n *NotificationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	return repositories.MapError(n.helpers.Conn(ctx, tx).Create(notification).Error)
}

func (n *NotificationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := n.helpers.Conn(ctx, tx).Where("id = ?", id).First(&notification).Error; err != nil {
		return nil, repositories.MapError(err)
	}
	return &notification, nil
}

func (n *NotificationPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.NotificationStatus, readAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if readAt != nil {
		updates["read_at"] = *readAt
	}

	result := n.helpers.Conn(ctx, tx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return repositories.MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (n *NotificationPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	query := n.helpers.Conn(ctx, tx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.MapError(err)
	}

	query = n.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, 0, repositories.MapError(err)
	}
	return notifications, total, nil
}

func (n *NotificationPostgreSQL) MarkAllRead(ctx context.Context, tx *gorm.DB, userID string, at time.Time) (int64, error) {
	result := n.helpers.Conn(ctx, tx).
		Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, models.NotificationUnread).
		Updates(map[string]interface{}{
			"status":  models.NotificationRead,
			"read_at": at,
		})
	return result.RowsAffected, repositories.MapError(result.Error)
}
