package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationStatus string

const (
	NotificationUnread    NotificationStatus = "UNREAD"
	NotificationRead      NotificationStatus = "READ"
	NotificationDismissed NotificationStatus = "DISMISSED"
)

// IsValid reports whether the status is known
func (s NotificationStatus) IsValid() bool {
	switch s {
	case NotificationUnread, NotificationRead, NotificationDismissed:
		return true
	}
	return false
}

type Notification struct {
	ID             string             `json:"id" gorm:"primaryKey;size:36"`
	UserID         string             `json:"user_id" gorm:"not null;size:36;index"`
	Title          string             `json:"title" gorm:"not null;size:255"`
	Message        string             `json:"message" gorm:"type:text"`
	Status         NotificationStatus `json:"status" gorm:"not null;size:20;default:UNREAD;index"`
	RelatedEventID *string            `json:"related_event_id,omitempty" gorm:"size:36"`
	CreatedAt      time.Time          `json:"created_at"`
	ReadAt         *time.Time         `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	if n.Status == "" {
		n.Status = NotificationUnread
	}
	return nil
}

// CanTransitionTo enforces the forward-only lifecycle:
// UNREAD -> READ, any -> DISMISSED, nothing back to UNREAD.
func (n *Notification) CanTransitionTo(next NotificationStatus) bool {
	switch next {
	case NotificationDismissed:
		return true
	case NotificationRead:
		return n.Status == NotificationUnread || n.Status == NotificationRead
	default:
		return false
	}
}
