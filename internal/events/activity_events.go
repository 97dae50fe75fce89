package events

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/models"
)

const (
	MessageSource  = "progress-service"
	MessageVersion = "1.0"
)

// ActivityMessage is the wire form of a persisted activity event
type ActivityMessage struct {
	ID        string               `json:"id"`
	Type      models.EventType     `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Source    string               `json:"source"`
	Version   string               `json:"version"`
	UserID    string               `json:"user_id"`
	CourseID  *string              `json:"course_id,omitempty"`
	LessonID  *string              `json:"lesson_id,omitempty"`
	Data      models.EventMetadata `json:"data"`
	// NotificationIDs lists notifications created together with the event
	NotificationIDs []string `json:"notification_ids,omitempty"`
}

// NewActivityMessage decodes the event metadata into its typed payload
func NewActivityMessage(event *models.Event, notificationIDs ...string) (*ActivityMessage, error) {
	if event == nil {
		return nil, fmt.Errorf("event is nil")
	}
	data, err := event.DecodeMetadata()
	if err != nil {
		return nil, err
	}
	return &ActivityMessage{
		ID:              event.ID,
		Type:            event.Type,
		Timestamp:       event.CreatedAt,
		Source:          MessageSource,
		Version:         MessageVersion,
		UserID:          event.UserID,
		CourseID:        event.CourseID,
		LessonID:        event.LessonID,
		Data:            data,
		NotificationIDs: notificationIDs,
	}, nil
}
