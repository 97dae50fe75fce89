package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventLessonCompleted EventType = "LESSON_COMPLETED"
	EventQuizSubmitted   EventType = "QUIZ_SUBMITTED"
	EventCourseCompleted EventType = "COURSE_COMPLETED"
	EventCourseEnrolled  EventType = "COURSE_ENROLLED"
)

// IsValid reports whether the event type is known
func (t EventType) IsValid() bool {
	switch t {
	case EventLessonCompleted, EventQuizSubmitted, EventCourseCompleted, EventCourseEnrolled:
		return true
	}
	return false
}

// Event is the append-only audit trail. Metadata holds the JSON form of the
// EventMetadata variant selected by Type.
type Event struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    string         `json:"user_id" gorm:"not null;size:36;index"`
	CourseID  *string        `json:"course_id,omitempty" gorm:"size:36;index"`
	LessonID  *string        `json:"lesson_id,omitempty" gorm:"size:36"`
	Type      EventType      `json:"type" gorm:"not null;size:30;index"`
	Metadata  datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// EventMetadata is implemented by one payload struct per event type
type EventMetadata interface {
	EventType() EventType
}

type LessonCompletedMetadata struct {
	LessonTitle           string `json:"lesson_title"`
	TimeSpentSeconds      int    `json:"time_spent_seconds"`
	TotalTimeSpentSeconds int    `json:"total_time_spent_seconds"`
	ProgressPercentage    int    `json:"progress_percentage"`
}

func (LessonCompletedMetadata) EventType() EventType { return EventLessonCompleted }

type QuizSubmittedMetadata struct {
	QuizTitle      string  `json:"quiz_title"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	AttemptNumber  int     `json:"attempt_number"`
	PointsAwarded  int     `json:"points_awarded"`
	Percentage     int     `json:"percentage"`
}

func (QuizSubmittedMetadata) EventType() EventType { return EventQuizSubmitted }

type CourseCompletedMetadata struct {
	CourseTitle   string    `json:"course_title"`
	PointsAwarded int       `json:"points_awarded"`
	CompletedAt   time.Time `json:"completed_at"`
}

func (CourseCompletedMetadata) EventType() EventType { return EventCourseCompleted }

type CourseEnrolledMetadata struct {
	CourseTitle string    `json:"course_title"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

func (CourseEnrolledMetadata) EventType() EventType { return EventCourseEnrolled }

// NewEvent builds an event whose type is taken from the metadata variant
func NewEvent(userID string, courseID, lessonID *string, metadata EventMetadata) (*Event, error) {
	if metadata == nil {
		return nil, fmt.Errorf("event metadata is required")
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s metadata: %w", metadata.EventType(), err)
	}
	return &Event{
		UserID:   userID,
		CourseID: courseID,
		LessonID: lessonID,
		Type:     metadata.EventType(),
		Metadata: datatypes.JSON(raw),
	}, nil
}

// DecodeMetadata returns the typed payload for the event's type
func (e *Event) DecodeMetadata() (EventMetadata, error) {
	var target EventMetadata
	switch e.Type {
	case EventLessonCompleted:
		target = &LessonCompletedMetadata{}
	case EventQuizSubmitted:
		target = &QuizSubmittedMetadata{}
	case EventCourseCompleted:
		target = &CourseCompletedMetadata{}
	case EventCourseEnrolled:
		target = &CourseEnrolledMetadata{}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}

	if len(e.Metadata) == 0 {
		return target, nil
	}
	if err := json.Unmarshal(e.Metadata, target); err != nil {
		return nil, fmt.Errorf("failed to decode %s metadata: %w", e.Type, err)
	}
	return target, nil
}
