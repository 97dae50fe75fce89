package models

import (
	"time"

	"gorm.io/gorm"
)

type LessonType string

const (
	LessonTypeVideo    LessonType = "VIDEO"
	LessonTypeDocument LessonType = "DOCUMENT"
	LessonTypeImage    LessonType = "IMAGE"
)

type Course struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Title        string `json:"title" gorm:"not null;size:200"`
	InstructorID string `json:"instructor_id" gorm:"not null;size:36;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Lesson belongs to exactly one course; Position orders lessons within it
type Lesson struct {
	ID                      string     `json:"id" gorm:"primaryKey;size:36"`
	CourseID                string     `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_lessons_course_position"`
	Title                   string     `json:"title" gorm:"not null;size:200"`
	Type                    LessonType `json:"type" gorm:"not null;size:20"`
	ExpectedDurationSeconds *int       `json:"expected_duration_seconds"`
	Position                int        `json:"position" gorm:"not null;uniqueIndex:idx_lessons_course_position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// Quiz may exist outside of any course, in which case CourseID is nil
type Quiz struct {
	ID       string  `json:"id" gorm:"primaryKey;size:36"`
	CourseID *string `json:"course_id" gorm:"size:36;index"`
	Title    string  `json:"title" gorm:"not null;size:200"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	assignID(&q.ID)
	return nil
}
