package models

import "github.com/google/uuid"

// assignID fills an empty primary key with a random UUID
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels lists every table owned by the service in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lesson{},
		&Quiz{},
		&CourseEnrollment{},
		&LessonProgress{},
		&CourseProgress{},
		&QuizAttempt{},
		&PointsLedgerEntry{},
		&Badge{},
		&Event{},
		&Notification{},
	}
}
