package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizAttempt is immutable once written. AttemptNumber is 1-based per (user, quiz)
// and the unique index turns a concurrent duplicate into a conflict.
type QuizAttempt struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	UserID           string    `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_attempts_user_quiz_number"`
	QuizID           string    `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_attempts_user_quiz_number;index"`
	AttemptNumber    int       `json:"attempt_number" gorm:"not null;uniqueIndex:idx_quiz_attempts_user_quiz_number"`
	Score            float64   `json:"score" gorm:"not null"`
	TotalQuestions   int       `json:"total_questions" gorm:"not null"`
	TimeSpentSeconds int       `json:"time_spent_seconds" gorm:"not null;default:0"`
	PointsAwarded    int       `json:"points_awarded" gorm:"not null"`
	AttemptedAt      time.Time `json:"attempted_at" gorm:"not null"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
