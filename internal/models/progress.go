package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentYetToStart EnrollmentStatus = "YET_TO_START"
	EnrollmentInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentCompleted  EnrollmentStatus = "COMPLETED"
)

type CourseEnrollment struct {
	UserID      string           `json:"user_id" gorm:"primaryKey;size:36"`
	CourseID    string           `json:"course_id" gorm:"primaryKey;size:36;index"`
	Status      EnrollmentStatus `json:"status" gorm:"not null;size:20;default:YET_TO_START"`
	EnrolledAt  time.Time        `json:"enrolled_at"`
	CompletedAt *time.Time       `json:"completed_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

// LessonProgress is created on the first completion and only ever moves forward:
// IsCompleted never reverts and TimeSpentSeconds only grows.
type LessonProgress struct {
	UserID           string     `json:"user_id" gorm:"primaryKey;size:36"`
	LessonID         string     `json:"lesson_id" gorm:"primaryKey;size:36;index"`
	IsCompleted      bool       `json:"is_completed" gorm:"not null;default:false"`
	TimeSpentSeconds int        `json:"time_spent_seconds" gorm:"not null;default:0"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// CourseProgress is a projection of LessonProgress and QuizAttempt rows.
// It is rebuilt by the progress aggregator and never edited field by field.
type CourseProgress struct {
	UserID             string    `json:"user_id" gorm:"primaryKey;size:36"`
	CourseID           string    `json:"course_id" gorm:"primaryKey;size:36;index"`
	LessonsCompleted   int       `json:"lessons_completed" gorm:"not null;default:0"`
	TotalLessons       int       `json:"total_lessons" gorm:"not null;default:0"`
	QuizzesCompleted   int       `json:"quizzes_completed" gorm:"not null;default:0"`
	TotalQuizzes       int       `json:"total_quizzes" gorm:"not null;default:0"`
	ProgressPercentage float64   `json:"progress_percentage" gorm:"not null;default:0"`
	LastAccessedAt     time.Time `json:"last_accessed_at"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}

// IsComplete reports whether every lesson of the course is done
func (p *CourseProgress) IsComplete() bool {
	return p.ProgressPercentage >= 100
}
