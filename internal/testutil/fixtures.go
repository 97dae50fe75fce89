package testutil

import (
	"fmt"
	"testing"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, db *gorm.DB, name string, role models.UserRole) *models.User {
	tb.Helper()
	user := &models.User{Name: name, Role: role}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedUserWithID is used where tests depend on id ordering
func SeedUserWithID(tb testing.TB, db *gorm.DB, id, name string, role models.UserRole) *models.User {
	tb.Helper()
	user := &models.User{ID: id, Name: name, Role: role}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

// CourseFixture is a course with its lessons in position order and its quizzes
type CourseFixture struct {
	Course  *models.Course
	Lessons []*models.Lesson
	Quizzes []*models.Quiz
}

func SeedCourse(tb testing.TB, db *gorm.DB, instructorID string, lessonCount, quizCount int) *CourseFixture {
	tb.Helper()

	course := &models.Course{Title: "Course", InstructorID: instructorID}
	if err := db.Create(course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}

	fixture := &CourseFixture{Course: course}
	for i := 0; i < lessonCount; i++ {
		lesson := &models.Lesson{
			CourseID: course.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Type:     models.LessonTypeVideo,
			Position: i + 1,
		}
		if err := db.Create(lesson).Error; err != nil {
			tb.Fatalf("seed lesson: %v", err)
		}
		fixture.Lessons = append(fixture.Lessons, lesson)
	}
	for i := 0; i < quizCount; i++ {
		courseID := course.ID
		quiz := &models.Quiz{CourseID: &courseID, Title: fmt.Sprintf("Quiz %d", i+1)}
		if err := db.Create(quiz).Error; err != nil {
			tb.Fatalf("seed quiz: %v", err)
		}
		fixture.Quizzes = append(fixture.Quizzes, quiz)
	}
	return fixture
}

func SeedStandaloneQuiz(tb testing.TB, db *gorm.DB, title string) *models.Quiz {
	tb.Helper()
	quiz := &models.Quiz{Title: title}
	if err := db.Create(quiz).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return quiz
}
