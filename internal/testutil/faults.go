package testutil

import (
	"fmt"
	"testing"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"gorm.io/gorm"
)

// FailCreates rejects every insert into table until the test ends
func FailCreates(tb testing.TB, db *gorm.DB, table string) {
	tb.Helper()

	name := "testutil:fail_creates_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(fmt.Errorf("insert into %s rejected", table))
		}
	})
	if err != nil {
		tb.Fatalf("register failing callback: %v", err)
	}
	tb.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

// InsertEnrollmentBeforeNextCreate writes row through the caller's connection
// right before the next insert into course_enrollments, as a concurrent request
// committing first would.
func InsertEnrollmentBeforeNextCreate(tb testing.TB, db *gorm.DB, row models.CourseEnrollment) {
	tb.Helper()

	name := "testutil:racing_enrollment"
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != row.TableName() {
			return
		}
		fired = true

		err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO course_enrollments (user_id, course_id, status, enrolled_at, completed_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			row.UserID, row.CourseID, string(row.Status), row.EnrolledAt, row.CompletedAt, row.EnrolledAt,
		).Error
		if err != nil {
			_ = tx.AddError(fmt.Errorf("racing enrollment insert: %w", err))
		}
	})
	if err != nil {
		tb.Fatalf("register racing callback: %v", err)
	}
	tb.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}
