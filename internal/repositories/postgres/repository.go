package postgres

import (
	"context"

	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB

	user         repositories.UserRepository
	course       repositories.CourseRepository
	enrollment   repositories.EnrollmentRepository
	progress     repositories.ProgressRepository
	attempt      repositories.AttemptRepository
	ledger       repositories.LedgerRepository
	badge        repositories.BadgeRepository
	event        repositories.EventRepository
	notification repositories.NotificationRepository
}

// NewRepository wires every gorm-backed repository around one connection
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:           db,
		user:         NewUserPostgreSQL(db),
		course:       NewCoursePostgreSQL(db),
		enrollment:   NewEnrollmentPostgreSQL(db),
		progress:     NewProgressPostgreSQL(db),
		attempt:      NewAttemptPostgreSQL(db),
		ledger:       NewLedgerPostgreSQL(db),
		badge:        NewBadgePostgreSQL(db),
		event:        NewEventPostgreSQL(db),
		notification: NewNotificationPostgreSQL(db),
	}
}

func (r *repository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) User() repositories.UserRepository                 { return r.user }
func (r *repository) Course() repositories.CourseRepository             { return r.course }
func (r *repository) Enrollment() repositories.EnrollmentRepository     { return r.enrollment }
func (r *repository) Progress() repositories.ProgressRepository         { return r.progress }
func (r *repository) Attempt() repositories.AttemptRepository           { return r.attempt }
func (r *repository) Ledger() repositories.LedgerRepository             { return r.ledger }
func (r *repository) Badge() repositories.BadgeRepository               { return r.badge }
func (r *repository) Event() repositories.EventRepository               { return r.event }
func (r *repository) Notification() repositories.NotificationRepository { return r.notification }
