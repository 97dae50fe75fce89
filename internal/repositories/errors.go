package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a unique constraint rejected the write
	ErrConflict = errors.New("record conflict")
	// ErrRetryable indicates a transient failure such as a serialization abort
	ErrRetryable = errors.New("retryable storage failure")
)

// MapError translates driver errors into repository sentinels. The original
// error stays in the chain so callers can still inspect it.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrRetryable) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrConflict, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return errors.Join(ErrConflict, err) // unique_violation
		case "40001", "40P01":
			return errors.Join(ErrRetryable, err) // serialization_failure, deadlock_detected
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key"):
		return errors.Join(ErrConflict, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "deadlock"):
		return errors.Join(ErrRetryable, err)
	}
	return err
}

// IsNotFoundError checks if the error is a missing-row error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsConflictError checks if the error is a unique constraint violation
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsRetryableError checks if re-running the whole transaction may succeed
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrRetryable)
}
