package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/progress-service/internal/errors"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Catalog errors
	ErrUserNotFound   = errors.New("user not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrQuizNotFound   = errors.New("quiz not found")

	// Notification errors
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrNotificationAccessDenied = errors.New("access denied to notification")
	ErrInvalidTransition        = errors.New("invalid notification status transition")

	// Reporting errors
	ErrInsightsAccessDenied = errors.New("access denied to course insights")
	ErrInvalidRole          = errors.New("invalid user role")

	// ErrAttemptNumberContention is returned when concurrent submissions keep
	// colliding on the attempt number after every retry
	ErrAttemptNumberContention = errors.New("could not allocate attempt number")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	Err        error  `json:"-"`
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// Unwrap exposes the sentinel, defaulting to ErrUnauthorized
func (pe *PermissionError) Unwrap() error {
	if pe.Err == nil {
		return ErrUnauthorized
	}
	return pe.Err
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// singleValidationError wraps one field error so callers can match it as ValidationErrors
func singleValidationError(field, message, rule string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationErrorWithRule(field, message, rule, value)}
}

func NewPermissionError(sentinel error, userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		Err:        sentinel,
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// notFound translates a repository not-found into the given sentinel, leaving other errors as is
func notFound(err error, sentinel error) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return err
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, repositories.ErrNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotificationAccessDenied) ||
		errors.Is(err, ErrInsightsAccessDenied) ||
		errors.Is(err, ErrInvalidRole)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidTransition) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAttemptNumberContention) ||
		errors.Is(err, repositories.ErrConflict)
}
