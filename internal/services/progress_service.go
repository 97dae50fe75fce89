package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/cache"
	"github.com/SAP-F-2025/progress-service/internal/insights"
	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/internal/validator"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"gorm.io/gorm"
)

type progressService struct {
	repo       repositories.Repository
	dispatcher DispatcherService
	cache      cache.CacheService
	cacheTTL   time.Duration
	metrics    *monitoring.Recorder
	logger     *slog.Logger
	log        *ServiceLogger
	validator  *validator.Validator
	now        func() time.Time
}

func NewProgressService(
	repo repositories.Repository,
	dispatcher DispatcherService,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	metrics *monitoring.Recorder,
	logger *slog.Logger,
	validator *validator.Validator,
) ProgressService {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	return &progressService{
		repo:       repo,
		dispatcher: dispatcher,
		cache:      cacheService,
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		logger:     logger,
		log:        NewServiceLogger(logger, LogConfig{Service: "progress-service", Component: "progress"}),
		validator:  validator,
		now:        utcNow,
	}
}

// ===== AGGREGATION =====

// RecomputeCourseProgress rebuilds the (user, course) aggregate from lesson
// progress and attempts. It is idempotent and must run inside the caller's tx.
// The counts are read after the aggregate row is locked so a concurrent writer
// of the same pair cannot store a stale count over a newer one.
func (s *progressService) RecomputeCourseProgress(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error) {
	if err := s.repo.Progress().LockCourseProgress(ctx, tx, userID, courseID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to lock course progress: %w", err)
	}

	totalLessons, err := s.repo.Course().CountLessons(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}
	completedLessons, err := s.repo.Progress().CountCompletedLessons(ctx, tx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	progress, err := s.buildProgress(ctx, tx, userID, courseID, completedLessons, totalLessons)
	if err != nil {
		return nil, err
	}
	if totalLessons > 0 {
		progress.ProgressPercentage = float64(completedLessons) / float64(totalLessons) * 100
	}

	if err := s.repo.Progress().UpsertCourseProgress(ctx, tx, progress); err != nil {
		return nil, fmt.Errorf("failed to store course progress: %w", err)
	}
	return progress, nil
}

// MarkCourseProgressComplete forces the aggregate to 100% on course completion
func (s *progressService) MarkCourseProgressComplete(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error) {
	if err := s.repo.Progress().LockCourseProgress(ctx, tx, userID, courseID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to lock course progress: %w", err)
	}

	totalLessons, err := s.repo.Course().CountLessons(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}

	progress, err := s.buildProgress(ctx, tx, userID, courseID, totalLessons, totalLessons)
	if err != nil {
		return nil, err
	}
	progress.ProgressPercentage = 100

	if err := s.repo.Progress().UpsertCourseProgress(ctx, tx, progress); err != nil {
		return nil, fmt.Errorf("failed to store course progress: %w", err)
	}
	return progress, nil
}

func (s *progressService) buildProgress(ctx context.Context, tx *gorm.DB, userID, courseID string, completedLessons, totalLessons int64) (*models.CourseProgress, error) {
	totalQuizzes, err := s.repo.Course().CountQuizzes(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}
	completedQuizzes, err := s.repo.Attempt().CountAttemptedQuizzes(ctx, tx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempted quizzes: %w", err)
	}

	return &models.CourseProgress{
		UserID:           userID,
		CourseID:         courseID,
		LessonsCompleted: int(completedLessons),
		TotalLessons:     int(totalLessons),
		QuizzesCompleted: int(completedQuizzes),
		TotalQuizzes:     int(totalQuizzes),
		LastAccessedAt:   s.now(),
	}, nil
}

// ===== ACTIVITY =====

func (s *progressService) CompleteLesson(ctx context.Context, req *CompleteLessonRequest) (*CompleteLessonResult, error) {
	op := s.log.WithOperation(ctx, "complete_lesson", req.UserID)
	result, err := s.completeLesson(ctx, req)
	op.LogResult(req.LessonID, "lesson", err)
	return result, err
}

func (s *progressService) completeLesson(ctx context.Context, req *CompleteLessonRequest) (*CompleteLessonResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.UserID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	lesson, err := s.repo.Course().GetLessonByID(ctx, nil, req.LessonID)
	if err != nil {
		return nil, notFound(err, ErrLessonNotFound)
	}

	var (
		lessonProgress *models.LessonProgress
		courseProgress *models.CourseProgress
		event          *models.Event
		notification   *models.Notification
	)

	err = s.repo.InTx(ctx, func(tx *gorm.DB) error {
		now := s.now()

		// Serializes completions of the same learner and course so only one
		// of them can observe the crossing to 100%.
		if _, err := s.repo.Enrollment().LockInProgress(ctx, tx, req.UserID, lesson.CourseID, now); err != nil {
			return fmt.Errorf("failed to lock enrollment: %w", err)
		}

		completedBefore, err := s.repo.Progress().CountCompletedLessons(ctx, tx, req.UserID, lesson.CourseID)
		if err != nil {
			return fmt.Errorf("failed to count completed lessons: %w", err)
		}

		lessonProgress, err = s.repo.Progress().UpsertLessonCompletion(ctx, tx, req.UserID, lesson.ID, req.TimeSpentSeconds, now)
		if err != nil {
			return fmt.Errorf("failed to record lesson completion: %w", err)
		}

		courseProgress, err = s.RecomputeCourseProgress(ctx, tx, req.UserID, lesson.CourseID)
		if err != nil {
			return err
		}

		event, err = s.dispatcher.AppendEvent(ctx, tx, req.UserID, strPtr(lesson.CourseID), strPtr(lesson.ID), models.LessonCompletedMetadata{
			LessonTitle:           lesson.Title,
			TimeSpentSeconds:      req.TimeSpentSeconds,
			TotalTimeSpentSeconds: lessonProgress.TimeSpentSeconds,
			ProgressPercentage:    percentOf(float64(courseProgress.LessonsCompleted), float64(courseProgress.TotalLessons)),
		})
		if err != nil {
			return err
		}

		total := courseProgress.TotalLessons
		if total > 0 && courseProgress.LessonsCompleted == total && completedBefore < int64(total) {
			notification, err = s.dispatcher.CreateNotification(ctx, tx, req.UserID,
				"Course Completed!",
				fmt.Sprintf("You have completed all %d lessons of this course.", total),
				&event.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, event, notification)
	s.InvalidateCourseProgress(ctx, req.UserID, lesson.CourseID)
	s.metrics.ObserveLessonCompleted()

	view, err := NewEventView(event)
	if err != nil {
		return nil, err
	}

	result := &CompleteLessonResult{
		LessonProgress: lessonProgress,
		CourseProgress: courseProgress,
		Event:          view,
		Notification:   notification,
	}

	pacing := insights.LessonPacing(int64(lessonProgress.TimeSpentSeconds), lesson.ExpectedDurationSeconds)
	if pacing.Flagged {
		s.metrics.ObserveInsightFlagged(string(pacing.Kind))
		result.Alert = &pacing
	}

	return result, nil
}

func (s *progressService) EnrollInCourse(ctx context.Context, userID, courseID string) (*EnrollResult, error) {
	op := s.log.WithOperation(ctx, "enroll_in_course", userID)
	result, err := s.enrollInCourse(ctx, userID, courseID)
	op.LogResult(courseID, "course", err)
	return result, err
}

func (s *progressService) enrollInCourse(ctx context.Context, userID, courseID string) (*EnrollResult, error) {
	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}

	result := &EnrollResult{}
	var event *models.Event

	err = s.repo.InTx(ctx, func(tx *gorm.DB) error {
		now := s.now()

		created, err := s.repo.Enrollment().Enroll(ctx, tx, userID, courseID, now)
		if err != nil {
			return fmt.Errorf("failed to enroll: %w", err)
		}
		result.Created = created

		result.Enrollment, err = s.repo.Enrollment().Get(ctx, tx, userID, courseID)
		if err != nil {
			return fmt.Errorf("failed to load enrollment: %w", err)
		}
		if !created {
			return nil
		}

		result.Progress, err = s.RecomputeCourseProgress(ctx, tx, userID, courseID)
		if err != nil {
			return err
		}

		event, err = s.dispatcher.AppendEvent(ctx, tx, userID, strPtr(courseID), nil, models.CourseEnrolledMetadata{
			CourseTitle: course.Title,
			EnrolledAt:  now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		s.dispatcher.Publish(ctx, event)
		s.InvalidateCourseProgress(ctx, userID, courseID)
	}
	return result, nil
}

// ===== READS =====

// GetCourseProgress reads through the cache. The snapshot version is read
// before the database so a write committing in between bumps the version and
// the snapshot stored here is never served.
func (s *progressService) GetCourseProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	version, cacheable := s.progressVersion(ctx, userID, courseID)
	key := cache.CourseProgressKey(userID, courseID, version)

	if cacheable {
		var cached models.CourseProgress
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !cache.IsCacheMiss(err) {
			s.logger.Warn("Progress cache read failed, falling back to database", "key", key, "error", err)
		}
	}

	progress, err := s.repo.Progress().GetCourseProgress(ctx, nil, userID, courseID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get course progress: %w", err)
	}
	if progress == nil {
		progress, err = s.emptyProgress(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, progress, s.cacheTTL); err != nil {
			s.logger.Warn("Progress cache write failed", "key", key, "error", err)
		}
	}
	return progress, nil
}

// progressVersion returns the current snapshot version; false means the cache
// could not be read and must be bypassed
func (s *progressService) progressVersion(ctx context.Context, userID, courseID string) (int64, bool) {
	key := cache.CourseProgressVersionKey(userID, courseID)

	var version int64
	err := s.cache.Get(ctx, key, &version)
	if err == nil || cache.IsCacheMiss(err) {
		return version, true
	}
	s.logger.Warn("Progress version read failed, bypassing cache", "key", key, "error", err)
	return 0, false
}

// emptyProgress is the zeroed snapshot for a learner with no recorded activity
func (s *progressService) emptyProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	if _, err := s.repo.Course().GetByID(ctx, nil, courseID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	totalLessons, err := s.repo.Course().CountLessons(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}
	totalQuizzes, err := s.repo.Course().CountQuizzes(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}
	return &models.CourseProgress{
		UserID:       userID,
		CourseID:     courseID,
		TotalLessons: int(totalLessons),
		TotalQuizzes: int(totalQuizzes),
	}, nil
}

func (s *progressService) GetUserCourseProgress(ctx context.Context, userID string) ([]*models.CourseProgress, error) {
	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	rows, err := s.repo.Progress().ListCourseProgressByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course progress: %w", err)
	}
	return rows, nil
}

// InvalidateCourseProgress bumps the snapshot version and drops the snapshot
// it replaces; call it after the writing tx commits
func (s *progressService) InvalidateCourseProgress(ctx context.Context, userID, courseID string) {
	versionKey := cache.CourseProgressVersionKey(userID, courseID)
	version, err := s.cache.Incr(ctx, versionKey)
	if err != nil {
		s.logger.Warn("Failed to bump progress cache version", "key", versionKey, "error", err)
		return
	}

	key := cache.CourseProgressKey(userID, courseID, version-1)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to invalidate progress cache", "key", key, "error", err)
	}
}
