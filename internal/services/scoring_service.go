package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/insights"
	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/internal/validator"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"gorm.io/gorm"
)

type scoringService struct {
	repo       repositories.Repository
	progress   ProgressService
	dispatcher DispatcherService
	metrics    *monitoring.Recorder
	logger     *slog.Logger
	log        *ServiceLogger
	validator  *validator.Validator
	now        func() time.Time
}

func NewScoringService(
	repo repositories.Repository,
	progress ProgressService,
	dispatcher DispatcherService,
	metrics *monitoring.Recorder,
	logger *slog.Logger,
	validator *validator.Validator,
) ScoringService {
	return &scoringService{
		repo:       repo,
		progress:   progress,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		log:        NewServiceLogger(logger, LogConfig{Service: "progress-service", Component: "scoring"}),
		validator:  validator,
		now:        utcNow,
	}
}

// ===== QUIZ ATTEMPTS =====

func (s *scoringService) SubmitQuizAttempt(ctx context.Context, req *SubmitQuizAttemptRequest) (*SubmitQuizAttemptResult, error) {
	op := s.log.WithOperation(ctx, "submit_quiz_attempt", req.UserID)
	result, err := s.submitQuizAttempt(ctx, req)
	op.LogResult(req.QuizID, "quiz", err)
	return result, err
}

func (s *scoringService) submitQuizAttempt(ctx context.Context, req *SubmitQuizAttemptRequest) (*SubmitQuizAttemptResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.UserID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	quiz, err := s.repo.Course().GetQuizByID(ctx, nil, req.QuizID)
	if err != nil {
		return nil, notFound(err, ErrQuizNotFound)
	}

	points := PointsForScore(req.Score)
	percentage := percentOf(req.Score, float64(req.TotalQuestions))

	var (
		attempt *models.QuizAttempt
		event   *models.Event
	)

	// The attempt number is read inside the tx; a concurrent submission for the
	// same pair trips the unique index and the whole tx is run again.
	for try := 1; ; try++ {
		err = s.repo.InTx(ctx, func(tx *gorm.DB) error {
			number, err := s.repo.Attempt().GetNextAttemptNumber(ctx, tx, req.UserID, req.QuizID)
			if err != nil {
				return fmt.Errorf("failed to number attempt: %w", err)
			}

			now := s.now()
			attempt = &models.QuizAttempt{
				UserID:           req.UserID,
				QuizID:           req.QuizID,
				AttemptNumber:    number,
				Score:            req.Score,
				TotalQuestions:   req.TotalQuestions,
				TimeSpentSeconds: req.TimeSpentSeconds,
				PointsAwarded:    points,
				AttemptedAt:      now,
			}
			if err := s.repo.Attempt().Create(ctx, tx, attempt); err != nil {
				return fmt.Errorf("failed to create attempt: %w", err)
			}

			if err := s.repo.Ledger().Append(ctx, tx, &models.PointsLedgerEntry{
				UserID:     req.UserID,
				SourceType: models.LedgerSourceQuiz,
				SourceID:   req.QuizID,
				Points:     points,
				CreatedAt:  now,
			}); err != nil {
				return fmt.Errorf("failed to append ledger entry: %w", err)
			}

			if quiz.CourseID != nil {
				if _, err := s.progress.RecomputeCourseProgress(ctx, tx, req.UserID, *quiz.CourseID); err != nil {
					return err
				}
			}

			event, err = s.dispatcher.AppendEvent(ctx, tx, req.UserID, quiz.CourseID, nil, models.QuizSubmittedMetadata{
				QuizTitle:      quiz.Title,
				Score:          req.Score,
				TotalQuestions: req.TotalQuestions,
				AttemptNumber:  number,
				PointsAwarded:  points,
				Percentage:     percentage,
			})
			return err
		})
		if err == nil {
			break
		}
		if !repositories.IsRetryableError(err) {
			return nil, err
		}
		if try >= maxAttemptRetries {
			return nil, errors.Join(ErrAttemptNumberContention, err)
		}
		s.logger.Warn("Attempt number collision, retrying",
			"user_id", req.UserID,
			"quiz_id", req.QuizID,
			"try", try,
			"error", err)
	}

	s.dispatcher.Publish(ctx, event)
	if quiz.CourseID != nil {
		s.progress.InvalidateCourseProgress(ctx, req.UserID, *quiz.CourseID)
	}
	s.metrics.ObserveQuizSubmission(points)

	result := &SubmitQuizAttemptResult{
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		PointsAwarded: points,
		Percentage:    percentage,
		EventID:       event.ID,
	}

	totalTime, err := s.repo.Attempt().SumTimeSpent(ctx, nil, req.UserID, req.QuizID)
	if err != nil {
		s.logger.Warn("Skipping struggle insight", "user_id", req.UserID, "quiz_id", req.QuizID, "error", err)
		return result, nil
	}
	struggle := insights.LearnerStruggle(attempt.AttemptNumber, totalTime)
	if struggle.Flagged {
		s.metrics.ObserveInsightFlagged(string(struggle.Kind))
		result.Alert = &struggle
	}

	return result, nil
}

// ===== COURSE COMPLETION =====

func (s *scoringService) CompleteCourse(ctx context.Context, userID, courseID string) (*CompleteCourseResult, error) {
	op := s.log.WithOperation(ctx, "complete_course", userID)
	result, err := s.completeCourse(ctx, userID, courseID)
	op.LogResult(courseID, "course", err)
	return result, err
}

func (s *scoringService) completeCourse(ctx context.Context, userID, courseID string) (*CompleteCourseResult, error) {
	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}

	enrollment, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if enrollment != nil && enrollment.Status == models.EnrollmentCompleted {
		return &CompleteCourseResult{AlreadyCompleted: true, CompletedAt: enrollment.CompletedAt}, nil
	}

	result := &CompleteCourseResult{}
	var (
		event         *models.Event
		notifications []*models.Notification
	)

	err = s.repo.InTx(ctx, func(tx *gorm.DB) error {
		now := s.now()

		transitioned, err := s.repo.Enrollment().MarkCompleted(ctx, tx, userID, courseID, now)
		if err != nil {
			return fmt.Errorf("failed to complete enrollment: %w", err)
		}
		if !transitioned {
			// Another request completed the course after the check above
			stored, err := s.repo.Enrollment().Get(ctx, tx, userID, courseID)
			if err != nil {
				return fmt.Errorf("failed to get enrollment: %w", err)
			}
			result.AlreadyCompleted = true
			result.CompletedAt = stored.CompletedAt
			return nil
		}

		result.CompletedAt = &now
		result.PointsAwarded = CourseCompletionPoints

		if err := s.repo.Ledger().Append(ctx, tx, &models.PointsLedgerEntry{
			UserID:     userID,
			SourceType: models.LedgerSourceCourse,
			SourceID:   courseID,
			Points:     CourseCompletionPoints,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		if _, err := s.progress.MarkCourseProgressComplete(ctx, tx, userID, courseID); err != nil {
			return err
		}

		event, err = s.dispatcher.AppendEvent(ctx, tx, userID, strPtr(courseID), nil, models.CourseCompletedMetadata{
			CourseTitle:   course.Title,
			PointsAwarded: CourseCompletionPoints,
			CompletedAt:   now,
		})
		if err != nil {
			return err
		}
		result.EventID = event.ID

		milestone, err := s.dispatcher.CreateNotification(ctx, tx, userID,
			"Course Completed!",
			fmt.Sprintf("Congratulations! You completed %s and earned %d points.", course.Title, CourseCompletionPoints),
			&event.ID)
		if err != nil {
			return err
		}
		result.NotificationID = milestone.ID
		notifications = append(notifications, milestone)

		if course.InstructorID == "" || course.InstructorID == userID {
			return nil
		}
		if _, err := s.repo.User().GetByID(ctx, tx, course.InstructorID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return fmt.Errorf("failed to get instructor: %w", err)
		}
		instructorNote, err := s.dispatcher.CreateNotification(ctx, tx, course.InstructorID,
			"Learner Completed Course",
			fmt.Sprintf("A learner has completed %s.", course.Title),
			&event.ID)
		if err != nil {
			return err
		}
		result.InstructorNotified = true
		notifications = append(notifications, instructorNote)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCompleted {
		s.dispatcher.Publish(ctx, event, notifications...)
		s.progress.InvalidateCourseProgress(ctx, userID, courseID)
		s.metrics.ObserveCourseCompleted(result.PointsAwarded)
	}
	return result, nil
}

// ===== POINTS =====

func (s *scoringService) GetUserPoints(ctx context.Context, userID string) (*UserPoints, error) {
	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	total, err := s.repo.Ledger().SumByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum points: %w", err)
	}
	badges, err := s.repo.Badge().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	return &UserPoints{
		UserID:      userID,
		TotalPoints: total,
		Badge:       models.BadgeTiers(badges).Classify(int(total)),
	}, nil
}
