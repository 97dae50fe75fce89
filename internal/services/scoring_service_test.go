package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/insights"
	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPointsForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0, 0},
		{8, 80},
		{7.5, 75},
		{7.99, 79},
		{10, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PointsForScore(tt.score), "score %v", tt.score)
	}
}

func TestScoringService_QuizThenCourseCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	instructor := testutil.SeedUser(t, env.db, "Grace", models.RoleInstructor)
	fixture := testutil.SeedCourse(t, env.db, instructor.ID, 2, 1)
	quiz := fixture.Quizzes[0]

	submitted, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:           learner.ID,
		QuizID:           quiz.ID,
		Score:            8,
		TotalQuestions:   10,
		TimeSpentSeconds: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, submitted.AttemptNumber)
	assert.Equal(t, 80, submitted.PointsAwarded)
	assert.Equal(t, 80, submitted.Percentage)
	assert.NotEmpty(t, submitted.EventID)
	assert.Nil(t, submitted.Alert)

	progress, err := env.repo.Progress().GetCourseProgress(ctx, nil, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.QuizzesCompleted)
	assert.Equal(t, 1, progress.TotalQuizzes)
	assert.Equal(t, 0.0, progress.ProgressPercentage)

	completed, err := env.services.Scoring().CompleteCourse(ctx, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.False(t, completed.AlreadyCompleted)
	assert.Equal(t, CourseCompletionPoints, completed.PointsAwarded)
	assert.True(t, completed.InstructorNotified)
	require.NotNil(t, completed.CompletedAt)

	enrollment, err := env.repo.Enrollment().Get(ctx, nil, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, enrollment.Status)

	progress, err = env.repo.Progress().GetCourseProgress(ctx, nil, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, progress.ProgressPercentage)

	points, err := env.services.Scoring().GetUserPoints(ctx, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(180), points.TotalPoints)
	require.NotNil(t, points.Badge)
	assert.Equal(t, "Bronze", points.Badge.Name)

	assert.Len(t, env.eventsOf(t, learner.ID, models.EventQuizSubmitted), 1)
	courseEvents := env.eventsOf(t, learner.ID, models.EventCourseCompleted)
	require.Len(t, courseEvents, 1)
	assert.Equal(t, completed.EventID, courseEvents[0].ID)

	learnerNotes := env.notificationsOf(t, learner.ID)
	require.Len(t, learnerNotes, 1)
	assert.Equal(t, "Course Completed!", learnerNotes[0].Title)
	require.NotNil(t, learnerNotes[0].RelatedEventID)
	assert.Equal(t, completed.EventID, *learnerNotes[0].RelatedEventID)

	instructorNotes := env.notificationsOf(t, instructor.ID)
	require.Len(t, instructorNotes, 1)
	assert.Equal(t, "Learner Completed Course", instructorNotes[0].Title)

	assert.Equal(t, []models.EventType{models.EventQuizSubmitted, models.EventCourseCompleted}, env.publishedTypes())
	published := env.publisher.GetPublishedMessages()
	assert.Len(t, published[1].NotificationIDs, 2)

	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.QuizSubmissions))
	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.CoursesCompleted))
	assert.Equal(t, 100.0, promtest.ToFloat64(env.metrics.PointsAwarded.WithLabelValues("COURSE")))
}

func TestScoringService_CompleteCourseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	fixture := testutil.SeedCourse(t, env.db, "missing-instructor", 1, 0)

	first, err := env.services.Scoring().CompleteCourse(ctx, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.False(t, first.InstructorNotified)

	second, err := env.services.Scoring().CompleteCourse(ctx, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Zero(t, second.PointsAwarded)
	assert.Empty(t, second.EventID)
	require.NotNil(t, second.CompletedAt)
	assert.WithinDuration(t, *first.CompletedAt, *second.CompletedAt, time.Second)

	total, err := env.repo.Ledger().SumByUser(ctx, nil, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(CourseCompletionPoints), total)

	assert.Len(t, env.eventsOf(t, learner.ID, models.EventCourseCompleted), 1)
	assert.Len(t, env.notificationsOf(t, learner.ID), 1)
	assert.Len(t, env.publisher.GetPublishedMessages(), 1)
}

func TestScoringService_InstructorCompletingOwnCourseIsNotNotifiedTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := testutil.SeedUser(t, env.db, "Grace", models.RoleInstructor)
	fixture := testutil.SeedCourse(t, env.db, instructor.ID, 1, 0)

	result, err := env.services.Scoring().CompleteCourse(ctx, instructor.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.False(t, result.InstructorNotified)
	assert.Len(t, env.notificationsOf(t, instructor.ID), 1)
}

func TestScoringService_AttemptNumberingAndStruggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	quiz := testutil.SeedStandaloneQuiz(t, env.db, "Practice")

	var results []*SubmitQuizAttemptResult
	for i := 0; i < 3; i++ {
		result, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
			UserID:           learner.ID,
			QuizID:           quiz.ID,
			Score:            4,
			TotalQuestions:   10,
			TimeSpentSeconds: 60,
		})
		require.NoError(t, err)
		results = append(results, result)
	}

	for i, result := range results {
		assert.Equal(t, i+1, result.AttemptNumber)
		assert.Equal(t, 40, result.PointsAwarded)
		assert.Equal(t, 40, result.Percentage)
	}
	assert.Nil(t, results[0].Alert)
	assert.Nil(t, results[1].Alert)
	require.NotNil(t, results[2].Alert)
	assert.Equal(t, insights.KindStruggle, results[2].Alert.Kind)
	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.InsightsFlagged.WithLabelValues(string(insights.KindStruggle))))

	// A quiz outside any course never touches course progress
	rows, err := env.repo.Progress().ListCourseProgressByUser(ctx, nil, learner.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestScoringService_StruggleByTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	quiz := testutil.SeedStandaloneQuiz(t, env.db, "Long")

	result, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:           learner.ID,
		QuizID:           quiz.ID,
		Score:            9,
		TotalQuestions:   10,
		TimeSpentSeconds: insights.StruggleTimeThreshold + 1,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Alert)
	assert.Equal(t, insights.KindStruggle, result.Alert.Kind)
}

func TestScoringService_SubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	quiz := testutil.SeedStandaloneQuiz(t, env.db, "Practice")

	_, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         quiz.ID,
		Score:          5,
		TotalQuestions: 0,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         quiz.ID,
		Score:          -1,
		TotalQuestions: 10,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         "no-such-quiz",
		Score:          5,
		TotalQuestions: 10,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuizNotFound))
	assert.True(t, IsNotFound(err))

	_, err = env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         "ghost",
		QuizID:         quiz.ID,
		Score:          5,
		TotalQuestions: 10,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUserNotFound))

	assert.Empty(t, env.publisher.GetPublishedMessages())
}

func TestScoringService_PublishFailureDoesNotFailSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.publisher.Err = errors.New("broker down")

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	quiz := testutil.SeedStandaloneQuiz(t, env.db, "Practice")

	result, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         quiz.ID,
		Score:          10,
		TotalQuestions: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.PointsAwarded)
	assert.Len(t, env.eventsOf(t, learner.ID, models.EventQuizSubmitted), 1)
	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.PublishFailures))
}

func TestScoringService_GetUserPointsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Scoring().GetUserPoints(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestScoringService_SubmitQuizAttemptScoreBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	quiz := testutil.SeedStandaloneQuiz(t, env.db, "Practice")

	for _, score := range []float64{1e18, MaxQuizScore + 0.5} {
		_, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
			UserID:         learner.ID,
			QuizID:         quiz.ID,
			Score:          score,
			TotalQuestions: 10,
		})
		require.Error(t, err, "score %v", score)
		assert.True(t, IsValidation(err), "score %v", score)
	}
	assert.Zero(t, env.count(t, &models.QuizAttempt{}))
	assert.Zero(t, env.count(t, &models.PointsLedgerEntry{}))

	result, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         quiz.ID,
		Score:          MaxQuizScore,
		TotalQuestions: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxQuizScore*10, result.PointsAwarded)

	points, err := env.services.Scoring().GetUserPoints(ctx, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxQuizScore*10), points.TotalPoints)
}

func TestScoringService_SubmitQuizAttemptRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	fixture := testutil.SeedCourse(t, env.db, "instructor-1", 2, 1)
	testutil.FailCreates(t, env.db, "events")

	_, err := env.services.Scoring().SubmitQuizAttempt(ctx, &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         fixture.Quizzes[0].ID,
		Score:          8,
		TotalQuestions: 10,
	})
	require.Error(t, err)

	assert.Zero(t, env.count(t, &models.QuizAttempt{}))
	assert.Zero(t, env.count(t, &models.PointsLedgerEntry{}))
	assert.Zero(t, env.count(t, &models.CourseProgress{}))
	assert.Zero(t, env.count(t, &models.Event{}))
	assert.Empty(t, env.publisher.GetPublishedMessages())
	assert.Zero(t, promtest.ToFloat64(env.metrics.QuizSubmissions))
}

func TestScoringService_CompleteCourseRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	fixture := testutil.SeedCourse(t, env.db, "instructor-1", 1, 0)
	testutil.FailCreates(t, env.db, "notifications")

	_, err := env.services.Scoring().CompleteCourse(ctx, learner.ID, fixture.Course.ID)
	require.Error(t, err)

	assert.Zero(t, env.count(t, &models.CourseEnrollment{}))
	assert.Zero(t, env.count(t, &models.PointsLedgerEntry{}))
	assert.Zero(t, env.count(t, &models.CourseProgress{}))
	assert.Zero(t, env.count(t, &models.Event{}))
	assert.Empty(t, env.publisher.GetPublishedMessages())
}

func TestScoringService_CompleteCourseLosingConcurrentCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	instructor := testutil.SeedUser(t, env.db, "Grace", models.RoleInstructor)
	fixture := testutil.SeedCourse(t, env.db, instructor.ID, 1, 0)

	// Another request completes the course between the status check and the insert
	winnerAt := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	testutil.InsertEnrollmentBeforeNextCreate(t, env.db, models.CourseEnrollment{
		UserID:      learner.ID,
		CourseID:    fixture.Course.ID,
		Status:      models.EnrollmentCompleted,
		EnrolledAt:  winnerAt,
		CompletedAt: &winnerAt,
	})

	result, err := env.services.Scoring().CompleteCourse(ctx, learner.ID, fixture.Course.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCompleted)
	assert.Zero(t, result.PointsAwarded)
	assert.False(t, result.InstructorNotified)
	require.NotNil(t, result.CompletedAt)
	assert.WithinDuration(t, winnerAt, *result.CompletedAt, time.Second)

	assert.Zero(t, env.count(t, &models.PointsLedgerEntry{}))
	assert.Empty(t, env.eventsOf(t, learner.ID, models.EventCourseCompleted))
	assert.Empty(t, env.notificationsOf(t, learner.ID))
	assert.Empty(t, env.notificationsOf(t, instructor.ID))
	assert.Empty(t, env.publisher.GetPublishedMessages())
}

// staleNumbering answers GetNextAttemptNumber with 1 for the next `stale` calls,
// the number a request that read before a concurrent commit would see
type staleNumbering struct {
	repositories.AttemptRepository
	stale int
	calls int
}

func (s *staleNumbering) GetNextAttemptNumber(ctx context.Context, tx *gorm.DB, userID, quizID string) (int, error) {
	s.calls++
	if s.stale > 0 {
		s.stale--
		return 1, nil
	}
	return s.AttemptRepository.GetNextAttemptNumber(ctx, tx, userID, quizID)
}

type attemptOverride struct {
	repositories.Repository
	attempts repositories.AttemptRepository
}

func (r attemptOverride) Attempt() repositories.AttemptRepository { return r.attempts }

func newStaleNumberingEnv(t *testing.T) (*testEnv, *staleNumbering) {
	numbering := &staleNumbering{}
	env := newTestEnvWithRepo(t, func(base repositories.Repository) repositories.Repository {
		numbering.AttemptRepository = base.Attempt()
		return attemptOverride{Repository: base, attempts: numbering}
	})
	return env, numbering
}

func TestScoringService_AttemptNumberCollisionIsRetried(t *testing.T) {
	env, numbering := newStaleNumberingEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	fixture := testutil.SeedCourse(t, env.db, "instructor-1", 1, 1)
	req := &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         fixture.Quizzes[0].ID,
		Score:          5,
		TotalQuestions: 10,
	}

	first, err := env.services.Scoring().SubmitQuizAttempt(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptNumber)

	numbering.stale = 1
	numbering.calls = 0
	second, err := env.services.Scoring().SubmitQuizAttempt(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptNumber)
	assert.Equal(t, 2, numbering.calls)

	assert.Equal(t, int64(2), env.count(t, &models.QuizAttempt{}))
	assert.Equal(t, int64(2), env.count(t, &models.PointsLedgerEntry{}))
	assert.Len(t, env.eventsOf(t, learner.ID, models.EventQuizSubmitted), 2)
	assert.Len(t, env.publisher.GetPublishedMessages(), 2)
}

func TestScoringService_AttemptNumberContentionGivesUp(t *testing.T) {
	env, numbering := newStaleNumberingEnv(t)
	ctx := context.Background()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	quiz := testutil.SeedStandaloneQuiz(t, env.db, "Practice")
	req := &SubmitQuizAttemptRequest{
		UserID:         learner.ID,
		QuizID:         quiz.ID,
		Score:          5,
		TotalQuestions: 10,
	}

	_, err := env.services.Scoring().SubmitQuizAttempt(ctx, req)
	require.NoError(t, err)

	numbering.stale = 100
	numbering.calls = 0
	_, err = env.services.Scoring().SubmitQuizAttempt(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptNumberContention)
	assert.True(t, IsConflict(err))
	assert.Equal(t, maxAttemptRetries, numbering.calls)

	assert.Equal(t, int64(1), env.count(t, &models.QuizAttempt{}))
	assert.Equal(t, int64(1), env.count(t, &models.PointsLedgerEntry{}))
	assert.Len(t, env.publisher.GetPublishedMessages(), 1)
}
