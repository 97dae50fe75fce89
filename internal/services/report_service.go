package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/insights"
	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"github.com/xuri/excelize/v2"
)

type reportService struct {
	repo        repositories.Repository
	leaderboard LeaderboardService
	metrics     *monitoring.Recorder
	logger      *slog.Logger
	log         *ServiceLogger
	now         func() time.Time
}

func NewReportService(repo repositories.Repository, leaderboard LeaderboardService, metrics *monitoring.Recorder, logger *slog.Logger) ReportService {
	return &reportService{
		repo:        repo,
		leaderboard: leaderboard,
		metrics:     metrics,
		logger:      logger,
		log:         NewServiceLogger(logger, LogConfig{Service: "progress-service", Component: "reports"}),
		now:         utcNow,
	}
}

// ===== COURSE INSIGHTS =====

func (s *reportService) GetCourseInsights(ctx context.Context, requesterID, courseID string) (*CourseInsightReport, error) {
	op := s.log.WithOperation(ctx, "get_course_insights", requesterID)
	report, err := s.getCourseInsights(ctx, requesterID, courseID)
	op.LogResult(courseID, "course", err)
	return report, err
}

func (s *reportService) getCourseInsights(ctx context.Context, requesterID, courseID string) (*CourseInsightReport, error) {
	requester, err := s.repo.User().GetByID(ctx, nil, requesterID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if requester.Role != models.RoleAdmin && course.InstructorID != requesterID {
		return nil, NewPermissionError(ErrInsightsAccessDenied, requesterID, courseID, "course", "view_insights", "not the course instructor")
	}

	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	learners := len(enrollments)

	report := &CourseInsightReport{
		CourseID:         course.ID,
		CourseTitle:      course.Title,
		EnrolledLearners: learners,
		Lessons:          make([]LessonInsight, 0),
		Quizzes:          make([]QuizInsight, 0),
		GeneratedAt:      s.now(),
	}

	if err := s.addLessonInsights(ctx, report); err != nil {
		return nil, err
	}
	if err := s.addQuizInsights(ctx, report); err != nil {
		return nil, err
	}

	s.countFlagged(report)
	return report, nil
}

func (s *reportService) addLessonInsights(ctx context.Context, report *CourseInsightReport) error {
	lessons, err := s.repo.Course().GetLessons(ctx, nil, report.CourseID)
	if err != nil {
		return fmt.Errorf("failed to list lessons: %w", err)
	}
	counts, err := s.repo.Progress().GetLessonCompletionCounts(ctx, nil, report.CourseID)
	if err != nil {
		return fmt.Errorf("failed to count lesson completions: %w", err)
	}

	byLesson := make(map[string]repositories.LessonCompletionCount, len(counts))
	for _, c := range counts {
		byLesson[c.LessonID] = c
	}

	// No enrolled learners means no completion rates, which never flags drop-off
	rates := make([]float64, 0, len(lessons))
	for _, lesson := range lessons {
		count := byLesson[lesson.ID]
		insight := LessonInsight{
			LessonID:                lesson.ID,
			Title:                   lesson.Title,
			Position:                lesson.Position,
			CompletedCount:          count.CompletedCount,
			AverageTimeSpentSeconds: count.AverageTimeSpent,
			Pacing:                  insights.Insight{Kind: insights.KindPacing},
		}
		if report.EnrolledLearners > 0 {
			insight.CompletionRate = math.Min(1, float64(count.CompletedCount)/float64(report.EnrolledLearners))
			rates = append(rates, insight.CompletionRate)
		}
		if count.CompletedCount > 0 {
			insight.Pacing = insights.LessonPacing(int64(math.Round(count.AverageTimeSpent)), lesson.ExpectedDurationSeconds)
		}
		report.Lessons = append(report.Lessons, insight)
	}

	report.Dropoff = insights.CourseDropoff(rates)
	return nil
}

func (s *reportService) addQuizInsights(ctx context.Context, report *CourseInsightReport) error {
	quizzes, err := s.repo.Course().GetQuizzes(ctx, nil, report.CourseID)
	if err != nil {
		return fmt.Errorf("failed to list quizzes: %w", err)
	}

	for _, quiz := range quizzes {
		counts, err := s.repo.Attempt().GetLearnerAttemptCounts(ctx, nil, quiz.ID)
		if err != nil {
			return fmt.Errorf("failed to count attempts for quiz %s: %w", quiz.ID, err)
		}

		insight := QuizInsight{
			QuizID:             quiz.ID,
			Title:              quiz.Title,
			LearnersAttempted:  len(counts),
			StrugglingLearners: make([]LearnerStruggle, 0),
		}

		attempts := make([]int, 0, len(counts))
		total := 0
		for _, c := range counts {
			attempts = append(attempts, int(c.Attempts))
			total += int(c.Attempts)

			struggle := insights.LearnerStruggle(int(c.Attempts), c.TimeSpentSeconds)
			if struggle.Flagged {
				insight.StrugglingLearners = append(insight.StrugglingLearners, LearnerStruggle{
					UserID:           c.UserID,
					Attempts:         c.Attempts,
					TimeSpentSeconds: c.TimeSpentSeconds,
					Insight:          struggle,
				})
			}
		}
		if len(counts) > 0 {
			insight.AverageAttempts = float64(total) / float64(len(counts))
		}
		insight.Difficulty = insights.LessonDifficulty(attempts)

		report.Quizzes = append(report.Quizzes, insight)
	}
	return nil
}

func (s *reportService) countFlagged(report *CourseInsightReport) {
	if report.Dropoff.Flagged {
		s.metrics.ObserveInsightFlagged(string(report.Dropoff.Kind))
	}
	for _, lesson := range report.Lessons {
		if lesson.Pacing.Flagged {
			s.metrics.ObserveInsightFlagged(string(lesson.Pacing.Kind))
		}
	}
	for _, quiz := range report.Quizzes {
		if quiz.Difficulty.Flagged {
			s.metrics.ObserveInsightFlagged(string(quiz.Difficulty.Kind))
		}
	}
}

// ===== EXPORTS =====

func (s *reportService) ExportLeaderboard(ctx context.Context, n int) ([]byte, error) {
	entries, err := s.leaderboard.GetTopLearners(ctx, n)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leaderboard"
	if err := newActiveSheet(f, sheetName); err != nil {
		return nil, err
	}

	writeRow(f, sheetName, 1, []interface{}{"Rank", "Learner ID", "Name", "Total Points", "Completed Courses", "Badge"})
	for i, entry := range entries {
		writeRow(f, sheetName, i+2, []interface{}{
			entry.Rank, entry.UserID, entry.Name, entry.TotalPoints, entry.CompletedCourseCount, entry.Badge,
		})
	}

	return writeWorkbook(f)
}

func (s *reportService) ExportCourseInsights(ctx context.Context, requesterID, courseID string) ([]byte, error) {
	report, err := s.GetCourseInsights(ctx, requesterID, courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	lessonSheet := "Lessons"
	if err := newActiveSheet(f, lessonSheet); err != nil {
		return nil, err
	}
	writeRow(f, lessonSheet, 1, []interface{}{
		"Position", "Lesson", "Completed", "Completion Rate", "Avg Time (s)", "Pacing", "Pacing Alert",
	})
	for i, lesson := range report.Lessons {
		writeRow(f, lessonSheet, i+2, []interface{}{
			lesson.Position, lesson.Title, lesson.CompletedCount,
			math.Round(lesson.CompletionRate*1000) / 1000,
			math.Round(lesson.AverageTimeSpentSeconds),
			string(lesson.Pacing.Kind), lesson.Pacing.Flagged,
		})
	}
	summaryRow := len(report.Lessons) + 3
	writeRow(f, lessonSheet, summaryRow, []interface{}{"Enrolled learners", report.EnrolledLearners})
	writeRow(f, lessonSheet, summaryRow+1, []interface{}{"Drop-off alert", report.Dropoff.Flagged, report.Dropoff.Message})

	quizSheet := "Quizzes"
	if _, err := f.NewSheet(quizSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	writeRow(f, quizSheet, 1, []interface{}{
		"Quiz", "Learners Attempted", "Avg Attempts", "Difficulty Alert", "Struggling Learners",
	})
	for i, quiz := range report.Quizzes {
		writeRow(f, quizSheet, i+2, []interface{}{
			quiz.Title, quiz.LearnersAttempted,
			math.Round(quiz.AverageAttempts*100) / 100,
			quiz.Difficulty.Flagged, len(quiz.StrugglingLearners),
		})
	}

	return writeWorkbook(f)
}

// newActiveSheet renames the default sheet so the workbook opens on sheetName
func newActiveSheet(f *excelize.File, sheetName string) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheetName string, row int, values []interface{}) {
	for col, value := range values {
		cell := fmt.Sprintf("%c%d", 'A'+col, row)
		f.SetCellValue(sheetName, cell, value)
	}
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
