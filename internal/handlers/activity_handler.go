package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/progress-service/internal/services"
	"github.com/SAP-F-2025/progress-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the learner write path and the learner's own reads
type ActivityHandler struct {
	BaseHandler
	scoringService  services.ScoringService
	progressService services.ProgressService
}

func NewActivityHandler(
	scoringService services.ScoringService,
	progressService services.ProgressService,
	logger utils.Logger,
) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		scoringService:  scoringService,
		progressService: progressService,
	}
}

// SubmitQuizAttempt records a scored quiz attempt
// @Summary Submit quiz attempt
// @Description Records a scored attempt, credits points and refreshes course progress
// @Tags activity
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param attempt body SubmitAttemptRequest true "Attempt result"
// @Success 201 {object} services.SubmitQuizAttemptResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (h *ActivityHandler) SubmitQuizAttempt(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var body SubmitAttemptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz attempt", "quiz_id", quizID)

	result, err := h.scoringService.SubmitQuizAttempt(c.Request.Context(), &services.SubmitQuizAttemptRequest{
		UserID:           userID,
		QuizID:           quizID,
		Score:            body.Score,
		TotalQuestions:   body.TotalQuestions,
		TimeSpentSeconds: body.TimeSpentSeconds,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CompleteLesson marks a lesson completed for the caller
// @Summary Complete lesson
// @Tags activity
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param body body CompleteLessonBody false "Time spent"
// @Success 200 {object} services.CompleteLessonResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id}/complete [post]
func (h *ActivityHandler) CompleteLesson(c *gin.Context) {
	lessonID := ParseStringIDParam(c, "id")
	if lessonID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var body CompleteLessonBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	h.LogRequest(c, "Completing lesson", "lesson_id", lessonID)

	result, err := h.progressService.CompleteLesson(c.Request.Context(), &services.CompleteLessonRequest{
		UserID:           userID,
		LessonID:         lessonID,
		TimeSpentSeconds: body.TimeSpentSeconds,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EnrollInCourse enrolls the caller; repeating it is a no-op
// @Summary Enroll in course
// @Tags activity
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} services.EnrollResult
// @Success 200 {object} services.EnrollResult
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enroll [post]
func (h *ActivityHandler) EnrollInCourse(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	result, err := h.progressService.EnrollInCourse(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// CompleteCourse completes the caller's course enrollment and credits completion points once
// @Summary Complete course
// @Tags activity
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} services.CompleteCourseResult
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/complete [post]
func (h *ActivityHandler) CompleteCourse(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Completing course", "course_id", courseID)

	result, err := h.scoringService.CompleteCourse(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCourseProgress returns the caller's progress snapshot for a course
// @Summary Get course progress
// @Tags progress
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.CourseProgress
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/progress [get]
func (h *ActivityHandler) GetCourseProgress(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.GetCourseProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetMyProgress lists the caller's progress across courses
// @Router /me/progress [get]
func (h *ActivityHandler) GetMyProgress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	rows, err := h.progressService.GetUserCourseProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course progress retrieved", rows)
}

// GetMyPoints returns the caller's point total and badge
// @Router /me/points [get]
func (h *ActivityHandler) GetMyPoints(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	points, err := h.scoringService.GetUserPoints(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, points)
}
