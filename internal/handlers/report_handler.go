package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/progress-service/internal/services"
	"github.com/SAP-F-2025/progress-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the leaderboard, course insights and their xlsx exports
type ReportHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
	reportService      services.ReportService
}

func NewReportHandler(
	leaderboardService services.LeaderboardService,
	reportService services.ReportService,
	logger utils.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
		reportService:      reportService,
	}
}

// GetLeaderboard returns the top learners by points
// @Summary Leaderboard
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Number of learners (default 5, max 100)"
// @Success 200 {object} SuccessResponse{data=[]services.LeaderboardEntry}
// @Failure 400 {object} ErrorResponse
// @Router /leaderboard [get]
func (h *ReportHandler) GetLeaderboard(c *gin.Context) {
	limit, ok := ParseLimitQuery(c, "limit")
	if !ok {
		return
	}

	entries, err := h.leaderboardService.GetTopLearners(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Leaderboard retrieved", entries)
}

// ExportLeaderboard downloads the leaderboard as xlsx
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /leaderboard/export [get]
func (h *ReportHandler) ExportLeaderboard(c *gin.Context) {
	limit, ok := ParseLimitQuery(c, "limit")
	if !ok {
		return
	}

	data, err := h.reportService.ExportLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	attachment(c, "leaderboard.xlsx", data)
}

// GetCourseInsights runs the insight engine over a course's history
// @Summary Course insights
// @Tags insights
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} services.CourseInsightReport
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/insights [get]
func (h *ReportHandler) GetCourseInsights(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Building course insights", "course_id", courseID)

	report, err := h.reportService.GetCourseInsights(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportCourseInsights downloads the course insight report as xlsx
// @Router /courses/{id}/insights/export [get]
func (h *ReportHandler) ExportCourseInsights(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	data, err := h.reportService.ExportCourseInsights(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	attachment(c, "course-"+courseID+"-insights.xlsx", data)
}
