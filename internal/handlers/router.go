package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/progress-service/internal/services"
	"github.com/SAP-F-2025/progress-service/internal/utils"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	activityHandler     *ActivityHandler
	notificationHandler *NotificationHandler
	reportHandler       *ReportHandler
	metrics             *monitoring.Recorder
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	metrics *monitoring.Recorder,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		activityHandler:     NewActivityHandler(serviceManager.Scoring(), serviceManager.Progress(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Dispatcher(), logger),
		reportHandler:       NewReportHandler(serviceManager.Leaderboard(), serviceManager.Report(), logger),
		metrics:             metrics,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.PrometheusHandler())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		v1.POST("/quizzes/:id/attempts", hm.activityHandler.SubmitQuizAttempt)
		v1.POST("/lessons/:id/complete", hm.activityHandler.CompleteLesson)

		courses := v1.Group("/courses")
		{
			courses.POST("/:id/enroll", hm.activityHandler.EnrollInCourse)
			courses.POST("/:id/complete", hm.activityHandler.CompleteCourse)
			courses.GET("/:id/progress", hm.activityHandler.GetCourseProgress)

			// Instructor reporting
			courses.GET("/:id/insights", hm.reportHandler.GetCourseInsights)
			courses.GET("/:id/insights/export", hm.reportHandler.ExportCourseInsights)
		}

		me := v1.Group("/me")
		{
			me.GET("/progress", hm.activityHandler.GetMyProgress)
			me.GET("/points", hm.activityHandler.GetMyPoints)
			me.GET("/events", hm.notificationHandler.GetMyEvents)
		}

		v1.GET("/instructors/me/events", hm.notificationHandler.GetInstructorEvents)

		leaderboard := v1.Group("/leaderboard")
		{
			leaderboard.GET("", hm.reportHandler.GetLeaderboard)
			leaderboard.GET("/export", hm.reportHandler.ExportLeaderboard)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.POST("/read-all", hm.notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", hm.notificationHandler.MarkRead)
			notifications.POST("/:id/dismiss", hm.notificationHandler.Dismiss)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "progress-service",
	})
}
