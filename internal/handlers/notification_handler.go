package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/progress-service/internal/services"
	"github.com/SAP-F-2025/progress-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves notifications and the activity event feeds
type NotificationHandler struct {
	BaseHandler
	dispatcher services.DispatcherService
}

func NewNotificationHandler(dispatcher services.DispatcherService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: NewBaseHandler(logger),
		dispatcher:  dispatcher,
	}
}

// ListNotifications lists the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param status query string false "UNREAD, READ or DISMISSED"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} services.NotificationList
// @Failure 400 {object} ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	list, err := h.dispatcher.GetUserNotifications(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// MarkRead marks one notification read
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID := ParseStringIDParam(c, "id")
	if notificationID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	notification, err := h.dispatcher.MarkRead(c.Request.Context(), notificationID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// Dismiss dismisses one notification
// @Router /notifications/{id}/dismiss [post]
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	notificationID := ParseStringIDParam(c, "id")
	if notificationID == "" {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	notification, err := h.dispatcher.Dismiss(c.Request.Context(), notificationID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllRead marks every unread notification of the caller read
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	updated, err := h.dispatcher.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": updated})
}

// GetMyEvents lists the caller's activity events
// @Summary List my activity
// @Tags events
// @Produce json
// @Param type query string false "Event type"
// @Param course_id query string false "Course ID"
// @Param date_from query string false "RFC3339 lower bound"
// @Param date_to query string false "RFC3339 upper bound"
// @Success 200 {object} SuccessResponse{data=[]services.EventView}
// @Router /me/events [get]
func (h *NotificationHandler) GetMyEvents(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req, ok := h.bindEventQuery(c)
	if !ok {
		return
	}

	views, err := h.dispatcher.GetUserEvents(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Events retrieved", views)
}

// GetInstructorEvents lists activity on the courses the caller teaches
// @Summary List activity on my courses
// @Tags events
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.EventView}
// @Failure 403 {object} ErrorResponse
// @Router /instructors/me/events [get]
func (h *NotificationHandler) GetInstructorEvents(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req, ok := h.bindEventQuery(c)
	if !ok {
		return
	}

	views, err := h.dispatcher.GetInstructorEvents(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Events retrieved", views)
}

func (h *NotificationHandler) bindEventQuery(c *gin.Context) (*services.EventListRequest, bool) {
	var req services.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return nil, false
	}
	return &req, true
}
