package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, env *testEnv, userID, title string) *models.Notification {
	t.Helper()
	notification, err := env.services.Dispatcher().CreateNotification(context.Background(), nil, userID, title, "body", nil)
	require.NoError(t, err)
	return notification
}

func TestDispatcherService_NotificationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dispatcher := env.services.Dispatcher()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	other := testutil.SeedUser(t, env.db, "Bob", models.RoleLearner)
	note := seedNotification(t, env, learner.ID, "Hello")
	assert.Equal(t, models.NotificationUnread, note.Status)

	_, err := dispatcher.MarkRead(ctx, "missing", learner.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = dispatcher.MarkRead(ctx, note.ID, other.ID)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	assert.Equal(t, "notification", permErr.Resource)

	read, err := dispatcher.MarkRead(ctx, note.ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationRead, read.Status)
	require.NotNil(t, read.ReadAt)

	// Same-status transition is a no-op
	again, err := dispatcher.MarkRead(ctx, note.ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationRead, again.Status)

	dismissed, err := dispatcher.Dismiss(ctx, note.ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDismissed, dismissed.Status)
	assert.NotNil(t, dismissed.ReadAt)

	_, err = dispatcher.MarkRead(ctx, note.ID, learner.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, IsValidation(err))

	stored, err := env.repo.Notification().GetByID(ctx, nil, note.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDismissed, stored.Status)
}

func TestDispatcherService_MarkAllReadAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dispatcher := env.services.Dispatcher()

	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	for _, title := range []string{"one", "two", "three"} {
		seedNotification(t, env, learner.ID, title)
	}
	dismissed := seedNotification(t, env, learner.ID, "four")
	_, err := dispatcher.Dismiss(ctx, dismissed.ID, learner.ID)
	require.NoError(t, err)

	unread := models.NotificationUnread
	list, err := dispatcher.GetUserNotifications(ctx, learner.ID, &NotificationListRequest{Status: &unread})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, defaultPageSize, list.Limit)

	updated, err := dispatcher.MarkAllRead(ctx, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	list, err = dispatcher.GetUserNotifications(ctx, learner.ID, &NotificationListRequest{Status: &unread})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	all, err := dispatcher.GetUserNotifications(ctx, learner.ID, &NotificationListRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Len(t, all.Notifications, 2)

	bogus := models.NotificationStatus("ARCHIVED")
	_, err = dispatcher.GetUserNotifications(ctx, learner.ID, &NotificationListRequest{Status: &bogus})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDispatcherService_CreateNotificationRequiresTitle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Dispatcher().CreateNotification(context.Background(), nil, "u1", "", "body", nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDispatcherService_InstructorEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instructor := testutil.SeedUser(t, env.db, "Grace", models.RoleInstructor)
	learner := testutil.SeedUser(t, env.db, "Ada", models.RoleLearner)
	own := testutil.SeedCourse(t, env.db, instructor.ID, 1, 0)
	second := testutil.SeedCourse(t, env.db, instructor.ID, 1, 0)
	foreign := testutil.SeedCourse(t, env.db, "someone-else", 1, 0)

	for _, fixture := range []*testutil.CourseFixture{own, second, foreign} {
		_, err := env.services.Progress().EnrollInCourse(ctx, learner.ID, fixture.Course.ID)
		require.NoError(t, err)
	}
	_, err := env.services.Progress().CompleteLesson(ctx, &CompleteLessonRequest{
		UserID:           learner.ID,
		LessonID:         own.Lessons[0].ID,
		TimeSpentSeconds: 300,
	})
	require.NoError(t, err)

	views, err := env.services.Dispatcher().GetInstructorEvents(ctx, instructor.ID, nil)
	require.NoError(t, err)
	assert.Len(t, views, 3)
	for _, view := range views {
		require.NotNil(t, view.CourseID)
		assert.NotEqual(t, foreign.Course.ID, *view.CourseID)
	}

	courseID := own.Course.ID
	lessonType := models.EventLessonCompleted
	views, err = env.services.Dispatcher().GetInstructorEvents(ctx, instructor.ID, &EventListRequest{
		CourseID: &courseID,
		Type:     &lessonType,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	_, ok := views[0].Metadata.(*models.LessonCompletedMetadata)
	assert.True(t, ok)

	foreignID := foreign.Course.ID
	views, err = env.services.Dispatcher().GetInstructorEvents(ctx, instructor.ID, &EventListRequest{CourseID: &foreignID})
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = env.services.Dispatcher().GetInstructorEvents(ctx, learner.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.True(t, IsUnauthorized(err))

	_, err = env.services.Dispatcher().GetInstructorEvents(ctx, "ghost", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	mine, err := env.services.Dispatcher().GetUserEvents(ctx, learner.ID, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 4)
}
