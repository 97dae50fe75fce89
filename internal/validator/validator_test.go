package validator

import (
	"testing"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventQuery struct {
	Type   *models.EventType          `json:"type" validate:"omitempty,event_type"`
	Status *models.NotificationStatus `json:"status" validate:"omitempty,notification_status"`
	Role   models.UserRole            `json:"role" validate:"required,user_role"`
}

func TestValidator_CustomTags(t *testing.T) {
	v := New()

	good := models.EventQuizSubmitted
	unread := models.NotificationUnread
	assert.NoError(t, v.Validate(eventQuery{Type: &good, Status: &unread, Role: models.RoleLearner}))
	assert.NoError(t, v.Validate(eventQuery{Role: models.RoleAdmin}))

	bad := models.EventType("QUIZ_PASSED")
	gone := models.NotificationStatus("ARCHIVED")
	err := v.Validate(eventQuery{Type: &bad, Status: &gone, Role: "STUDENT"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 3)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Rule
	}
	assert.Equal(t, "event_type", fields["type"])
	assert.Equal(t, "notification_status", fields["status"])
	assert.Equal(t, "user_role", fields["role"])
}
