package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeTiers_Classify(t *testing.T) {
	tiers := BadgeTiers(DefaultBadges())

	tests := []struct {
		points int
		want   string
	}{
		{0, "Bronze"},
		{499, "Bronze"},
		{500, "Silver"},
		{1499, "Silver"},
		{1500, "Gold"},
		{3000, "Platinum"},
		{99999, "Platinum"},
	}
	for _, tt := range tests {
		badge := tiers.Classify(tt.points)
		require.NotNil(t, badge, "points=%d", tt.points)
		assert.Equal(t, tt.want, badge.Name, "points=%d", tt.points)
	}
}

func TestBadgeTiers_ClassifyUnsortedAndBelowThreshold(t *testing.T) {
	tiers := BadgeTiers{
		{Name: "Gold", MinPoints: 1000},
		{Name: "Silver", MinPoints: 100},
	}

	assert.Nil(t, tiers.Classify(50))
	assert.Equal(t, "Silver", tiers.Classify(100).Name)
	assert.Equal(t, "Gold", tiers.Classify(1200).Name)

	// input order is left untouched
	assert.Equal(t, "Gold", tiers[0].Name)
	assert.Nil(t, BadgeTiers(nil).Classify(10))
}

func TestNotification_CanTransitionTo(t *testing.T) {
	unread := &Notification{Status: NotificationUnread}
	read := &Notification{Status: NotificationRead}
	dismissed := &Notification{Status: NotificationDismissed}

	assert.True(t, unread.CanTransitionTo(NotificationRead))
	assert.True(t, unread.CanTransitionTo(NotificationDismissed))
	assert.True(t, read.CanTransitionTo(NotificationRead))
	assert.True(t, read.CanTransitionTo(NotificationDismissed))
	assert.True(t, dismissed.CanTransitionTo(NotificationDismissed))

	assert.False(t, dismissed.CanTransitionTo(NotificationRead))
	assert.False(t, read.CanTransitionTo(NotificationUnread))
	assert.False(t, unread.CanTransitionTo(NotificationStatus("ARCHIVED")))
}

func TestEvent_MetadataRoundTrip(t *testing.T) {
	courseID := "course-1"
	event, err := NewEvent("user-1", &courseID, nil, QuizSubmittedMetadata{
		QuizTitle:      "Intro quiz",
		Score:          8,
		TotalQuestions: 10,
		AttemptNumber:  2,
		PointsAwarded:  80,
		Percentage:     80,
	})
	require.NoError(t, err)
	assert.Equal(t, EventQuizSubmitted, event.Type)
	assert.Equal(t, "user-1", event.UserID)

	decoded, err := event.DecodeMetadata()
	require.NoError(t, err)
	quiz, ok := decoded.(*QuizSubmittedMetadata)
	require.True(t, ok)
	assert.Equal(t, 2, quiz.AttemptNumber)
	assert.Equal(t, 80, quiz.PointsAwarded)
}

func TestEvent_DecodeMetadataErrors(t *testing.T) {
	_, err := NewEvent("user-1", nil, nil, nil)
	assert.Error(t, err)

	unknown := &Event{Type: EventType("PAGE_VIEWED")}
	_, err = unknown.DecodeMetadata()
	assert.Error(t, err)

	broken := &Event{Type: EventLessonCompleted, Metadata: []byte("{not json")}
	_, err = broken.DecodeMetadata()
	assert.Error(t, err)

	empty := &Event{Type: EventCourseEnrolled}
	decoded, err := empty.DecodeMetadata()
	require.NoError(t, err)
	assert.IsType(t, &CourseEnrolledMetadata{}, decoded)
}

func TestEventType_IsValid(t *testing.T) {
	assert.True(t, EventLessonCompleted.IsValid())
	assert.True(t, EventCourseEnrolled.IsValid())
	assert.False(t, EventType("").IsValid())
	assert.False(t, NotificationStatus("").IsValid())
	assert.True(t, NotificationDismissed.IsValid())
}
