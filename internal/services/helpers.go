package services

import (
	"math"
	"time"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	defaultLeaderboardSize = 5
	maxLeaderboardSize     = 100

	// CourseCompletionPoints is credited once per learner and course
	CourseCompletionPoints = 100

	maxAttemptRetries = 3

	// MaxQuizScore bounds a submitted score so points stay far below int32 range
	MaxQuizScore = 100000
)

func utcNow() time.Time {
	return time.Now().UTC()
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// PointsForScore converts a raw quiz score into ledger points: floor(score*10)
func PointsForScore(score float64) int {
	return int(math.Floor(score * 10))
}

// percentOf returns round(part/total*100), or 0 when total is not positive
func percentOf(part, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(part / total * 100))
}

func strPtr(s string) *string {
	return &s
}
