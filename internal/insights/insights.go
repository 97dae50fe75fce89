// Package insights classifies aggregated learner metrics into instructor alerts.
// Every function is pure: no I/O, no errors, and an absent metric never flags.
package insights

import "fmt"

type Kind string

const (
	KindStruggle   Kind = "STRUGGLE"
	KindPacing     Kind = "PACING"
	KindPacingSlow Kind = "PACING_SLOW"
	KindPacingFast Kind = "PACING_FAST"
	KindDifficulty Kind = "DIFFICULTY"
	KindDropoff    Kind = "DROPOFF"
)

const (
	StruggleAttemptThreshold = 3
	StruggleTimeThreshold    = 1800
	DefaultExpectedDuration  = 600
	DifficultyMeanThreshold  = 2.0
	DropoffRateThreshold     = 0.5
	DropoffMinLowLessons     = 2

	// pacing factors in tenths: slow at >= 1.8x, fast below 0.3x
	pacingSlowFactorTenths = 18
	pacingFastFactorTenths = 3
)

// Insight is the result of one classification. Kind is set even when Flagged is false.
type Insight struct {
	Flagged bool   `json:"flagged"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
}

// LearnerStruggle flags a learner that needed many attempts or a lot of time on one quiz
func LearnerStruggle(attemptCount int, totalTimeSpentSeconds int64) Insight {
	insight := Insight{Kind: KindStruggle}
	switch {
	case attemptCount >= StruggleAttemptThreshold:
		insight.Flagged = true
		insight.Message = fmt.Sprintf("Learner needed %d attempts on this quiz", attemptCount)
	case totalTimeSpentSeconds > StruggleTimeThreshold:
		insight.Flagged = true
		insight.Message = fmt.Sprintf("Learner spent %d seconds across attempts on this quiz", totalTimeSpentSeconds)
	}
	return insight
}

// LessonPacing compares time spent on a lesson with its expected duration.
// A nil or non-positive expected duration falls back to DefaultExpectedDuration.
// Comparisons are done in tenths so the 1.8x boundary is exact.
func LessonPacing(timeSpentSeconds int64, expectedDurationSeconds *int) Insight {
	expected := int64(DefaultExpectedDuration)
	if expectedDurationSeconds != nil && *expectedDurationSeconds > 0 {
		expected = int64(*expectedDurationSeconds)
	}

	switch {
	case timeSpentSeconds*10 >= expected*pacingSlowFactorTenths:
		return Insight{
			Flagged: true,
			Kind:    KindPacingSlow,
			Message: fmt.Sprintf("Time spent (%ds) is well above the expected %ds", timeSpentSeconds, expected),
		}
	case timeSpentSeconds*10 < expected*pacingFastFactorTenths:
		return Insight{
			Flagged: true,
			Kind:    KindPacingFast,
			Message: fmt.Sprintf("Time spent (%ds) is far below the expected %ds; the lesson may have been skipped", timeSpentSeconds, expected),
		}
	}
	return Insight{Kind: KindPacing}
}

// LessonDifficulty flags content whose mean attempt count across learners exceeds 2
func LessonDifficulty(attemptCounts []int) Insight {
	insight := Insight{Kind: KindDifficulty}
	if len(attemptCounts) == 0 {
		return insight
	}

	total := 0
	for _, n := range attemptCounts {
		total += n
	}
	mean := float64(total) / float64(len(attemptCounts))
	if mean > DifficultyMeanThreshold {
		insight.Flagged = true
		insight.Message = fmt.Sprintf("Learners need %.1f attempts on average", mean)
	}
	return insight
}

// CourseDropoff flags a course where at least two lessons are completed by fewer than half the learners
func CourseDropoff(completionRates []float64) Insight {
	insight := Insight{Kind: KindDropoff}

	low := 0
	for _, rate := range completionRates {
		if rate < DropoffRateThreshold {
			low++
		}
	}
	if low >= DropoffMinLowLessons {
		insight.Flagged = true
		insight.Message = fmt.Sprintf("%d lessons are completed by fewer than half of enrolled learners", low)
	}
	return insight
}
