package models

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

type LedgerSourceType string

const (
	LedgerSourceQuiz   LedgerSourceType = "QUIZ"
	LedgerSourceCourse LedgerSourceType = "COURSE"
)

// PointsLedgerEntry is append-only. Corrections are new rows with negative points.
type PointsLedgerEntry struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	UserID     string           `json:"user_id" gorm:"not null;size:36;index"`
	SourceType LedgerSourceType `json:"source_type" gorm:"not null;size:20"`
	SourceID   string           `json:"source_id" gorm:"not null;size:36"`
	Points     int              `json:"points" gorm:"not null"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (PointsLedgerEntry) TableName() string {
	return "points_ledger"
}

func (e *PointsLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}

type Badge struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	Name      string `json:"name" gorm:"not null;size:50;uniqueIndex"`
	MinPoints int    `json:"min_points" gorm:"not null"`
}

func (Badge) TableName() string {
	return "badges"
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// DefaultBadges is the tier table seeded into an empty badges table
func DefaultBadges() []Badge {
	return []Badge{
		{Name: "Bronze", MinPoints: 0},
		{Name: "Silver", MinPoints: 500},
		{Name: "Gold", MinPoints: 1500},
		{Name: "Platinum", MinPoints: 3000},
	}
}

// BadgeTiers classifies point totals against a set of badges
type BadgeTiers []Badge

// Classify returns the badge with the highest threshold not above points,
// or nil when points are below every threshold.
func (t BadgeTiers) Classify(points int) *Badge {
	sorted := make([]Badge, len(t))
	copy(sorted, t)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPoints < sorted[j].MinPoints
	})

	var tier *Badge
	for i := range sorted {
		if points < sorted[i].MinPoints {
			break
		}
		tier = &sorted[i]
	}
	return tier
}
