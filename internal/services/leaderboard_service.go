package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
)

type leaderboardService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	defaultSize int
}

func NewLeaderboardService(repo repositories.Repository, logger *slog.Logger, defaultSize int) LeaderboardService {
	if defaultSize <= 0 || defaultSize > maxLeaderboardSize {
		defaultSize = defaultLeaderboardSize
	}
	return &leaderboardService{
		repo:        repo,
		logger:      logger,
		defaultSize: defaultSize,
	}
}

// GetTopLearners ranks learners by ledger totals computed at query time
func (s *leaderboardService) GetTopLearners(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = s.defaultSize
	}
	if n > maxLeaderboardSize {
		n = maxLeaderboardSize
	}

	standings, err := s.repo.Ledger().GetLearnerStandings(ctx, nil, n)
	if err != nil {
		return nil, fmt.Errorf("failed to load learner standings: %w", err)
	}
	badges, err := s.repo.Badge().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	entries := RankStandings(standings, models.BadgeTiers(badges))
	s.logger.Debug("Leaderboard computed", "requested", n, "returned", len(entries))
	return entries, nil
}

// RankStandings orders by points desc, completed courses desc, user id asc and
// assigns sequential ranks starting at 1. Ties never share a rank.
func RankStandings(standings []repositories.LearnerStanding, tiers models.BadgeTiers) []LeaderboardEntry {
	sorted := make([]repositories.LearnerStanding, len(standings))
	copy(sorted, standings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.CompletedCourseCount != b.CompletedCourseCount {
			return a.CompletedCourseCount > b.CompletedCourseCount
		}
		return a.UserID < b.UserID
	})

	entries := make([]LeaderboardEntry, len(sorted))
	for i, standing := range sorted {
		entry := LeaderboardEntry{
			Rank:                 i + 1,
			UserID:               standing.UserID,
			Name:                 standing.Name,
			TotalPoints:          standing.TotalPoints,
			CompletedCourseCount: standing.CompletedCourseCount,
		}
		if badge := tiers.Classify(int(standing.TotalPoints)); badge != nil {
			entry.Badge = badge.Name
		}
		entries[i] = entry
	}
	return entries
}
