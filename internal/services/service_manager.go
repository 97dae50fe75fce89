package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/cache"
	"github.com/SAP-F-2025/progress-service/internal/events"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/internal/validator"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
)

// ServiceManager wires the services that share one repository and publisher
type ServiceManager interface {
	Scoring() ScoringService
	Progress() ProgressService
	Dispatcher() DispatcherService
	Leaderboard() LeaderboardService
	Report() ReportService
}

type ServiceManagerConfig struct {
	Repo             repositories.Repository
	Publisher        events.EventPublisher
	Cache            cache.CacheService
	ProgressCacheTTL time.Duration
	LeaderboardSize  int
	Metrics          *monitoring.Recorder
	Logger           *slog.Logger
	Validator        *validator.Validator
}

type serviceManager struct {
	scoring     ScoringService
	progress    ProgressService
	dispatcher  DispatcherService
	leaderboard LeaderboardService
	report      ReportService
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.ProgressCacheTTL <= 0 {
		cfg.ProgressCacheTTL = 5 * time.Minute
	}

	dispatcher := NewDispatcherService(cfg.Repo, cfg.Publisher, cfg.Metrics, cfg.Logger, cfg.Validator)
	progress := NewProgressService(cfg.Repo, dispatcher, cfg.Cache, cfg.ProgressCacheTTL, cfg.Metrics, cfg.Logger, cfg.Validator)
	scoring := NewScoringService(cfg.Repo, progress, dispatcher, cfg.Metrics, cfg.Logger, cfg.Validator)
	leaderboard := NewLeaderboardService(cfg.Repo, cfg.Logger, cfg.LeaderboardSize)
	report := NewReportService(cfg.Repo, leaderboard, cfg.Metrics, cfg.Logger)

	return &serviceManager{
		scoring:     scoring,
		progress:    progress,
		dispatcher:  dispatcher,
		leaderboard: leaderboard,
		report:      report,
	}
}

func (m *serviceManager) Scoring() ScoringService         { return m.scoring }
func (m *serviceManager) Progress() ProgressService       { return m.progress }
func (m *serviceManager) Dispatcher() DispatcherService   { return m.dispatcher }
func (m *serviceManager) Leaderboard() LeaderboardService { return m.leaderboard }
func (m *serviceManager) Report() ReportService           { return m.report }
