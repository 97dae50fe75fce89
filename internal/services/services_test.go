package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/cache"
	"github.com/SAP-F-2025/progress-service/internal/events"
	"github.com/SAP-F-2025/progress-service/internal/models"
	"github.com/SAP-F-2025/progress-service/internal/repositories"
	"github.com/SAP-F-2025/progress-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/progress-service/internal/testutil"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	metrics   *monitoring.Recorder
	services  ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, cache.NewNoopCache())
}

func newTestEnvWithCache(t *testing.T, c cache.CacheService) *testEnv {
	return newTestEnvWith(t, c, nil)
}

// newTestEnvWithRepo lets a test decorate the repository the services see
func newTestEnvWithRepo(t *testing.T, wrap func(repositories.Repository) repositories.Repository) *testEnv {
	return newTestEnvWith(t, cache.NewNoopCache(), wrap)
}

func newTestEnvWith(t *testing.T, c cache.CacheService, wrap func(repositories.Repository) repositories.Repository) *testEnv {
	t.Helper()

	db := testutil.DB(t)
	repo := postgres.NewRepository(db)
	if wrap != nil {
		repo = wrap(repo)
	}
	logger := testutil.Logger(t)
	publisher := events.NewMockEventPublisher(logger)
	metrics := monitoring.NewRecorder()

	return &testEnv{
		db:        db,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		services: NewServiceManager(ServiceManagerConfig{
			Repo:             repo,
			Publisher:        publisher,
			Cache:            c,
			ProgressCacheTTL: time.Minute,
			Metrics:          metrics,
			Logger:           logger,
		}),
	}
}

func (e *testEnv) eventsOf(t *testing.T, userID string, eventType models.EventType) []*models.Event {
	t.Helper()
	rows, err := e.repo.Event().List(context.Background(), nil, repositories.EventFilters{
		UserID: &userID,
		Type:   &eventType,
	})
	require.NoError(t, err)
	return rows
}

func (e *testEnv) notificationsOf(t *testing.T, userID string) []*models.Notification {
	t.Helper()
	rows, _, err := e.repo.Notification().ListByUser(context.Background(), nil, userID, repositories.NotificationFilters{})
	require.NoError(t, err)
	return rows
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) publishedTypes() []models.EventType {
	var types []models.EventType
	for _, msg := range e.publisher.GetPublishedMessages() {
		types = append(types, msg.Type)
	}
	return types
}

// memoryCache is a CacheService kept in a map, used to observe read-through behaviour
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int

	// beforeSet runs once, outside the lock, ahead of the next Set
	beforeSet func(key string)
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	hook := m.beforeSet
	m.beforeSet = nil
	m.mu.Unlock()
	if hook != nil {
		hook(key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = payload
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	payload, ok := m.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

func (m *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var value int64
	if payload, ok := m.entries[key]; ok {
		if err := json.Unmarshal(payload, &value); err != nil {
			return 0, err
		}
	}
	value++
	payload, err := json.Marshal(value)
	if err != nil {
		return 0, err
	}
	m.entries[key] = payload
	return value, nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}
