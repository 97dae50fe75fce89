package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PROGRESS_CACHE_TTL", "")
	t.Setenv("LEADERBOARD_DEFAULT_SIZE", "")
	t.Setenv("EVENTS_ENABLED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ProgressCacheTTL)
	assert.Equal(t, 5, cfg.LeaderboardDefaultSize)
	assert.False(t, cfg.Events.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PROGRESS_CACHE_TTL", "30s")
	t.Setenv("LEADERBOARD_DEFAULT_SIZE", "25")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ProgressCacheTTL)
	assert.Equal(t, 25, cfg.LeaderboardDefaultSize)
	assert.False(t, cfg.CacheEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PROGRESS_CACHE_TTL", "soon")
	t.Setenv("LEADERBOARD_DEFAULT_SIZE", "-3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.ProgressCacheTTL)
	assert.Equal(t, 5, cfg.LeaderboardDefaultSize)
}

func TestEventConfig_GetKafkaBrokers(t *testing.T) {
	cfg := EventConfig{KafkaBrokers: "a:9092, b:9092,,"}
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.GetKafkaBrokers())
}

func TestEventConfig_CreateEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  EventConfig
	}{
		{name: "disabled", cfg: EventConfig{Enabled: false, Publisher: "kafka"}},
		{name: "mock", cfg: EventConfig{Enabled: true, Publisher: "mock"}},
		{name: "unknown", cfg: EventConfig{Enabled: true, Publisher: "rabbit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher, err := tt.cfg.CreateEventPublisher(logger)
			require.NoError(t, err)
			_, ok := publisher.(*events.MockEventPublisher)
			assert.True(t, ok)
		})
	}
}
