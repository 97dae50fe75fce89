package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	err := c.Get(ctx, "k", &dest)
	assert.True(t, IsCacheMiss(err))
	assert.Nil(t, dest)

	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePattern(ctx, "k*"))

	version, err := c.Incr(ctx, "v")
	assert.NoError(t, err)
	assert.Zero(t, version)
}

func TestCourseProgressKeys(t *testing.T) {
	assert.Equal(t, "progress:course:c1:u1:v0", CourseProgressKey("u1", "c1", 0))
	assert.Equal(t, "progress:course:c1:u1:v7", CourseProgressKey("u1", "c1", 7))
	assert.Equal(t, "progress:version:c1:u1", CourseProgressVersionKey("u1", "c1"))
	assert.Equal(t, "progress:course:c1:*", CourseProgressPattern("c1"))
}

func TestRedisCache_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisCache(client, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var dest string
	err := c.Get(context.Background(), "k", &dest)
	require.Error(t, err)
	assert.False(t, IsCacheMiss(err))
}
