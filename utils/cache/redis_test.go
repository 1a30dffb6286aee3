package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client), mr
}

func TestConnectClosesClientWhenPingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	c, err := connect(client)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.ErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := connect(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
}

func TestJSONRoundTripAndTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.SetJSON(ctx, "course_1", payload{Name: "Algebra I"}, time.Hour))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "course_1", &got))
	assert.Equal(t, "Algebra I", got.Name)

	mr.FastForward(time.Hour + time.Second)
	err := c.GetJSON(ctx, "course_1", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePattern(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"courses:a", "courses:b", "courses:c", "course_1", "all_courses"} {
		require.NoError(t, c.Set(ctx, k, "x", time.Minute))
	}

	n, err := c.DeletePattern(ctx, CourseListPattern)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := c.Exists(ctx, "course_1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Exists(ctx, "courses:b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteWithoutKeys(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.Delete(context.Background()))
}
