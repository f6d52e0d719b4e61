package holiday

import (
	"context"
	"testing"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running redis on localhost; skipped otherwise.
func TestCache_Integration(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skip("redis not available")
	}
	t.Cleanup(func() {
		rdb.FlushDB(ctx)
		rdb.Close()
	})
	require.NoError(t, rdb.FlushDB(ctx).Err())

	c := NewCache(rdb, time.Minute)
	may := calendar.NewMonth(2024, time.May)

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, ok, err := c.Get(ctx, may, v)
	require.NoError(t, err)
	assert.False(t, ok)

	list := []backend.Holiday{{Date: calendar.Day(2024, time.May, 15), Description: "회사 휴무일"}}
	require.NoError(t, c.Set(ctx, may, v, list))

	got, ok, err := c.Get(ctx, may, v)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, list, got)

	v, err = c.Bump(ctx, may)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, ok, err = c.Get(ctx, may, v)
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := rdb.Exists(ctx, key(may, 0)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	// A fill that read the database before the bump.
	require.NoError(t, c.Set(ctx, may, 0, list))
	_, ok, err = c.Get(ctx, may, v)
	require.NoError(t, err)
	assert.False(t, ok)
}
