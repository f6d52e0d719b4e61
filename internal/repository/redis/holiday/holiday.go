// Package holiday caches the company holiday collection in redis and keeps
// its version counter. Cached months are keyed by the version they were read
// at, so a fill that raced a write lands on a key nobody reads again.
package holiday

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	versionKey = "holiday:version"
	monthKey   = "holiday:month:"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(m calendar.Month, version int64) string {
	return monthKey + m.String() + ":" + strconv.FormatInt(version, 10)
}

// Get returns the holidays of m cached at version. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, m calendar.Month, version int64) (list []backend.Holiday, ok bool, err error) {
	raw, err := c.rdb.Get(ctx, key(m, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "reading holiday cache")
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, errors.Wrap(err, "decoding holiday cache")
	}
	return list, true, nil
}

// Set caches list as the holidays of m at version. version must be read
// before the database.
func (c *Cache) Set(ctx context.Context, m calendar.Month, version int64, list []backend.Holiday) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "encoding holiday cache")
	}
	return errors.Wrap(c.rdb.Set(ctx, key(m, version), raw, c.ttl).Err(), "writing holiday cache")
}

// Version returns the collection version, zero before the first change.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, errors.Wrap(err, "reading holiday version")
}

// Bump increments the collection version and drops m as cached at the
// previous one. Older keys of other months expire with the ttl.
func (c *Cache) Bump(ctx context.Context, m calendar.Month) (int64, error) {
	v, err := c.rdb.Incr(ctx, versionKey).Result()
	if err != nil {
		return 0, errors.Wrap(err, "bumping holiday version")
	}
	if err := c.rdb.Del(ctx, key(m, v-1)).Err(); err != nil {
		return v, errors.Wrap(err, "dropping holiday cache")
	}
	return v, nil
}
