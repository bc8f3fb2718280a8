package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/geo"
)

const keyPrefix = "salah-clock:"

// RedisStore is a Store shared between processes. Freshness is enforced
// with key expiry.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisStore wraps an open client.
func NewRedisStore(client *redis.Client, log zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func (r *RedisStore) get(ctx context.Context, key string, v any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		r.log.Debug().Err(err).Str("key", key).Msg("redis get failed")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.log.Debug().Err(err).Str("key", key).Msg("corrupt cache entry")
		return false
	}
	return true
}

func (r *RedisStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// LoadTimings implements Store.
func (r *RedisStore) LoadTimings(ctx context.Context, date time.Time, q api.Query) *TimingsEntry {
	dateStr := date.Format(time.DateOnly)

	var entry TimingsEntry
	if !r.get(ctx, keyPrefix+"timings:"+hashKey(dateStr, q), &entry) || entry.Date != dateStr {
		return nil
	}
	return &entry
}

// SaveTimings implements Store.
func (r *RedisStore) SaveTimings(ctx context.Context, date time.Time, q api.Query, resp *api.Response) error {
	entry := newTimingsEntry(date, q, resp)
	return r.set(ctx, keyPrefix+"timings:"+hashKey(entry.Date, q), entry, timingsTTL)
}

// LoadCalendar implements Store.
func (r *RedisStore) LoadCalendar(ctx context.Context, year, month int, q api.Query) *CalendarEntry {
	key := monthKey(year, month)

	var entry CalendarEntry
	if !r.get(ctx, keyPrefix+"calendar:"+hashKey(key, q), &entry) || entry.Month != key {
		return nil
	}
	return &entry
}

// SaveCalendar implements Store.
func (r *RedisStore) SaveCalendar(ctx context.Context, year, month int, q api.Query, resp *api.CalendarResponse) error {
	entry := newCalendarEntry(year, month, q, resp)
	return r.set(ctx, keyPrefix+"calendar:"+hashKey(entry.Month, q), entry, calendarTTL)
}

// LoadGeo implements geo.Store.
func (r *RedisStore) LoadGeo(ctx context.Context) *geo.Location {
	var entry GeoEntry
	if !r.get(ctx, keyPrefix+"geo", &entry) {
		return nil
	}
	return &entry.Location
}

// SaveGeo implements geo.Store.
func (r *RedisStore) SaveGeo(ctx context.Context, loc *geo.Location) error {
	return r.set(ctx, keyPrefix+"geo", GeoEntry{Location: *loc, CachedAt: time.Now()}, geoTTL)
}
