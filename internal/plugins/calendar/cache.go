package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// definitionKeyPrefix namespaces cached definitions in Redis.
const definitionKeyPrefix = "esoterica:calendar:"

// DefinitionCache keeps fully loaded calendars (settings plus unit graph) so
// engine queries skip the database.
type DefinitionCache interface {
	// Get returns the cached calendar, or nil on a miss.
	Get(ctx context.Context, id string) (*Calendar, error)
	Set(ctx context.Context, cal *Calendar) error
	Invalidate(ctx context.Context, id string) error
}

// redisCache is the Redis implementation of DefinitionCache.
type redisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCache creates a DefinitionCache storing JSON documents with the
// given TTL.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) DefinitionCache {
	return &redisCache{redis: rdb, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, id string) (*Calendar, error) {
	data, err := c.redis.Get(ctx, definitionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading definition from Redis: %w", err)
	}

	var cal Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("unmarshaling definition: %w", err)
	}
	return &cal, nil
}

func (c *redisCache) Set(ctx context.Context, cal *Calendar) error {
	data, err := json.Marshal(cal)
	if err != nil {
		return fmt.Errorf("marshaling definition: %w", err)
	}
	if err := c.redis.Set(ctx, definitionKeyPrefix+cal.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing definition in Redis: %w", err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, id string) error {
	if err := c.redis.Del(ctx, definitionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting definition from Redis: %w", err)
	}
	return nil
}

// noopCache is used when no Redis client is configured.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*Calendar, error) { return nil, nil }
func (noopCache) Set(context.Context, *Calendar) error            { return nil }
func (noopCache) Invalidate(context.Context, string) error        { return nil }
