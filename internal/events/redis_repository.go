package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// eventsKey is the Redis key holding the serialized event map.
const eventsKey = "campusbell:events"

// RedisRepository is a Redis implementation of Repository for deployments
// that prefer a cache store over PostgreSQL.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis event repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Load returns the cached event map, or ErrNoCachedEvents.
func (r *RedisRepository) Load(ctx context.Context) (EventMap, error) {
	payload, err := r.client.Get(ctx, eventsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoCachedEvents
		}
		return nil, fmt.Errorf("loading event cache: %w", err)
	}

	var events EventMap
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("decoding event cache: %w", err)
	}
	return events, nil
}

// Save replaces the cached event map. Entries never expire; a refresh
// overwrites the key wholesale.
func (r *RedisRepository) Save(ctx context.Context, events EventMap) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encoding event cache: %w", err)
	}

	if err := r.client.Set(ctx, eventsKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("saving event cache: %w", err)
	}
	return nil
}
