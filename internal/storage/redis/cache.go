package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/ilindan-dev/pitch-dispatcher/pkg/keybuilder"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Ensure ProfileCache implements the interface
var _ repo.ProfileCache = (*ProfileCache)(nil)

// ProfileCache implements repository.ProfileCache using the standard go-redis client.
type ProfileCache struct {
	redis  *goredis.Client
	logger zerolog.Logger
}

// NewProfileCache creates a new instance of the ProfileCache.
func NewProfileCache(logger *zerolog.Logger, redis *goredis.Client) *ProfileCache {
	return &ProfileCache{
		redis:  redis,
		logger: logger.With().Str("layer", "redis_cache").Logger(),
	}
}

// Get retrieves a profile from the cache.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*model.Profile, error) {
	key := keybuilder.RedisProfileKeyBuild(userID)
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.logger.Debug().Str("key", key).Str("cache", "miss").Msg("profile not found in cache")
			return nil, repo.ErrNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("failed to get key from redis")
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(val, &profile); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to unmarshal profile from cache")
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	c.logger.Debug().Str("key", key).Str("cache", "hit").Msg("profile found in cache")
	return &profile, nil
}

// Set adds a profile to the cache for a specified duration.
func (c *ProfileCache) Set(ctx context.Context, p *model.Profile, expiration time.Duration) error {
	key := keybuilder.RedisProfileKeyBuild(p.ID)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := c.redis.Set(ctx, key, data, expiration).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to set key in redis")
		return err
	}
	return nil
}
