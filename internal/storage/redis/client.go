package redis

import (
	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient returns a go-redis client, or nil when no address is configured.
func NewClient(cfg *config.Config) *goredis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
