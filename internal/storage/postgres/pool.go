package postgres

import (
	"context"
	"fmt"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a pgx connection pool. Connections are established lazily,
// so a data store outage degrades enrichment instead of blocking startup.
func NewPool(cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid dsn: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Postgres.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}
	return pool, nil
}
