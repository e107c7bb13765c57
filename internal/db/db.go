// Package db persists battle save data, the per-battler state stack
// counters, in PostgreSQL.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gamerules/internal/config"
)

// DB owns the save database pool and the repositories built on it.
type DB struct {
	pool   *pgxpool.Pool
	Stacks *StackRepository
}

// Open connects with cfg, brings the schema up to date and returns a
// ready handle.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := migratePool(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("save database ready",
		"host", pcfg.ConnConfig.Host,
		"database", pcfg.ConnConfig.Database,
		"max_conns", pcfg.MaxConns)
	return &DB{pool: pool, Stacks: NewStackRepository(pool)}, nil
}

func (d *DB) Close() {
	d.pool.Close()
}
