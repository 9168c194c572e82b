package store

import (
	"context"
	"fmt"

	"billing-engine/internal/config"
	"billing-engine/internal/core"
	"billing-engine/internal/db"

	"github.com/rs/zerolog"
)

// Open connects the backend selected by cfg.StoreDriver. The returned func
// releases its connections.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (core.Backend, func(), error) {
	noop := func() {}
	log = log.With().Str("driver", cfg.StoreDriver).Logger()

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, records are lost on exit")
		return NewMemoryBackend(), noop, nil

	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath, cfg.DBDebug)
		if err != nil {
			return nil, noop, err
		}
		b, err := NewGormBackend(gdb)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("store opened")
		return b, func() { _ = b.Close() }, nil

	case config.DriverGormPostgres:
		if cfg.Migrations {
			if err := RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, noop, err
			}
		}
		gdb, err := db.OpenPostgres(cfg.DatabaseURL, cfg.DBDebug)
		if err != nil {
			return nil, noop, err
		}
		b, err := NewGormBackend(gdb)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Msg("store opened")
		return b, func() { _ = b.Close() }, nil

	case config.DriverPostgres:
		if cfg.Migrations {
			if err := RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, noop, err
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Msg("store opened")
		return NewPgxBackend(pool), pool.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
