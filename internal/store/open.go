package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Ledger drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Options selects and configures a ledger backend.
type Options struct {
	Driver   string
	Path     string // file and sqlite
	URL      string // postgres
	RedisURL string // redis
	Breaker  BreakerOptions
}

// Open creates the ledger named by opts.Driver. Network backends are wrapped
// in a BreakerStore when opts.Breaker.Enabled is set.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	var (
		s      Store
		err    error
		remote bool
	)
	switch opts.Driver {
	case DriverMemory, "":
		s = NewMemoryStore()
	case DriverFile:
		s, err = NewFileStore(opts.Path)
	case DriverSQLite:
		s, err = NewSQLiteStore(ctx, opts.Path)
	case DriverPostgres:
		s, err = NewPostgresStore(ctx, opts.URL)
		remote = true
	case DriverRedis:
		s, err = NewRedisStore(ctx, opts.RedisURL)
		remote = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
	}

	if remote && opts.Breaker.Enabled {
		s = NewBreakerStore(s, opts.Driver, opts.Breaker, logger)
	}
	logger.Info("feedback ledger opened", "driver", opts.Driver, "breaker", remote && opts.Breaker.Enabled)
	return s, nil
}
