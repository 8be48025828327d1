package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/hammamikhairi/larder/internal/config"
	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/logger"
)

// Store is a KVStore that holds resources.
type Store interface {
	domain.KVStore
	io.Closer
}

// Open builds the backend named by cfg.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (Store, error) {
	log = log.With(cfg.Backend)
	var (
		st  Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		st = NewMemoryStore(log)
	case config.BackendFile:
		st, err = asStore(NewFileStore(cfg.Path, log))
	case config.BackendSQLite:
		st, err = asStore(OpenSQLite(ctx, cfg.Path, log))
	case config.BackendPostgres:
		st, err = asStore(OpenPostgres(ctx, cfg.DSN, log))
	case config.BackendRedis:
		st, err = asStore(NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log))
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// asStore keeps a typed nil pointer out of the interface on failure.
func asStore[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
