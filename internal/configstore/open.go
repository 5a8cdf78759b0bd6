package configstore

import (
	"context"
	"fmt"

	"github.com/inamate/regionedit/internal/db"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend       string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
}

// Open builds the store named by opts.Backend. For postgres the returned
// store owns its pool and closes it on Close.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.DataDir)
	case BackendRedis:
		s := NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err := s.client.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return s, nil
	case BackendPostgres:
		pool, err := db.NewPool(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &ownedPostgresStore{PostgresStore: NewPostgresStore(pool)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, opts.Backend)
	}
}

type ownedPostgresStore struct {
	*PostgresStore
}

func (s *ownedPostgresStore) Close() error {
	s.pool.Close()
	return nil
}
