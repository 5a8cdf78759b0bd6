package configstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore upserts entries into the region_configs table created by
// db.Migrate.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, prefix string, e Entry) error {
	if err := ValidateKey(prefix, e.NodeID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO region_configs (prefix, node_id, revision, updated_at, config)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (prefix, node_id) DO UPDATE
		SET revision = EXCLUDED.revision, updated_at = EXCLUDED.updated_at, config = EXCLUDED.config`,
		prefix, e.NodeID, e.Revision, time.UnixMilli(e.Timestamp).UTC(), string(e.Config))
	if err != nil {
		return fmt.Errorf("upsert config: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, prefix, nodeID string) (*Entry, error) {
	var (
		e         Entry
		updatedAt time.Time
		config    []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT node_id, revision, updated_at, config
		FROM region_configs WHERE prefix = $1 AND node_id = $2`,
		prefix, nodeID).Scan(&e.NodeID, &e.Revision, &updatedAt, &config)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	e.Timestamp = updatedAt.UnixMilli()
	e.Config = config
	return &e, nil
}

func (s *PostgresStore) Delete(ctx context.Context, prefix, nodeID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM region_configs WHERE prefix = $1 AND node_id = $2`, prefix, nodeID)
	if err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, prefix string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM region_configs WHERE prefix = $1`, prefix)
	if err != nil {
		return 0, fmt.Errorf("clear prefix %s: %w", prefix, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT node_id FROM region_configs WHERE prefix = $1 ORDER BY node_id`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list prefix %s: %w", prefix, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan node ids: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresStore) Close() error { return nil }
