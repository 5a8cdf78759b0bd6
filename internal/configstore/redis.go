package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/inamate/regionedit/internal/bridge"
	backend "github.com/redis/go-redis/v9"
)

const DefaultRedisNamespace = "regionedit:"

// RedisStore keeps each entry as a JSON string and a set of node ids per
// prefix for listing.
type RedisStore struct {
	client    *backend.Client
	namespace string
}

func NewRedisStore(address, password string, db int) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, DefaultRedisNamespace)
}

func NewRedisStoreFromClient(client *backend.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(prefix, nodeID string) string {
	return s.namespace + bridge.StoreKey(prefix, nodeID)
}

func (s *RedisStore) indexKey(prefix string) string {
	return s.namespace + "index:" + prefix
}

func (s *RedisStore) Save(ctx context.Context, prefix string, e Entry) error {
	if err := ValidateKey(prefix, e.NodeID); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(prefix, e.NodeID), data, 0)
	pipe.SAdd(ctx, s.indexKey(prefix), e.NodeID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, prefix, nodeID string) (*Entry, error) {
	val, err := s.client.Get(ctx, s.key(prefix, nodeID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get from redis: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &e, nil
}

func (s *RedisStore) Delete(ctx context.Context, prefix, nodeID string) error {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, s.key(prefix, nodeID))
	pipe.SRem(ctx, s.indexKey(prefix), nodeID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, prefix string) (int, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(prefix)).Result()
	if err != nil {
		return 0, fmt.Errorf("read index: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(prefix, id))
	}
	keys = append(keys, s.indexKey(prefix))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("clear prefix %s: %w", prefix, err)
	}
	return len(ids), nil
}

func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("list prefix %s: %w", prefix, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
