package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fallback is the durable local side channel.
type Fallback interface {
	Put(ctx context.Context, key string, rec Record) error
}

// FileFallback writes one JSON file per key, replacing it atomically.
type FileFallback struct {
	Dir string
}

func NewFileFallback(dir string) *FileFallback {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "regionedit")
	}
	return &FileFallback{Dir: dir}
}

func (f *FileFallback) Put(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return WriteFileAtomic(f.Dir, key+".json", data)
}

// Get reads a record back.
func (f *FileFallback) Get(key string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(f.Dir, key+".json"))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// WriteFileAtomic writes data to dir/name through a synced temp file and a
// rename, so readers never see a partial file.
func WriteFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// RedisFallback stores records as JSON strings under the fallback key.
type RedisFallback struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisFallback(client *redis.Client, namespace string, ttl time.Duration) *RedisFallback {
	return &RedisFallback{client: client, namespace: namespace, ttl: ttl}
}

func (f *RedisFallback) Put(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := f.client.Set(ctx, f.namespace+key, data, f.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
