package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/inamate/regionedit/internal/bridge"
)

const DefaultFileName = "region_configs.json"

// FileStore keeps every entry in a single JSON document keyed by
// "<prefix>_<node_id>". Writes replace the document atomically.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	name string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, name: DefaultFileName}, nil
}

func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

func (s *FileStore) read() (map[string]Entry, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path(), err)
	}
	doc := map[string]Entry{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path(), err)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]Entry) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode configs: %w", err)
	}
	return bridge.WriteFileAtomic(s.dir, s.name, data)
}

func (s *FileStore) Save(ctx context.Context, prefix string, e Entry) error {
	if err := ValidateKey(prefix, e.NodeID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[bridge.StoreKey(prefix, e.NodeID)] = e
	return s.write(doc)
}

func (s *FileStore) Load(ctx context.Context, prefix, nodeID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	e, ok := doc[bridge.StoreKey(prefix, nodeID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *FileStore) Delete(ctx context.Context, prefix, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	key := bridge.StoreKey(prefix, nodeID)
	if _, ok := doc[key]; !ok {
		return ErrNotFound
	}
	delete(doc, key)
	return s.write(doc)
}

func (s *FileStore) Clear(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	n := 0
	for key, e := range doc {
		if key == bridge.StoreKey(prefix, e.NodeID) {
			delete(doc, key)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.write(doc)
}

func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for key, e := range doc {
		if key == bridge.StoreKey(prefix, e.NodeID) {
			ids = append(ids, e.NodeID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }
