// Package configstore persists the region configs pushed by editor hosts,
// one entry per prefix and node id.
package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("config not found")
	ErrInvalidKey   = errors.New("invalid prefix or node id")
	ErrUnknownStore = errors.New("unknown store backend")
)

// Entry is one stored config.
type Entry struct {
	Revision  string          `json:"revision"`
	NodeID    string          `json:"node_id"`
	Timestamp int64           `json:"timestamp"`
	Config    json.RawMessage `json:"config"`
}

type Store interface {
	Save(ctx context.Context, prefix string, e Entry) error
	Load(ctx context.Context, prefix, nodeID string) (*Entry, error)
	Delete(ctx context.Context, prefix, nodeID string) error
	// Clear removes every entry under prefix and reports how many went.
	Clear(ctx context.Context, prefix string) (int, error)
	// List returns the node ids stored under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ValidateKey rejects empty parts and path separators.
func ValidateKey(prefix, nodeID string) error {
	if prefix == "" || nodeID == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(prefix, "/\\") || strings.ContainsAny(nodeID, "/\\") {
		return fmt.Errorf("%w: %s/%s", ErrInvalidKey, prefix, nodeID)
	}
	return nil
}
