// Package bridge pushes committed editor state out of process: a JSON POST
// to the consumer service plus a durable local fallback write. Delivery is
// best effort and never blocks the editor.
package bridge

import (
	"encoding/json"
	"time"
)

// Request is the body POSTed to the consumer service.
type Request struct {
	Action string          `json:"action"`
	NodeID string          `json:"node_id"`
	Config json.RawMessage `json:"config"`
}

// Record is the value stored in the fallback store and by the consumer.
type Record struct {
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	NodeID    string          `json:"node_id"`
	Config    json.RawMessage `json:"config"`
}

// NewRecord stamps a config with the current time.
func NewRecord(nodeID string, config json.RawMessage, now time.Time) Record {
	return Record{Timestamp: now.UnixMilli(), NodeID: nodeID, Config: config}
}

// StoreKey is the fallback key for a node: "<prefix>_<node_id>".
func StoreKey(prefix, nodeID string) string {
	return prefix + "_" + nodeID
}

// SavePath is the consumer route for a prefix.
func SavePath(prefix string) string {
	return "/" + prefix + "/save_config"
}

// Target names the consumer endpoint and action for one editor variant.
type Target struct {
	Prefix string
	Action string
}
