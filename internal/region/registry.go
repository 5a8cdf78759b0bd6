package region

import (
	"encoding/json"
	"log/slog"

	"cogentcore.org/core/base/ordmap"
)

// Registry is the ordered set of regions of one editor instance. Insertion
// order is the z-order and the hit-test order. A Registry is owned by a
// single engine and is not safe for concurrent use.
type Registry struct {
	layout  Layout
	regions *ordmap.Map[string, *Region]
	logger  *slog.Logger
}

// NewRegistry builds a registry holding every def at its default geometry.
func NewRegistry(defs []Def, layout Layout, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		layout:  layout,
		regions: ordmap.New[string, *Region](),
		logger:  logger,
	}
	for _, d := range defs {
		r.regions.Add(d.ID, &Region{Def: d, Geometry: d.Default})
	}
	return r
}

func (r *Registry) Layout() Layout { return r.layout }

func (r *Registry) Len() int { return r.regions.Len() }

// IDs returns the region ids in z-order.
func (r *Registry) IDs() []string { return r.regions.Keys() }

// Get returns the live region for id.
func (r *Registry) Get(id string) (*Region, bool) {
	return r.regions.ValueByKeyTry(id)
}

// Index returns the z-order position of id, or -1.
func (r *Registry) Index(id string) int {
	return r.regions.IndexByKey(id)
}

// At returns the region at z-order position i.
func (r *Registry) At(i int) (*Region, bool) {
	if i < 0 || i >= r.regions.Len() {
		return nil, false
	}
	return r.regions.ValueByIndex(i), true
}

// Each visits regions in z-order until fn returns false.
func (r *Registry) Each(fn func(*Region) bool) {
	for _, kv := range r.regions.Order {
		if !fn(kv.Value) {
			return
		}
	}
}

// HitTest returns the first region, in insertion order, whose rotated bounds
// contain the point. Disabled regions are skipped when skipDisabled is set.
func (r *Registry) HitTest(x, y float64, skipDisabled bool) (*Region, bool) {
	for _, kv := range r.regions.Order {
		reg := kv.Value
		if skipDisabled && !reg.Enabled {
			continue
		}
		if reg.Contains(x, y) {
			return reg, true
		}
	}
	return nil, false
}

// Set replaces the geometry of id. Unknown ids are ignored.
func (r *Registry) Set(id string, g Geometry) bool {
	reg, ok := r.Get(id)
	if !ok {
		return false
	}
	reg.Geometry = g
	return true
}

// SetField replaces one role of id.
func (r *Registry) SetField(id string, f Field, v float64) bool {
	reg, ok := r.Get(id)
	if !ok {
		return false
	}
	reg.Geometry = reg.Geometry.SetField(f, v)
	return true
}

// Reset restores the default geometry of id.
func (r *Registry) Reset(id string) bool {
	reg, ok := r.Get(id)
	if !ok {
		return false
	}
	reg.Reset()
	return true
}

func (r *Registry) ResetAll() {
	for _, kv := range r.regions.Order {
		kv.Value.Reset()
	}
}

// Load applies saved tuples over the current geometry. Unknown ids are
// ignored and malformed tuples are logged and skipped. It returns the number
// of regions updated.
func (r *Registry) Load(tuples map[string]json.RawMessage) int {
	n := 0
	for id, raw := range tuples {
		reg, ok := r.Get(id)
		if !ok {
			r.logger.Debug("ignoring unknown region", "region", id)
			continue
		}
		g, err := r.layout.Decode(raw, reg.Geometry)
		if err != nil {
			r.logger.Warn("skipping saved region", "region", id, "error", err)
			continue
		}
		reg.Geometry = g
		n++
	}
	return n
}

// Tuples encodes every region under the registry layout.
func (r *Registry) Tuples() map[string]Tuple {
	out := make(map[string]Tuple, r.regions.Len())
	for _, kv := range r.regions.Order {
		out[kv.Key] = r.layout.Encode(kv.Value.Geometry)
	}
	return out
}
