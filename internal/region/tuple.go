package region

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrShortTuple is returned when a tuple has fewer entries than its layout.
var ErrShortTuple = errors.New("region tuple too short")

// Tuple is the wire array form of a Geometry.
type Tuple []any

// Encode renders g under the layout. Enabled is written as a JSON boolean.
func (l Layout) Encode(g Geometry) Tuple {
	t := make(Tuple, len(l.Fields))
	for i, f := range l.Fields {
		if f == FieldEnabled {
			t[i] = g.Enabled
			continue
		}
		t[i] = g.Field(f)
	}
	return t
}

// Decode applies a raw JSON tuple on top of base. Numbers and booleans are
// accepted in any position; roles absent from the layout keep base values.
func (l Layout) Decode(raw json.RawMessage, base Geometry) (Geometry, error) {
	var vals []any
	if err := json.Unmarshal(raw, &vals); err != nil {
		return base, fmt.Errorf("decode tuple: %w", err)
	}
	if len(vals) < len(l.Fields) {
		// A six-value tuple is still usable under the seven-value layout;
		// the enabled flag keeps its default.
		if !(len(vals) == len(l.Fields)-1 && l.Index(FieldEnabled) == len(l.Fields)-1) {
			return base, fmt.Errorf("%w: got %d, want %d", ErrShortTuple, len(vals), len(l.Fields))
		}
	}

	g := base
	for i, f := range l.Fields {
		if i >= len(vals) {
			break
		}
		v, err := toFloat(vals[i])
		if err != nil {
			return base, fmt.Errorf("tuple[%d] (%s): %w", i, f, err)
		}
		g = g.SetField(f, v)
	}
	return g, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}
