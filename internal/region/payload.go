package region

import (
	"encoding/json"
	"fmt"
)

// Payload is the committed editor state pushed to the consumer service and
// the local fallback store.
type Payload struct {
	Regions      map[string]Tuple `json:"regions" yaml:"regions"`
	CanvasWidth  float64          `json:"canvas_width" yaml:"canvas_width"`
	CanvasHeight float64          `json:"canvas_height" yaml:"canvas_height"`
	OutputWidth  float64          `json:"output_width,omitempty" yaml:"output_width,omitempty"`
	OutputHeight float64          `json:"output_height,omitempty" yaml:"output_height,omitempty"`
	Selected     string           `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// SavedPayload is a Payload as read back from storage, with tuples left raw
// so the registry layout decides how to decode them.
type SavedPayload struct {
	Regions      map[string]json.RawMessage `json:"regions"`
	CanvasWidth  float64                    `json:"canvas_width"`
	CanvasHeight float64                    `json:"canvas_height"`
	OutputWidth  float64                    `json:"output_width,omitempty"`
	OutputHeight float64                    `json:"output_height,omitempty"`
	Selected     string                     `json:"selected,omitempty"`
}

// ParsePayload decodes a stored payload.
func ParsePayload(data []byte) (*SavedPayload, error) {
	var p SavedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return &p, nil
}

// Payload snapshots the registry into a wire payload.
func (r *Registry) Payload(canvasW, canvasH, outputW, outputH float64, selected string) Payload {
	return Payload{
		Regions:      r.Tuples(),
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		OutputWidth:  outputW,
		OutputHeight: outputH,
		Selected:     selected,
	}
}
