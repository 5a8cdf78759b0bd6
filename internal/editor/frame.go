package editor

import (
	"encoding/json"
	"math"

	"github.com/inamate/regionedit/internal/geometry"
	"github.com/inamate/regionedit/internal/region"
)

// DrawCommand is one drawing operation for the host canvas. The host runs
// the list in order on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path", "text"
	ObjectID    string        `json:"objectId,omitempty"`    // region id, for hit correlation
	Role        string        `json:"role,omitempty"`        // "background", "region", "handle", "rotation", "label"
	State       string        `json:"state,omitempty"`       // "selected", "hovered", "disabled"
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] logical-to-screen
	Path        []PathCommand `json:"path,omitempty"`        // path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // fill color
	Stroke      string        `json:"stroke,omitempty"`      // stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // stroke width in screen pixels
	Opacity     float64       `json:"opacity,omitempty"`     // global alpha
	Text        string        `json:"text,omitempty"`        // label for "text" ops
	X           float64       `json:"x,omitempty"`           // text anchor
	Y           float64       `json:"y,omitempty"`
}

// PathCommand is one Canvas2D path segment: ["M", x, y], ["L", x, y],
// ["A", cx, cy, r, start, end] or ["Z"].
type PathCommand []any

const (
	backgroundFill = "#2a2a2a"
	backgroundLine = "#555"
	selectedStroke = "#ffffff"
	hoveredStroke  = "#dddddd"
	handleFill     = "#ffffff"
)

// Frame compiles the current state into draw commands in painter's order:
// background, regions in z-order, then the selected region's handles.
func (e *Engine) Frame() []DrawCommand {
	if e.dead {
		return nil
	}
	view := e.viewport.Matrix()
	cmds := []DrawCommand{{
		Op:          "path",
		Role:        "background",
		Transform:   view.ToSlice(),
		Path:        rectPath(0, 0, e.canvas.Width, e.canvas.Height),
		Fill:        backgroundFill,
		Stroke:      backgroundLine,
		StrokeWidth: 1,
		Opacity:     1,
	}}

	e.registry.Each(func(r *region.Region) bool {
		cmds = append(cmds, e.regionCommands(r, view)...)
		return true
	})

	if e.variant.Handles {
		if r, ok := e.registry.Get(e.selected); ok {
			cmds = append(cmds, e.handleCommands(r, view)...)
		}
	}
	return cmds
}

func (e *Engine) regionCommands(r *region.Region, view geometry.Matrix2D) []DrawCommand {
	cx, cy := r.Rect().Center()
	m := view.Multiply(geometry.RotateAbout(cx, cy, r.Rotation))

	state := ""
	stroke := r.Color
	width := 1.0
	opacity := 0.35
	switch {
	case r.ID == e.selected:
		state, stroke, width, opacity = "selected", selectedStroke, 2, 0.5
	case r.ID == e.hovered:
		state, stroke = "hovered", hoveredStroke
	}
	if e.variant.Layout.Has(region.FieldEnabled) && !r.Enabled {
		state, opacity = "disabled", 0.1
	}

	lx, ly := m.TransformPoint(cx, cy)
	return []DrawCommand{
		{
			Op:          "path",
			ObjectID:    r.ID,
			Role:        "region",
			State:       state,
			Transform:   m.ToSlice(),
			Path:        rectPath(r.X, r.Y, r.Width, r.Height),
			Fill:        r.Color,
			Stroke:      stroke,
			StrokeWidth: width,
			Opacity:     opacity,
		},
		{
			Op:       "text",
			ObjectID: r.ID,
			Role:     "label",
			State:    state,
			Fill:     selectedStroke,
			Opacity:  1,
			Text:     r.Label,
			X:        lx,
			Y:        ly,
		},
	}
}

func (e *Engine) handleCommands(r *region.Region, view geometry.Matrix2D) []DrawCommand {
	radius := e.viewport.Distance(e.variant.HandleTolerance) / 2
	h := geometry.HandlePositions(r.Rect(), r.Rotation, e.viewport.Distance(e.variant.RotationHandleDistance))

	cmds := make([]DrawCommand, 0, len(h.Resize)+1)
	for i, p := range h.Resize {
		cmds = append(cmds, DrawCommand{
			Op:          "path",
			ObjectID:    r.ID,
			Role:        "handle",
			State:       string(geometry.Corners[i]),
			Transform:   view.ToSlice(),
			Path:        circlePath(p.X, p.Y, radius),
			Fill:        handleFill,
			Stroke:      r.Color,
			StrokeWidth: 1,
			Opacity:     1,
		})
	}
	cmds = append(cmds, DrawCommand{
		Op:          "path",
		ObjectID:    r.ID,
		Role:        "rotation",
		Transform:   view.ToSlice(),
		Path:        circlePath(h.Rotation.X, h.Rotation.Y, radius),
		Fill:        r.Color,
		Stroke:      handleFill,
		StrokeWidth: 1,
		Opacity:     1,
	})
	return cmds
}

func rectPath(x, y, w, h float64) []PathCommand {
	return []PathCommand{
		{"M", x, y},
		{"L", x + w, y},
		{"L", x + w, y + h},
		{"L", x, y + h},
		{"Z"},
	}
}

func circlePath(cx, cy, r float64) []PathCommand {
	return []PathCommand{{"A", cx, cy, r, 0.0, 2 * math.Pi}}
}

// DrawCommandsToJSON serializes draw commands for the host.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
