// Package region holds the per-editor region data model: default
// definitions, live geometry, the wire tuple layout and the ordered registry
// the interaction engine mutates.
package region

import "github.com/inamate/regionedit/internal/geometry"

// Geometry is the editable state of one region in logical canvas
// coordinates. Rotation is in degrees, positive clockwise on screen.
type Geometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Strength float64 `json:"strength"`
	Rotation float64 `json:"rotation"`
	Enabled  bool    `json:"enabled"`
}

// Rect returns the unrotated bounds.
func (g Geometry) Rect() geometry.Rect {
	return geometry.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// Contains reports whether the logical point lies inside the rotated region.
func (g Geometry) Contains(x, y float64) bool {
	return geometry.PointInRect(x, y, g.X, g.Y, g.Width, g.Height, g.Rotation)
}

// Field returns the value of one tuple role. Enabled reads as 0 or 1.
func (g Geometry) Field(f Field) float64 {
	switch f {
	case FieldX:
		return g.X
	case FieldY:
		return g.Y
	case FieldWidth:
		return g.Width
	case FieldHeight:
		return g.Height
	case FieldStrength:
		return g.Strength
	case FieldRotation:
		return g.Rotation
	case FieldEnabled:
		if g.Enabled {
			return 1
		}
	}
	return 0
}

// SetField returns a copy of g with one role replaced. Any non-zero value
// enables the region.
func (g Geometry) SetField(f Field, v float64) Geometry {
	switch f {
	case FieldX:
		g.X = v
	case FieldY:
		g.Y = v
	case FieldWidth:
		g.Width = v
	case FieldHeight:
		g.Height = v
	case FieldStrength:
		g.Strength = v
	case FieldRotation:
		g.Rotation = v
	case FieldEnabled:
		g.Enabled = v != 0
	}
	return g
}

// Def is the static description of a region.
type Def struct {
	ID      string   `json:"id" yaml:"id"`
	Label   string   `json:"label" yaml:"label"`
	Color   string   `json:"color" yaml:"color"`
	Default Geometry `json:"default" yaml:"default"`
}

// Region is a live region owned by a Registry.
type Region struct {
	Def
	Geometry
}

// Reset restores the default geometry.
func (r *Region) Reset() {
	r.Geometry = r.Default
}
