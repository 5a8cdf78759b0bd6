// Package constraint clamps region geometry to the logical canvas and to the
// configured size range. All functions are pure.
package constraint

import "math"

// Extent is the logical canvas size regions are clamped against.
type Extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SizeLimits bounds a region's width and height.
type SizeLimits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Position clamps (x, y) so a w×h region stays inside the canvas. When the
// region is larger than the canvas it is pinned to the origin.
func Position(x, y, w, h float64, canvas Extent) (float64, float64) {
	return clampAxis(x, w, canvas.Width), clampAxis(y, h, canvas.Height)
}

// clampAxis maps NaN to the canvas origin.
func clampAxis(v, size, extent float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(0, v), max(0, extent-size))
}

// Size clamps each dimension to [limits.Min, min(limits.Max, canvas dimension)].
// The minimum wins when that range is inverted.
func Size(w, h float64, limits SizeLimits, canvas Extent) (float64, float64) {
	return clampSize(w, limits, canvas.Width), clampSize(h, limits, canvas.Height)
}

func clampSize(v float64, limits SizeLimits, extent float64) float64 {
	if math.IsNaN(v) {
		v = limits.Min
	}
	upper := extent
	if limits.Max > 0 {
		upper = min(limits.Max, extent)
	}
	return max(limits.Min, min(upper, v))
}

// Region applies Size first and then Position against the new size.
func Region(x, y, w, h float64, limits SizeLimits, canvas Extent) (nx, ny, nw, nh float64) {
	nw, nh = Size(w, h, limits, canvas)
	nx, ny = Position(x, y, nw, nh, canvas)
	return nx, ny, nw, nh
}
