// Package geometry holds the pure math shared by hit testing and rendering:
// rotated containment, handle placement, angles and the screen/logical
// viewport transform.
package geometry

import "math"

// PointInRect reports whether (px, py) lies inside the rectangle (x, y, w, h)
// rotated by rotation degrees about its own center.
func PointInRect(px, py, x, y, w, h, rotation float64) bool {
	r := Rect{X: x, Y: y, Width: w, Height: h}
	if rotation == 0 {
		return r.Contains(px, py)
	}

	cx, cy := r.Center()
	qx, qy := RotateAbout(cx, cy, -rotation).TransformPoint(px, py)
	return r.Contains(qx, qy)
}

// PointInCircle reports whether (px, py) lies within radius of (cx, cy).
func PointInCircle(px, py, cx, cy, radius float64) bool {
	dx := px - cx
	dy := py - cy
	return dx*dx+dy*dy <= radius*radius
}

// AngleBetween returns the direction from (x1, y1) to (x2, y2) in degrees,
// in the range (-180, 180].
func AngleBetween(x1, y1, x2, y2 float64) float64 {
	deg := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
	if deg == -180 {
		return 180
	}
	return deg
}

// NormalizeRotation wraps an angle in degrees into (-180, 180].
func NormalizeRotation(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0
	}
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	if a > 180 {
		a -= 360
	}
	return a
}
