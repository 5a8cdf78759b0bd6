package geometry

// Viewport maps screen pixels of the canvas widget to logical canvas
// coordinates. Logical = (screen - origin) / scale.
type Viewport struct {
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
	Scale   float64 `json:"scale"`
}

// IdentityViewport maps screen pixels one to one onto the logical canvas.
func IdentityViewport() Viewport {
	return Viewport{Scale: 1}
}

// FitViewport fits a logical extent of resX by resY into a widget of the given
// size, keeping a uniform scale. The background is centered horizontally and
// pinned to the top margin.
func FitViewport(widgetW, widgetH, margin, resX, resY float64) Viewport {
	if resX <= 0 || resY <= 0 {
		return IdentityViewport()
	}
	scale := min((widgetW-margin*2)/resX, (widgetH-margin*2)/resY)
	if scale <= 0 {
		return IdentityViewport()
	}
	bgW := resX * scale
	return Viewport{
		OriginX: margin + (widgetW-bgW-margin*2)/2,
		OriginY: margin,
		Scale:   scale,
	}
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ToLogical converts a screen position to logical canvas coordinates.
func (v Viewport) ToLogical(sx, sy float64) (float64, float64) {
	s := v.scale()
	return (sx - v.OriginX) / s, (sy - v.OriginY) / s
}

// ToScreen converts logical canvas coordinates to a screen position.
func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	s := v.scale()
	return v.OriginX + x*s, v.OriginY + y*s
}

// Distance converts a screen-space length (a tolerance, a threshold) to
// logical units.
func (v Viewport) Distance(screen float64) float64 {
	return screen / v.scale()
}

// Matrix returns the logical-to-screen transform.
func (v Viewport) Matrix() Matrix2D {
	s := v.scale()
	return Matrix2D{s, 0, 0, s, v.OriginX, v.OriginY}
}
