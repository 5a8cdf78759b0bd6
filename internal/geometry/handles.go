package geometry

// Corner identifies one of the four resize handles.
type Corner string

const (
	CornerNW Corner = "nw"
	CornerNE Corner = "ne"
	CornerSE Corner = "se"
	CornerSW Corner = "sw"
)

// Corners lists the resize handles in hit-test order.
var Corners = [4]Corner{CornerNW, CornerNE, CornerSE, CornerSW}

// Handles are the control points of a selected region, in the same space as
// the region itself.
type Handles struct {
	Resize   [4]Point // indexed like Corners
	Rotation Point
}

// HandlePositions returns the rotated corner handles of r and the rotation
// handle, which sits height/2 + distance above the center along the rotated
// up-axis.
func HandlePositions(r Rect, rotation, distance float64) Handles {
	cx, cy := r.Center()
	m := RotateAbout(cx, cy, rotation)

	corners := [4]Point{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}

	var h Handles
	for i, c := range corners {
		x, y := m.TransformPoint(c.X, c.Y)
		h.Resize[i] = Point{X: x, Y: y}
	}

	rx, ry := m.TransformPoint(cx, cy-(r.Height/2+distance))
	h.Rotation = Point{X: rx, Y: ry}
	return h
}
