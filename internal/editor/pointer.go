package editor

import (
	"math"

	"github.com/inamate/regionedit/internal/constraint"
	"github.com/inamate/regionedit/internal/geometry"
	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/region"
)

// PointerDown handles a button press at widget-local screen coordinates.
func (e *Engine) PointerDown(sx, sy float64, button int) {
	if e.dead || button != PrimaryButton || !finite(sx, sy) {
		return
	}
	defer logging.Recover(e.logger, "pointer down")

	// In toggle mode a click while dragging only drops the region.
	if e.variant.DragMode == Toggle && e.session.Active {
		e.session.end()
		e.requestRedraw()
		e.sync.Flush()
		return
	}

	x, y := e.viewport.ToLogical(sx, sy)
	at := geometry.Point{X: x, Y: y}

	if e.variant.Handles {
		if mode, ok := e.hitHandle(x, y); ok {
			r, _ := e.registry.Get(e.selected)
			e.session.begin(button, at, e.selected, mode, r.Geometry)
			e.requestRedraw()
			return
		}
	}

	if r, ok := e.registry.HitTest(x, y, e.variant.SkipDisabled); ok {
		changed := e.selected != r.ID
		e.selected = r.ID
		e.session.begin(button, at, r.ID, Mode{Kind: ModeMove}, r.Geometry)
		e.requestRedraw()
		if changed {
			e.sync.Flush()
		}
		return
	}

	e.session.end()
	if e.variant.ClickToPlace && e.inCanvas(x, y) {
		e.placeSelected(x, y)
		return
	}
	e.requestRedraw()
}

// PointerMove handles pointer motion. Hover is tracked with or without a
// drag.
func (e *Engine) PointerMove(sx, sy float64) {
	if e.dead || !finite(sx, sy) {
		return
	}
	defer logging.Recover(e.logger, "pointer move")

	x, y := e.viewport.ToLogical(sx, sy)
	e.hovered = ""
	if r, ok := e.registry.HitTest(x, y, e.variant.SkipDisabled); ok {
		e.hovered = r.ID
	}

	if !e.session.Active {
		e.requestRedraw()
		return
	}
	if !e.session.update(geometry.Point{X: x, Y: y}, e.viewport.Distance(e.variant.DragThreshold)) {
		e.requestRedraw()
		return
	}

	r, ok := e.registry.Get(e.session.Target)
	if !ok {
		e.session.end()
		return
	}
	r.Geometry = e.dragResult(r.Geometry)
	e.commit()
}

// PointerUp ends a press-release drag with an immediate widget sync and one
// delayed re-sync. In toggle mode it does nothing.
func (e *Engine) PointerUp(sx, sy float64, button int) {
	if e.dead || e.variant.DragMode == Toggle {
		return
	}
	defer logging.Recover(e.logger, "pointer up")

	wasDragging := e.session.Active
	e.session.end()
	if wasDragging {
		e.sync.Flush()
		e.armResync()
	}
	e.requestRedraw()
}

// PointerLeave ends any drag and clears hover. Mutations already committed
// on move stay; no extra sync is made.
func (e *Engine) PointerLeave() {
	if e.dead {
		return
	}
	e.session.end()
	e.hovered = ""
	e.requestRedraw()
}

func (e *Engine) dragResult(cur region.Geometry) region.Geometry {
	s := e.session
	dx, dy := s.Delta()
	g := cur

	switch s.Mode.Kind {
	case ModeMove:
		g.X, g.Y = e.position(s.Snapshot.X+dx, s.Snapshot.Y+dy, cur.Width, cur.Height)
	case ModeResize:
		x, y, w, h := resizeCorner(s.Snapshot, s.Mode.Corner, dx, dy)
		rs := e.variant.Ranges
		g.Width, g.Height = constraint.Size(rs.Round(region.FieldWidth, w), rs.Round(region.FieldHeight, h), e.variant.Limits, e.canvas)
		g.X, g.Y = e.position(x, y, g.Width, g.Height)
	case ModeRotate:
		cx, cy := cur.Rect().Center()
		g.Rotation = RotationToward(cx, cy, s.Last.X, s.Last.Y)
	}
	return g
}

// resizeCorner applies a pointer delta to the snapshot for the dragged
// corner. The opposite corner stays put until constraints apply.
func resizeCorner(g region.Geometry, c geometry.Corner, dx, dy float64) (x, y, w, h float64) {
	x, y, w, h = g.X, g.Y, g.Width, g.Height
	switch c {
	case geometry.CornerNW:
		x += dx
		y += dy
		w -= dx
		h -= dy
	case geometry.CornerNE:
		y += dy
		w += dx
		h -= dy
	case geometry.CornerSE:
		w += dx
		h += dy
	case geometry.CornerSW:
		x += dx
		w -= dx
		h += dy
	}
	return x, y, w, h
}

// RotationToward returns the whole-degree rotation for a pointer at (px, py)
// around a center at (cx, cy): the pointer angle turned by half a turn.
// Straight right of the center is 180, straight above is 90.
func RotationToward(cx, cy, px, py float64) float64 {
	return geometry.NormalizeRotation(math.Round(geometry.AngleBetween(cx, cy, px, py) - 180))
}

// hitHandle tests the selected region's handles, corners first.
func (e *Engine) hitHandle(x, y float64) (Mode, bool) {
	r, ok := e.registry.Get(e.selected)
	if !ok {
		return Mode{}, false
	}
	if e.variant.SkipDisabled && !r.Enabled {
		return Mode{}, false
	}
	tol := e.viewport.Distance(e.variant.HandleTolerance)
	h := geometry.HandlePositions(r.Rect(), r.Rotation, e.viewport.Distance(e.variant.RotationHandleDistance))

	for i, p := range h.Resize {
		if geometry.PointInCircle(x, y, p.X, p.Y, tol) {
			return Mode{Kind: ModeResize, Corner: geometry.Corners[i]}, true
		}
	}
	if geometry.PointInCircle(x, y, h.Rotation.X, h.Rotation.Y, tol) {
		return Mode{Kind: ModeRotate}, true
	}
	return Mode{}, false
}

func (e *Engine) inCanvas(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= e.canvas.Width && y <= e.canvas.Height
}

// placeSelected moves the selected region's top-left corner to (x, y).
func (e *Engine) placeSelected(x, y float64) {
	r, ok := e.registry.Get(e.selected)
	if !ok {
		e.requestRedraw()
		return
	}
	r.X, r.Y = e.position(x, y, r.Width, r.Height)
	e.commit()
}

// position rounds (x, y) to widget precision and keeps a w×h region on the
// canvas.
func (e *Engine) position(x, y, w, h float64) (float64, float64) {
	rs := e.variant.Ranges
	return constraint.Position(rs.Round(region.FieldX, x), rs.Round(region.FieldY, y), w, h, e.canvas)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
