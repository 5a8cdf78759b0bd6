package editor

import (
	"fmt"

	"github.com/inamate/regionedit/internal/geometry"
	"github.com/inamate/regionedit/internal/region"
)

// ModeKind is the kind of mutation a drag performs.
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModeMove
	ModeResize
	ModeRotate
)

// Mode is the active drag mode. Corner is set for ModeResize only.
type Mode struct {
	Kind   ModeKind
	Corner geometry.Corner
}

func (m Mode) String() string {
	switch m.Kind {
	case ModeMove:
		return "move"
	case ModeResize:
		return fmt.Sprintf("resize:%s", m.Corner)
	case ModeRotate:
		return "rotate"
	default:
		return "none"
	}
}

// DragSession records an in-progress pointer-driven mutation. Positions are
// logical canvas coordinates.
type DragSession struct {
	Active bool
	Button int
	Start  geometry.Point
	Last   geometry.Point
	Target string
	Mode   Mode
	Moved  bool

	// Snapshot is the target geometry at drag start. Every move recomputes
	// the result from it and the cumulative delta.
	Snapshot region.Geometry
}

func (s *DragSession) begin(button int, at geometry.Point, target string, mode Mode, snapshot region.Geometry) {
	*s = DragSession{
		Active:   true,
		Button:   button,
		Start:    at,
		Last:     at,
		Target:   target,
		Mode:     mode,
		Snapshot: snapshot,
	}
}

// update records the pointer and reports whether the drag has passed the
// threshold. A threshold of zero counts the first move event.
func (s *DragSession) update(at geometry.Point, threshold float64) bool {
	s.Last = at
	if !s.Moved {
		dx, dy := s.Delta()
		s.Moved = threshold <= 0 || dx*dx+dy*dy > threshold*threshold
	}
	return s.Moved
}

// Delta is the cumulative pointer movement since the drag started.
func (s *DragSession) Delta() (float64, float64) {
	return s.Last.X - s.Start.X, s.Last.Y - s.Start.Y
}

func (s *DragSession) end() {
	*s = DragSession{}
}
