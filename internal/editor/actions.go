package editor

import (
	"github.com/inamate/regionedit/internal/constraint"
	"github.com/inamate/regionedit/internal/region"
)

// EditField applies a widget edit to the selected region. Edits echoed back
// while the mirror is pushing canvas state are ignored.
func (e *Engine) EditField(f region.Field, v float64) {
	if e.dead || (e.mirror != nil && e.mirror.Updating()) {
		return
	}
	v = e.variant.Ranges.Round(f, e.variant.Ranges.Clamp(f, v))
	if !e.registry.SetField(e.selected, f, v) {
		return
	}
	e.commit()
}

// Select makes id the selected region and refreshes the widgets.
func (e *Engine) Select(id string) {
	if e.dead {
		return
	}
	if _, ok := e.registry.Get(id); !ok {
		return
	}
	e.selected = id
	e.requestRedraw()
	e.sync.Flush()
}

// SelectIndex selects the region at position i. When the layout carries an
// enabled flag, regions 0..i are enabled and the rest disabled.
func (e *Engine) SelectIndex(i int) {
	if e.dead {
		return
	}
	r, ok := e.registry.At(i)
	if !ok {
		return
	}
	e.selected = r.ID
	if !e.variant.Layout.Has(region.FieldEnabled) {
		e.requestRedraw()
		e.sync.Flush()
		return
	}
	idx := 0
	e.registry.Each(func(reg *region.Region) bool {
		reg.Enabled = idx <= i
		idx++
		return true
	})
	e.requestRedraw()
	e.sync.Flush()
	e.publish()
}

// ResetRegion restores the selected region.
func (e *Engine) ResetRegion() {
	e.mutateSelected(func(g region.Geometry, def region.Geometry) region.Geometry {
		if e.variant.ResetGeometry != nil {
			return *e.variant.ResetGeometry
		}
		return def
	})
}

// CenterRegion centers the selected region on the canvas.
func (e *Engine) CenterRegion() {
	e.mutateSelected(func(g region.Geometry, _ region.Geometry) region.Geometry {
		g.X = (e.canvas.Width - g.Width) / 2
		g.Y = (e.canvas.Height - g.Height) / 2
		return g
	})
}

// FillRegion stretches the selected region over the whole canvas at unit
// strength and no rotation.
func (e *Engine) FillRegion() {
	e.mutateSelected(func(g region.Geometry, _ region.Geometry) region.Geometry {
		g.X, g.Y = 0, 0
		g.Width, g.Height = e.canvas.Width, e.canvas.Height
		g.Strength, g.Rotation = 1, 0
		return g
	})
}

// SetEnabled toggles the selected region.
func (e *Engine) SetEnabled(enabled bool) {
	e.mutateSelected(func(g region.Geometry, _ region.Geometry) region.Geometry {
		g.Enabled = enabled
		return g
	})
}

func (e *Engine) mutateSelected(fn func(cur, def region.Geometry) region.Geometry) {
	if e.dead {
		return
	}
	r, ok := e.registry.Get(e.selected)
	if !ok {
		return
	}
	r.Geometry = e.constrained(fn(r.Geometry, r.Default))
	e.commit()
}

// SetResolution changes the output resolution. Variants whose canvas follows
// the output re-clamp every region to the new extent.
func (e *Engine) SetResolution(w, h float64) {
	if e.dead || w <= 0 || h <= 0 {
		return
	}
	e.setOutput(w, h)
	if e.variant.CanvasFollowsOutput {
		e.constrainAll()
	}
	e.commit()
}

// SetWidgetSize re-fits the viewport after the host resized the node.
func (e *Engine) SetWidgetSize(w, h float64) {
	if e.dead || w <= 0 || h <= 0 {
		return
	}
	e.widgetW, e.widgetH = w, h
	e.refit()
	e.requestRedraw()
}

// Limits exposes the size limits in effect.
func (e *Engine) Limits() constraint.SizeLimits { return e.variant.Limits }
