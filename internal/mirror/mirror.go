// Package mirror keeps the host's parameter widgets in step with region
// geometry.
package mirror

import (
	"log/slog"
	"math"

	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/region"
)

// NumberInput is a host numeric widget.
type NumberInput interface {
	SetValue(v float64)
}

// ToggleInput is a host boolean widget.
type ToggleInput interface {
	SetValue(v bool)
}

// Fields maps each role to its widget. Nil entries are skipped.
type Fields struct {
	X        NumberInput
	Y        NumberInput
	Width    NumberInput
	Height   NumberInput
	Strength NumberInput
	Rotation NumberInput
	Enabled  ToggleInput
}

// Number returns the numeric widget for f, or nil.
func (fs Fields) Number(f region.Field) NumberInput {
	switch f {
	case region.FieldX:
		return fs.X
	case region.FieldY:
		return fs.Y
	case region.FieldWidth:
		return fs.Width
	case region.FieldHeight:
		return fs.Height
	case region.FieldStrength:
		return fs.Strength
	case region.FieldRotation:
		return fs.Rotation
	}
	return nil
}

// Mirror pushes canvas-driven geometry into the widgets. While a push is in
// progress Updating reports true so widget callbacks can ignore the echo.
type Mirror struct {
	fields   Fields
	ranges   Ranges
	logger   *slog.Logger
	updating bool
	pushes   int
}

// New builds a mirror that rounds each role to the precision of its range.
func New(fields Fields, ranges Ranges, logger *slog.Logger) *Mirror {
	return &Mirror{fields: fields, ranges: ranges, logger: logger}
}

// SetFields swaps the widget set, for hosts that create widgets after the
// editor.
func (m *Mirror) SetFields(fields Fields) { m.fields = fields }

// Updating reports whether a canvas-driven push is writing widgets.
func (m *Mirror) Updating() bool { return m.updating }

// Pushes counts completed pushes.
func (m *Mirror) Pushes() int { return m.pushes }

// Push writes g into the widgets, rounded to each role's precision.
func (m *Mirror) Push(g region.Geometry) {
	if m.updating {
		return
	}
	m.updating = true
	defer func() { m.updating = false }()
	defer logging.Recover(m.logger, "widget sync")

	g = m.ranges.Quantize(g)
	set(m.fields.X, g.X)
	set(m.fields.Y, g.Y)
	set(m.fields.Width, g.Width)
	set(m.fields.Height, g.Height)
	set(m.fields.Strength, g.Strength)
	set(m.fields.Rotation, g.Rotation)
	if m.fields.Enabled != nil {
		m.fields.Enabled.SetValue(g.Enabled)
	}
	m.pushes++
}

func set(in NumberInput, v float64) {
	if in != nil {
		in.SetValue(v)
	}
}

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
