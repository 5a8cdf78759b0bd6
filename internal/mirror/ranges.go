package mirror

import (
	"math"

	"github.com/inamate/regionedit/internal/region"
)

// Range describes a numeric widget.
type Range struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Step      float64 `json:"step"`
	Precision int     `json:"precision"`
}

// Clamp limits v to [Min, Max]. NaN maps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return max(r.Min, min(r.Max, v))
}

// Ranges holds the widget range per role.
type Ranges map[region.Field]Range

// Clamp clamps v with the range for f. Roles without a range pass through.
func (rs Ranges) Clamp(f region.Field, v float64) float64 {
	r, ok := rs[f]
	if !ok {
		return v
	}
	return r.Clamp(v)
}

// Round rounds v to the precision of f's range. Roles without a range round
// to whole units.
func (rs Ranges) Round(f region.Field, v float64) float64 {
	return RoundTo(v, rs[f].Precision)
}

// Quantize rounds every numeric role of g to its widget precision.
func (rs Ranges) Quantize(g region.Geometry) region.Geometry {
	g.X = rs.Round(region.FieldX, g.X)
	g.Y = rs.Round(region.FieldY, g.Y)
	g.Width = rs.Round(region.FieldWidth, g.Width)
	g.Height = rs.Round(region.FieldHeight, g.Height)
	g.Strength = rs.Round(region.FieldStrength, g.Strength)
	g.Rotation = rs.Round(region.FieldRotation, g.Rotation)
	return g
}

var rotationRange = Range{Min: -180, Max: 180, Step: 1}

// BodyPartsRanges are the widget ranges of the body parts editor.
func BodyPartsRanges() Ranges {
	return Ranges{
		region.FieldX:        {Min: 0, Max: 4096, Step: 1},
		region.FieldY:        {Min: 0, Max: 4096, Step: 1},
		region.FieldWidth:    {Min: 15, Max: 400, Step: 1},
		region.FieldHeight:   {Min: 15, Max: 400, Step: 1},
		region.FieldStrength: {Min: 0, Max: 10, Step: 0.1, Precision: 1},
		region.FieldRotation: rotationRange,
	}
}

// MultiAreaRanges are the widget ranges of the conditioning area editor.
func MultiAreaRanges() Ranges {
	return Ranges{
		region.FieldX:        {Min: 0, Max: 4096, Step: 8},
		region.FieldY:        {Min: 0, Max: 4096, Step: 8},
		region.FieldWidth:    {Min: 32, Max: 4096, Step: 8},
		region.FieldHeight:   {Min: 32, Max: 4096, Step: 8},
		region.FieldStrength: {Min: 0, Max: 10, Step: 0.1, Precision: 2},
		region.FieldRotation: rotationRange,
	}
}

// MultiImageRanges are the widget ranges of the image area editor.
func MultiImageRanges() Ranges {
	return Ranges{
		region.FieldX:        {Min: 0, Max: 2048, Step: 1},
		region.FieldY:        {Min: 0, Max: 2048, Step: 1},
		region.FieldWidth:    {Min: 32, Max: 1024, Step: 1},
		region.FieldHeight:   {Min: 32, Max: 1024, Step: 1},
		region.FieldStrength: {Min: 0, Max: 2, Step: 0.1, Precision: 2},
		region.FieldRotation: rotationRange,
	}
}
