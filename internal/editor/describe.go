package editor

import (
	"sort"

	"github.com/inamate/regionedit/internal/constraint"
	"github.com/inamate/regionedit/internal/mirror"
	"github.com/inamate/regionedit/internal/region"
)

// Descriptor is what a host needs to build the widgets for a variant.
type Descriptor struct {
	Name     string                  `json:"name" yaml:"name"`
	Prefix   string                  `json:"prefix" yaml:"prefix"`
	Action   string                  `json:"action" yaml:"action"`
	DragMode string                  `json:"drag_mode" yaml:"drag_mode"`
	Fields   []string                `json:"fields" yaml:"fields"`
	Ranges   map[string]mirror.Range `json:"ranges" yaml:"ranges"`
	Canvas   constraint.Extent       `json:"canvas" yaml:"canvas"`
	Output   constraint.Extent       `json:"output" yaml:"output"`
	Regions  []region.Def            `json:"regions" yaml:"regions"`
}

func (v Variant) Describe() Descriptor {
	d := Descriptor{
		Name:     v.Name,
		Prefix:   v.Prefix,
		Action:   v.Action,
		DragMode: v.DragMode.String(),
		Ranges:   make(map[string]mirror.Range, len(v.Ranges)),
		Canvas:   v.Canvas,
		Output:   v.Output,
		Regions:  append([]region.Def(nil), v.Defs...),
	}
	for _, f := range v.Layout.Fields {
		d.Fields = append(d.Fields, f.String())
	}
	for f, r := range v.Ranges {
		d.Ranges[f.String()] = r
	}
	return d
}

// Descriptors describes every built-in variant, sorted by name.
func Descriptors() []Descriptor {
	all := Variants()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, all[name].Describe())
	}
	return out
}
