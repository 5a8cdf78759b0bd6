package region

import "fmt"

// Field identifies one role in a region tuple.
type Field int

const (
	FieldX Field = iota
	FieldY
	FieldWidth
	FieldHeight
	FieldStrength
	FieldRotation
	FieldEnabled
)

var fieldNames = [...]string{"x", "y", "width", "height", "strength", "rotation", "enabled"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField maps a widget name back to its role.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Layout is the ordered list of roles written to the wire for one variant.
type Layout struct {
	Fields []Field
}

var (
	// SixTuple is [x, y, w, h, strength, rotation].
	SixTuple = Layout{Fields: []Field{FieldX, FieldY, FieldWidth, FieldHeight, FieldStrength, FieldRotation}}
	// SevenTuple appends the enabled flag at index 6.
	SevenTuple = Layout{Fields: []Field{FieldX, FieldY, FieldWidth, FieldHeight, FieldStrength, FieldRotation, FieldEnabled}}
)

// Index returns the tuple position of f, or -1.
func (l Layout) Index(f Field) int {
	for i, lf := range l.Fields {
		if lf == f {
			return i
		}
	}
	return -1
}

// Has reports whether the layout carries f.
func (l Layout) Has(f Field) bool { return l.Index(f) >= 0 }
