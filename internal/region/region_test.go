package region

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/regionedit/internal/logging"
)

func TestBodyPartsPreset(t *testing.T) {
	defs := BodyParts()
	require.Len(t, defs, 26)
	assert.Equal(t, "head", defs[0].ID)
	assert.Equal(t, Geometry{X: 170, Y: 10, Width: 70, Height: 50, Strength: 1, Enabled: true}, defs[0].Default)

	seen := map[string]bool{}
	for _, d := range defs {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		assert.LessOrEqual(t, d.Default.X+d.Default.Width, 400.0, d.ID)
		assert.LessOrEqual(t, d.Default.Y+d.Default.Height, 500.0, d.ID)
	}
}

func TestMultiImagePresetEnablesFirstOnly(t *testing.T) {
	defs := MultiImage()
	require.Len(t, defs, 4)
	assert.True(t, defs[0].Default.Enabled)
	for _, d := range defs[1:] {
		assert.False(t, d.Default.Enabled)
	}
	assert.Equal(t, 256.0, defs[3].Default.X)
	assert.Equal(t, 256.0, defs[3].Default.Y)
}

func TestRegistryOrderAndLookup(t *testing.T) {
	reg := NewRegistry(MultiArea(), SixTuple, logging.Nop())
	assert.Equal(t, []string{"0", "1", "2", "3"}, reg.IDs())
	assert.Equal(t, 2, reg.Index("2"))
	assert.Equal(t, -1, reg.Index("nope"))

	r, ok := reg.At(3)
	require.True(t, ok)
	assert.Equal(t, 64.0, r.X)

	_, ok = reg.At(4)
	assert.False(t, ok)
}

func TestRegistryHitTestFirstMatchWins(t *testing.T) {
	reg := NewRegistry(MultiArea(), SixTuple, logging.Nop())

	// (100, 150) is inside area 0 and area 3; insertion order picks 0.
	r, ok := reg.HitTest(100, 150, false)
	require.True(t, ok)
	assert.Equal(t, "0", r.ID)

	// (100, 300) is inside area 2 and area 3.
	r, ok = reg.HitTest(100, 300, false)
	require.True(t, ok)
	assert.Equal(t, "2", r.ID)

	_, ok = reg.HitTest(600, 10, false)
	assert.False(t, ok)
}

func TestRegistryHitTestSkipsDisabled(t *testing.T) {
	reg := NewRegistry(MultiImage(), SevenTuple, logging.Nop())
	_, ok := reg.HitTest(300, 10, true)
	assert.False(t, ok)

	r, ok := reg.HitTest(300, 10, false)
	require.True(t, ok)
	assert.Equal(t, "1", r.ID)
}

func TestRegistryLoadAppliesOverrides(t *testing.T) {
	reg := NewRegistry(BodyParts(), SixTuple, logging.Nop())
	n := reg.Load(map[string]json.RawMessage{
		"head":    json.RawMessage(`[10, 20, 30, 40, 2.5, -45]`),
		"ghost":   json.RawMessage(`[1, 2, 3, 4, 5, 6]`),
		"neck":    json.RawMessage(`[1, 2]`),
		"spine":   json.RawMessage(`"bogus"`),
		"abdomen": json.RawMessage(`[1, 2, 3, 4, "x", 0]`),
	})
	assert.Equal(t, 1, n)

	head, _ := reg.Get("head")
	assert.Equal(t, Geometry{X: 10, Y: 20, Width: 30, Height: 40, Strength: 2.5, Rotation: -45, Enabled: true}, head.Geometry)

	neck, _ := reg.Get("neck")
	assert.Equal(t, neck.Default, neck.Geometry)
}

func TestRegistryResetRestoresDefaults(t *testing.T) {
	reg := NewRegistry(BodyParts(), SixTuple, logging.Nop())
	reg.SetField("head", FieldX, 300)
	reg.SetField("neck", FieldRotation, 30)

	require.True(t, reg.Reset("head"))
	head, _ := reg.Get("head")
	assert.Equal(t, 170.0, head.X)

	neck, _ := reg.Get("neck")
	assert.Equal(t, 30.0, neck.Rotation)
	reg.ResetAll()
	assert.Equal(t, 0.0, neck.Rotation)

	assert.False(t, reg.Reset("ghost"))
}

func TestSevenTupleEncodeDecode(t *testing.T) {
	g := Geometry{X: 256, Y: 0, Width: 256, Height: 256, Strength: 1, Enabled: false}
	data, err := json.Marshal(SevenTuple.Encode(g))
	require.NoError(t, err)
	assert.JSONEq(t, `[256, 0, 256, 256, 1, 0, false]`, string(data))

	got, err := SevenTuple.Decode(json.RawMessage(`[1, 2, 3, 4, 0.5, 10, 1]`), Geometry{})
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	// Six values under the seven-value layout keep the base enabled flag.
	got, err = SevenTuple.Decode(json.RawMessage(`[1, 2, 3, 4, 0.5, 10]`), Geometry{Enabled: true})
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Equal(t, 10.0, got.Rotation)

	_, err = SevenTuple.Decode(json.RawMessage(`[1, 2, 3]`), Geometry{})
	assert.ErrorIs(t, err, ErrShortTuple)
}

func TestFieldNames(t *testing.T) {
	f, ok := ParseField("strength")
	require.True(t, ok)
	assert.Equal(t, FieldStrength, f)
	assert.Equal(t, "enabled", FieldEnabled.String())
	assert.Equal(t, 6, SevenTuple.Index(FieldEnabled))
	assert.False(t, SixTuple.Has(FieldEnabled))

	_, ok = ParseField("depth")
	assert.False(t, ok)
}

func TestPayloadJSON(t *testing.T) {
	reg := NewRegistry(MultiImage()[:1], SevenTuple, logging.Nop())
	data, err := json.Marshal(reg.Payload(1024, 1024, 1024, 1024, "0"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"regions": {"0": [0, 0, 256, 256, 1, 0, true]},
		"canvas_width": 1024, "canvas_height": 1024,
		"output_width": 1024, "output_height": 1024,
		"selected": "0"
	}`, string(data))

	saved, err := ParsePayload(data)
	require.NoError(t, err)
	assert.Equal(t, "0", saved.Selected)
	assert.Len(t, saved.Regions, 1)
}

func TestScaledDefaults(t *testing.T) {
	defs := ScaledDefaults(BodyParts(), 400, 500, 640, 1000)
	assert.Equal(t, 272.0, defs[0].Default.X)
	assert.Equal(t, 20.0, defs[0].Default.Y)
	assert.Equal(t, 112.0, defs[0].Default.Width)
	assert.Equal(t, 100.0, defs[0].Default.Height)
	assert.Equal(t, 1.0, defs[0].Default.Strength)

	// Originals are untouched.
	assert.Equal(t, 170.0, BodyParts()[0].Default.X)
}
