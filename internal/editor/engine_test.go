package editor

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/regionedit/internal/eventloop"
	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/mirror"
	"github.com/inamate/regionedit/internal/region"
)

type fakeHost struct {
	redraws [][]DrawCommand
	dirty   int
}

func (h *fakeHost) Redraw(cmds []DrawCommand) { h.redraws = append(h.redraws, cmds) }
func (h *fakeHost) MarkDirty()                { h.dirty++ }

type recordingPublisher struct {
	payloads []region.Payload
}

func (p *recordingPublisher) Push(_ string, payload region.Payload) {
	p.payloads = append(p.payloads, payload)
}

func (p *recordingPublisher) last() region.Payload { return p.payloads[len(p.payloads)-1] }

type widget struct {
	value  float64
	writes int
	onSet  func()
}

func (w *widget) SetValue(v float64) {
	w.value = v
	w.writes++
	if w.onSet != nil {
		w.onSet()
	}
}

type harness struct {
	loop   *eventloop.Manual
	host   *fakeHost
	pub    *recordingPublisher
	x, y   *widget
	engine *Engine
}

func newHarness(t *testing.T, v Variant) *harness {
	t.Helper()
	h := &harness{
		loop: eventloop.NewManual(time.Time{}),
		host: &fakeHost{},
		pub:  &recordingPublisher{},
		x:    &widget{},
		y:    &widget{},
	}
	m := mirror.New(mirror.Fields{X: h.x, Y: h.y}, v.Ranges, logging.Nop())
	h.engine = New(v, Options{
		NodeID:    "7",
		Loop:      h.loop,
		Host:      h.host,
		Mirror:    m,
		Publisher: h.pub,
		Logger:    logging.Nop(),
	})
	return h
}

func (h *harness) geometry(t *testing.T, id string) region.Geometry {
	t.Helper()
	g, ok := h.engine.Geometry(id)
	require.True(t, ok, id)
	return g
}

func TestDragMoveCommitsAndSyncsOnRelease(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	require.True(t, e.Dragging())
	assert.Equal(t, "head", e.Selected())
	assert.Equal(t, ModeMove, e.Session().Mode.Kind)

	e.PointerMove(190, 40)
	g := h.geometry(t, "head")
	assert.Equal(t, 180.0, g.X)
	assert.Equal(t, 30.0, g.Y)
	assert.Equal(t, 70.0, g.Width)

	require.NotEmpty(t, h.pub.payloads)
	assert.Equal(t, region.Tuple{180.0, 30.0, 70.0, 50.0, 1.0, 0.0}, h.pub.last().Regions["head"])

	e.PointerUp(190, 40, PrimaryButton)
	assert.False(t, e.Dragging())
	assert.Equal(t, 180.0, h.x.value)
	assert.Equal(t, 30.0, h.y.value)
}

func TestDragMoveIsRelativeToSnapshot(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	for i := 1; i <= 10; i++ {
		e.PointerMove(180+float64(i), 20)
	}
	e.PointerMove(185, 20)
	assert.Equal(t, 175.0, h.geometry(t, "head").X)
}

func TestDragMoveClampsToCanvas(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	e.PointerMove(360, 20) // head would land at x=350
	assert.Equal(t, 330.0, h.geometry(t, "head").X)

	e.PointerMove(-400, -400)
	g := h.geometry(t, "head")
	assert.Equal(t, 0.0, g.X)
	assert.Equal(t, 0.0, g.Y)
}

func TestRedrawsCoalescePerFrame(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	h.loop.Frame()
	h.host.redraws = nil

	for i := 1; i <= 10; i++ {
		e.PointerMove(180+float64(i), 20)
	}
	h.loop.Frame()
	require.Len(t, h.host.redraws, 1)

	var headX float64
	for _, c := range h.host.redraws[0] {
		if c.Role == "region" && c.ObjectID == "head" {
			headX = c.Path[0][1].(float64)
		}
	}
	assert.Equal(t, 180.0, headX, "frame reflects the 10th move")
}

func TestWidgetSyncIsThrottledDuringDrag(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	for i := 1; i <= 5; i++ {
		e.PointerMove(180+float64(i), 20)
	}
	assert.Equal(t, 1, h.x.writes, "only the leading sync ran")
	assert.Equal(t, 171.0, h.x.value)

	h.loop.Advance(16 * time.Millisecond)
	assert.Equal(t, 2, h.x.writes)
	assert.Equal(t, 175.0, h.x.value)
}

func TestPointerUpArmsOneDelayedResync(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	e.PointerMove(190, 40)
	e.PointerUp(190, 40, PrimaryButton)
	writes := h.x.writes

	h.loop.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, h.host.dirty)
	h.loop.Advance(time.Millisecond)
	assert.Equal(t, 1, h.host.dirty)
	assert.Equal(t, writes+1, h.x.writes)

	h.loop.Advance(time.Second)
	assert.Equal(t, 1, h.host.dirty)

	// A release without a drag does not sync.
	e.PointerUp(0, 0, PrimaryButton)
	h.loop.Advance(time.Second)
	assert.Equal(t, 1, h.host.dirty)
}

func TestNonPrimaryButtonIgnored(t *testing.T) {
	h := newHarness(t, BodyParts())
	h.engine.PointerDown(180, 20, 2)
	assert.False(t, h.engine.Dragging())
}

func TestResizeFromCorners(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	// South-east handle of head sits at (240, 60).
	e.PointerDown(240, 60, PrimaryButton)
	require.Equal(t, "resize:se", e.Session().Mode.String())
	e.PointerMove(250, 75)
	g := h.geometry(t, "head")
	assert.Equal(t, [4]float64{170, 10, 80, 65}, [4]float64{g.X, g.Y, g.Width, g.Height})
	e.PointerUp(250, 75, PrimaryButton)

	// North-west handle, dragged past the opposite corner: size hits the minimum.
	e.PointerDown(170, 10, PrimaryButton)
	require.Equal(t, "resize:nw", e.Session().Mode.String())
	e.PointerMove(300, 100)
	g = h.geometry(t, "head")
	assert.Equal(t, 15.0, g.Width)
	assert.Equal(t, 15.0, g.Height)
	assert.Equal(t, 300.0, g.X)
	assert.Equal(t, 100.0, g.Y)
}

func TestResizeClampsToMaximum(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(240, 60, PrimaryButton)
	e.PointerMove(900, 900)
	g := h.geometry(t, "head")
	assert.Equal(t, 300.0, g.Width)
	assert.Equal(t, 300.0, g.Height)
	assert.Equal(t, 100.0, g.X, "position re-clamped against the new width")
	assert.Equal(t, 10.0, g.Y)
}

func TestRotateFollowsPointer(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	// Head center is (205, 35); the rotation handle is 25+20 above it.
	e.PointerDown(205, -10, PrimaryButton)
	require.Equal(t, ModeRotate, e.Session().Mode.Kind)

	for _, tc := range []struct {
		x, y float64
		want float64
	}{
		{205, -12, 90},
		{255, 35, 180},
		{205, 85, -90},
		{155, 35, 0},
		{160, -10, 45},
	} {
		e.PointerMove(tc.x, tc.y)
		assert.Equal(t, tc.want, h.geometry(t, "head").Rotation, "pointer at (%v, %v)", tc.x, tc.y)
	}

	g := h.geometry(t, "head")
	assert.Equal(t, 170.0, g.X, "rotation does not move the region")
}

func TestRotationTowardStaysInRange(t *testing.T) {
	for deg := -360.0; deg <= 360; deg += 7.5 {
		rad := deg * math.Pi / 180
		r := RotationToward(0, 0, 100*math.Cos(rad), 100*math.Sin(rad))
		require.Greater(t, r, -180.0)
		require.LessOrEqual(t, r, 180.0)
		require.Equal(t, r, math.Round(r))
	}
	assert.Equal(t, 180.0, RotationToward(0, 0, 10, 0))
}

func TestRotatedRegionHitTest(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine
	e.PointerDown(205, -10, PrimaryButton)
	e.PointerMove(205, -12) // 90°: head now spans x 180..230, y 0..70
	e.PointerUp(205, -12, PrimaryButton)
	require.Equal(t, 90.0, h.geometry(t, "head").Rotation)

	e.PointerMove(200, 65)
	assert.Equal(t, "head", e.Hovered())
}

func TestToggleDragSemantics(t *testing.T) {
	h := newHarness(t, MultiArea())
	e := h.engine
	e.SetWidgetSize(532, 404) // scale 1, origin (10, 10)

	e.PointerDown(110, 60, PrimaryButton)
	require.True(t, e.Dragging())
	assert.Equal(t, "0", e.Selected())

	e.PointerUp(110, 60, PrimaryButton)
	assert.True(t, e.Dragging(), "release keeps the drag")

	e.PointerMove(130, 80)
	g := h.geometry(t, "0")
	assert.Equal(t, 20.0, g.X)
	assert.Equal(t, 20.0, g.Y)

	e.PointerDown(500, 380, PrimaryButton)
	assert.False(t, e.Dragging())
	g = h.geometry(t, "0")
	assert.Equal(t, 20.0, g.X, "the ending click changes nothing")

	e.PointerMove(200, 200)
	assert.Equal(t, 20.0, h.geometry(t, "0").X)
}

func TestClickToPlaceMovesSelectedRegion(t *testing.T) {
	h := newHarness(t, MultiImage())
	e := h.engine
	e.SetWidgetSize(1044, 1044)

	// Regions 1-3 start disabled and are not hit; the click lands on empty canvas.
	e.PointerDown(610, 710, PrimaryButton)
	assert.False(t, e.Dragging())
	g := h.geometry(t, "0")
	assert.Equal(t, 600.0, g.X)
	assert.Equal(t, 700.0, g.Y)

	e.PointerDown(1000, 1000, PrimaryButton)
	g = h.geometry(t, "0")
	assert.Equal(t, 768.0, g.X)
	assert.Equal(t, 768.0, g.Y)
}

func TestSelectIndexEnablesLeadingRegions(t *testing.T) {
	h := newHarness(t, MultiImage())
	e := h.engine

	e.SelectIndex(2)
	assert.Equal(t, "2", e.Selected())
	for id, want := range map[string]bool{"0": true, "1": true, "2": true, "3": false} {
		assert.Equal(t, want, h.geometry(t, id).Enabled, id)
	}
	assert.Equal(t, false, h.pub.last().Regions["3"][6])

	e.SelectIndex(9)
	assert.Equal(t, "2", e.Selected())
}

func TestContextActions(t *testing.T) {
	h := newHarness(t, MultiArea())
	e := h.engine

	e.Select("3")
	e.CenterRegion()
	g := h.geometry(t, "3")
	assert.Equal(t, 192.0, g.X)
	assert.Equal(t, 64.0, g.Y)

	e.FillRegion()
	g = h.geometry(t, "3")
	assert.Equal(t, [4]float64{0, 0, 512, 384}, [4]float64{g.X, g.Y, g.Width, g.Height})

	e.ResetRegion()
	g = h.geometry(t, "3")
	assert.Equal(t, [4]float64{0, 0, 256, 256}, [4]float64{g.X, g.Y, g.Width, g.Height})

	bp := newHarness(t, BodyParts())
	bp.engine.Select("neck")
	bp.engine.EditField(region.FieldX, 5)
	bp.engine.ResetRegion()
	assert.Equal(t, 185.0, bp.geometry(t, "neck").X)
}

func TestSetEnabled(t *testing.T) {
	h := newHarness(t, MultiImage())
	h.engine.Select("1")
	h.engine.SetEnabled(true)
	assert.True(t, h.geometry(t, "1").Enabled)
	assert.Equal(t, true, h.pub.last().Regions["1"][6])
}

func TestSetResolutionReclampsRegions(t *testing.T) {
	h := newHarness(t, MultiArea())
	e := h.engine

	e.SetResolution(256, 256)
	assert.Equal(t, 256.0, e.Canvas().Width)
	g := h.geometry(t, "1")
	assert.Equal(t, 0.0, g.X)
	assert.Equal(t, 256.0, g.Width)
	assert.Equal(t, 256.0, h.pub.last().OutputWidth)

	// Body parts keep their canvas; only the reported output changes.
	bp := newHarness(t, BodyParts())
	bp.engine.SetResolution(1024, 1024)
	assert.Equal(t, 400.0, bp.engine.Canvas().Width)
	assert.Equal(t, 1024.0, bp.engine.Output().Width)
}

func TestWidgetEditIgnoredWhileMirrorPushes(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine
	h.x.onSet = func() { e.EditField(region.FieldX, 999) }

	e.Select("head")
	assert.Equal(t, 170.0, h.geometry(t, "head").X, "echoed widget write is ignored")

	h.x.onSet = nil
	e.EditField(region.FieldX, 50)
	assert.Equal(t, 50.0, h.geometry(t, "head").X)
	assert.Equal(t, 50.0, h.pub.last().Regions["head"][0])

	e.EditField(region.FieldWidth, 5000)
	assert.Equal(t, 400.0, h.geometry(t, "head").Width, "widget range applies")

	h.loop.Frame()
	assert.NotEmpty(t, h.host.redraws)
}

func TestDestroyCancelsPendingWork(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	e.PointerMove(181, 20)
	e.PointerMove(182, 20)
	e.PointerUp(182, 20, PrimaryButton)
	published := len(h.pub.payloads)

	e.Destroy()
	assert.True(t, e.Dead())
	assert.False(t, e.Dragging())

	h.loop.Frame()
	h.loop.Advance(time.Second)
	assert.Empty(t, h.host.redraws)
	assert.Equal(t, 0, h.host.dirty)

	e.PointerDown(180, 20, PrimaryButton)
	e.PointerMove(300, 300)
	e.EditField(region.FieldX, 1)
	e.Destroy()
	assert.Equal(t, published, len(h.pub.payloads))
	assert.Equal(t, 172.0, h.geometry(t, "head").X)
	assert.Nil(t, e.Frame())
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	e.PointerMove(200, 20)
	writes := h.x.writes
	e.PointerLeave()
	assert.False(t, e.Dragging())
	assert.Empty(t, e.Hovered())
	assert.Equal(t, writes, h.x.writes)

	e.PointerMove(260, 20)
	assert.Equal(t, 190.0, h.geometry(t, "head").X)
}

func TestFrameCommands(t *testing.T) {
	h := newHarness(t, BodyParts())
	cmds := h.engine.Frame()
	require.Len(t, cmds, 1+2*26+5)
	assert.Equal(t, "background", cmds[0].Role)
	assert.Equal(t, "region", cmds[1].Role)
	assert.Equal(t, "head", cmds[1].ObjectID)
	assert.Equal(t, "selected", cmds[1].State)
	assert.Equal(t, "rotation", cmds[len(cmds)-1].Role)

	data, err := DrawCommandsToJSON(cmds[:1])
	require.NoError(t, err)
	assert.Contains(t, data, `"role":"background"`)

	// Toggle variants draw no handles.
	ma := newHarness(t, MultiArea())
	assert.Len(t, ma.engine.Frame(), 1+2*4)
}

func TestLoadSavedPayload(t *testing.T) {
	h := newHarness(t, MultiImage())
	saved, err := region.ParsePayload([]byte(`{
		"regions": {"1": [900, 10, 256, 256, 0.5, 400, true], "9": [0, 0, 1, 1, 1, 0]},
		"canvas_width": 768, "canvas_height": 768,
		"output_width": 768, "output_height": 768,
		"selected": "1"
	}`))
	require.NoError(t, err)

	published := len(h.pub.payloads)
	h.engine.Load(saved)

	g := h.geometry(t, "1")
	assert.True(t, g.Enabled)
	assert.Equal(t, 512.0, g.X, "clamped to the loaded 768 canvas")
	assert.Equal(t, 40.0, g.Rotation)
	assert.Equal(t, "1", h.engine.Selected())
	assert.Equal(t, published, len(h.pub.payloads))

	data, err := json.Marshal(h.engine.Payload())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"output_width":768`)
}

func TestVariantLookup(t *testing.T) {
	v, ok := VariantByName("human_body_parts")
	require.True(t, ok)
	assert.Equal(t, "body_parts", v.Name)
	assert.Equal(t, "toggle", MultiArea().DragMode.String())
	_, ok = VariantByName("nope")
	assert.False(t, ok)
}

func TestCommittedGeometryMatchesWidgets(t *testing.T) {
	h := newHarness(t, MultiArea())
	e := h.engine
	require.Less(t, e.Viewport().Scale, 1.0, "default widget size shrinks the canvas")

	strength := &widget{}
	e.SetMirror(mirror.New(mirror.Fields{X: h.x, Y: h.y, Strength: strength}, MultiArea().Ranges, logging.Nop()))

	sx, sy := e.Viewport().ToScreen(100, 100)
	e.PointerDown(sx, sy, PrimaryButton)
	require.True(t, e.Dragging())
	e.PointerMove(sx+7, sy+3)
	e.PointerDown(sx+7, sy+3, PrimaryButton) // second click drops the region

	g := h.geometry(t, "0")
	assert.Equal(t, math.Round(g.X), g.X)
	assert.Equal(t, math.Round(g.Y), g.Y)
	assert.NotZero(t, g.X)
	assert.Equal(t, g.X, h.x.value)
	assert.Equal(t, g.Y, h.y.value)
	assert.Equal(t, g.X, h.pub.last().Regions["0"][0])
	assert.Equal(t, g.Y, h.pub.last().Regions["0"][1])

	e.EditField(region.FieldStrength, 1.25)
	e.Select("0")
	assert.Equal(t, 1.25, h.geometry(t, "0").Strength)
	assert.Equal(t, 1.25, strength.value)
	assert.Equal(t, 1.25, h.pub.last().Regions["0"][4])

	// Body parts strength carries one decimal.
	bp := newHarness(t, BodyParts())
	bpStrength := &widget{}
	bp.engine.SetMirror(mirror.New(mirror.Fields{Strength: bpStrength}, BodyParts().Ranges, logging.Nop()))
	bp.engine.EditField(region.FieldStrength, 1.25)
	bp.engine.Select("head")
	assert.Equal(t, 1.3, bp.geometry(t, "head").Strength)
	assert.Equal(t, 1.3, bpStrength.value)
}

func TestNonFinitePointerIgnored(t *testing.T) {
	h := newHarness(t, BodyParts())
	e := h.engine

	e.PointerDown(180, 20, PrimaryButton)
	e.PointerMove(math.NaN(), 40)
	e.PointerMove(190, math.Inf(1))
	g := h.geometry(t, "head")
	assert.Equal(t, 170.0, g.X)
	assert.Equal(t, 10.0, g.Y)

	_, err := json.Marshal(e.Payload())
	require.NoError(t, err)
}
