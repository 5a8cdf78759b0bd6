// Package editor is the interactive region editor: it turns host pointer
// events and widget edits into region mutations under the canvas
// constraints, and schedules redraws, widget syncs and bridge pushes.
//
// An Engine is single-threaded. Every method, and every callback it
// schedules, runs on the host loop passed in Options.
package editor

import (
	"log/slog"

	"github.com/inamate/regionedit/internal/constraint"
	"github.com/inamate/regionedit/internal/geometry"
	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/mirror"
	"github.com/inamate/regionedit/internal/region"
	"github.com/inamate/regionedit/internal/schedule"
)

// PrimaryButton is the only pointer button that edits regions.
const PrimaryButton = 0

// Publisher receives committed payloads. Implementations must not block.
type Publisher interface {
	Push(nodeID string, payload region.Payload)
}

// Host is the canvas widget the engine draws into.
type Host interface {
	Redraw(cmds []DrawCommand)
	// MarkDirty tells the host graph the node's parameters changed.
	MarkDirty()
}

// Options wires an engine to its collaborators. Loop is required; the rest
// may be nil.
type Options struct {
	NodeID    string
	Loop      schedule.Loop
	Host      Host
	Mirror    *mirror.Mirror
	Publisher Publisher
	Logger    *slog.Logger
}

// Engine edits the regions of one node.
type Engine struct {
	variant   Variant
	nodeID    string
	registry  *region.Registry
	host      Host
	mirror    *mirror.Mirror
	publisher Publisher
	logger    *slog.Logger

	canvas   constraint.Extent
	output   constraint.Extent
	viewport geometry.Viewport
	widgetW  float64
	widgetH  float64

	selected string
	hovered  string
	session  DragSession

	frames *schedule.FrameThrottler
	sync   *schedule.SyncThrottler
	loop   schedule.Loop
	resync schedule.Cancel

	dead bool
}

// New builds an engine with every region at its default geometry.
func New(v Variant, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("editor", v.Name, "node", opts.NodeID)

	e := &Engine{
		variant:   v,
		nodeID:    opts.NodeID,
		registry:  region.NewRegistry(v.Defs, v.Layout, logger),
		host:      opts.Host,
		mirror:    opts.Mirror,
		publisher: opts.Publisher,
		logger:    logger,
		canvas:    v.Canvas,
		output:    v.Output,
		widgetW:   v.WidgetWidth,
		widgetH:   v.WidgetHeight,
		selected:  v.Selected,
		loop:      opts.Loop,
	}
	if _, ok := e.registry.Get(e.selected); !ok {
		if r, ok := e.registry.At(0); ok {
			e.selected = r.ID
		}
	}
	e.frames = schedule.NewFrameThrottler(opts.Loop, logger)
	e.sync = schedule.NewSyncThrottler(opts.Loop, v.SyncInterval, e.syncWidgets, logger)
	e.refit()
	return e
}

func (e *Engine) Variant() Variant            { return e.variant }
func (e *Engine) NodeID() string              { return e.nodeID }
func (e *Engine) Registry() *region.Registry  { return e.registry }
func (e *Engine) Selected() string            { return e.selected }
func (e *Engine) Hovered() string             { return e.hovered }
func (e *Engine) Session() DragSession        { return e.session }
func (e *Engine) Canvas() constraint.Extent   { return e.canvas }
func (e *Engine) Output() constraint.Extent   { return e.output }
func (e *Engine) Viewport() geometry.Viewport { return e.viewport }
func (e *Engine) Dead() bool                  { return e.dead }
func (e *Engine) SetPublisher(p Publisher)    { e.publisher = p }
func (e *Engine) SetMirror(m *mirror.Mirror)  { e.mirror = m }

func (e *Engine) Geometry(id string) (region.Geometry, bool) {
	r, ok := e.registry.Get(id)
	if !ok {
		return region.Geometry{}, false
	}
	return r.Geometry, true
}

// Dragging reports whether a drag session is active.
func (e *Engine) Dragging() bool { return e.session.Active }

// Destroy detaches the engine: pending frames and syncs are dropped, any
// drag ends and later calls are no-ops.
func (e *Engine) Destroy() {
	if e.dead {
		return
	}
	e.frames.Cancel()
	e.sync.Cancel()
	e.cancelResync()
	e.session.end()
	e.hovered = ""
	e.dead = true
	e.logger.Debug("editor destroyed")
}

// Payload snapshots the committed state.
func (e *Engine) Payload() region.Payload {
	return e.registry.Payload(e.canvas.Width, e.canvas.Height, e.output.Width, e.output.Height, e.selected)
}

// Load applies a saved payload. Nothing is pushed back out.
func (e *Engine) Load(saved *region.SavedPayload) {
	if e.dead || saved == nil {
		return
	}
	if saved.OutputWidth > 0 && saved.OutputHeight > 0 {
		e.setOutput(saved.OutputWidth, saved.OutputHeight)
	}
	n := e.registry.Load(saved.Regions)
	e.constrainAll()
	if _, ok := e.registry.Get(saved.Selected); ok {
		e.selected = saved.Selected
	}
	e.logger.Debug("loaded saved regions", "count", n)
	e.requestRedraw()
	e.sync.Flush()
}

// requestRedraw queues one frame that compiles the state current at frame
// time.
func (e *Engine) requestRedraw() {
	if e.dead || e.host == nil {
		return
	}
	e.frames.Schedule(func() {
		if e.dead {
			return
		}
		e.host.Redraw(e.Frame())
	})
}

// commit is the single mutation path: redraw, widget sync and bridge push.
func (e *Engine) commit() {
	e.requestRedraw()
	e.sync.Request()
	e.publish()
}

func (e *Engine) publish() {
	if e.publisher == nil || e.dead {
		return
	}
	defer logging.Recover(e.logger, "publish")
	e.publisher.Push(e.nodeID, e.Payload())
}

func (e *Engine) syncWidgets() {
	if e.dead || e.mirror == nil {
		return
	}
	r, ok := e.registry.Get(e.selected)
	if !ok {
		return
	}
	e.mirror.Push(r.Geometry)
}

func (e *Engine) armResync() {
	e.cancelResync()
	if e.variant.ResyncDelay <= 0 {
		return
	}
	e.resync = e.loop.AfterFunc(e.variant.ResyncDelay, func() {
		e.resync = nil
		if e.dead {
			return
		}
		defer logging.Recover(e.logger, "resync")
		e.syncWidgets()
		if e.host != nil {
			e.host.MarkDirty()
		}
	})
}

func (e *Engine) cancelResync() {
	if e.resync != nil {
		e.resync()
		e.resync = nil
	}
}

func (e *Engine) refit() {
	w, h := e.widgetW, e.widgetH
	if w <= 0 || h <= 0 {
		w, h = e.canvas.Width+2*e.variant.Margin, e.canvas.Height+2*e.variant.Margin
	}
	e.viewport = geometry.FitViewport(w, h, e.variant.Margin, e.canvas.Width, e.canvas.Height)
}

func (e *Engine) setOutput(w, h float64) {
	e.output = constraint.Extent{Width: w, Height: h}
	if e.variant.CanvasFollowsOutput {
		e.canvas = e.output
		e.refit()
	}
}

func (e *Engine) constrainAll() {
	e.registry.Each(func(r *region.Region) bool {
		r.Geometry = e.constrained(r.Geometry)
		return true
	})
}

// constrained rounds g to widget precision and clamps it to the canvas.
func (e *Engine) constrained(g region.Geometry) region.Geometry {
	g = e.variant.Ranges.Quantize(g)
	g.X, g.Y, g.Width, g.Height = constraint.Region(g.X, g.Y, g.Width, g.Height, e.variant.Limits, e.canvas)
	g.Rotation = geometry.NormalizeRotation(g.Rotation)
	return g
}
