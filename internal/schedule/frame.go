package schedule

import (
	"log/slog"

	"github.com/inamate/regionedit/internal/logging"
)

// FrameThrottler keeps at most one redraw pending per animation frame. A
// newer callback replaces the pending one.
type FrameThrottler struct {
	loop    Loop
	logger  *slog.Logger
	pending func()
	cancel  Cancel
}

func NewFrameThrottler(loop Loop, logger *slog.Logger) *FrameThrottler {
	return &FrameThrottler{loop: loop, logger: logger}
}

// Schedule queues fn for the next frame.
func (t *FrameThrottler) Schedule(fn func()) {
	t.pending = fn
	if t.cancel != nil {
		return
	}
	t.cancel = t.loop.RequestFrame(t.run)
}

// Pending reports whether a frame is queued.
func (t *FrameThrottler) Pending() bool { return t.cancel != nil }

func (t *FrameThrottler) run() {
	fn := t.pending
	t.pending = nil
	t.cancel = nil
	if fn == nil {
		return
	}
	defer logging.Recover(t.logger, "frame")
	fn()
}

// Cancel drops the pending frame, if any.
func (t *FrameThrottler) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = nil
	t.pending = nil
}
