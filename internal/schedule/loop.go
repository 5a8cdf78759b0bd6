// Package schedule coalesces high-frequency editor mutations into bounded
// redraws and widget syncs. Throttlers are driven by a Loop and, like the
// engine that owns them, must only be used from that loop.
package schedule

import "time"

// Cancel stops a scheduled callback. Calling it after the callback ran, or
// more than once, is a no-op.
type Cancel func()

// Loop is the host event loop the editor runs on.
type Loop interface {
	// RequestFrame runs fn before the next repaint.
	RequestFrame(fn func()) Cancel
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Cancel
	Now() time.Time
}
