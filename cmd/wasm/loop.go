//go:build js && wasm

package main

import (
	"time"

	"syscall/js"

	"github.com/inamate/regionedit/internal/schedule"
)

// browserLoop schedules on the page's event loop with requestAnimationFrame
// and setTimeout, so engine callbacks run on the same thread as the host's
// pointer handlers.
type browserLoop struct{}

var _ schedule.Loop = browserLoop{}

func (browserLoop) Now() time.Time { return time.Now() }

func (browserLoop) RequestFrame(fn func()) schedule.Cancel {
	return schedulePage("requestAnimationFrame", "cancelAnimationFrame", fn)
}

func (browserLoop) AfterFunc(d time.Duration, fn func()) schedule.Cancel {
	return schedulePage("setTimeout", "clearTimeout", fn, d.Milliseconds())
}

// schedulePage registers fn with a one-shot page scheduler. The js.Func is
// released exactly once, whether it fires or is cancelled.
func schedulePage(start, stop string, fn func(), extra ...any) schedule.Cancel {
	var (
		cb       js.Func
		finished bool
	)
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		if finished {
			return nil
		}
		finished = true
		cb.Release()
		fn()
		return nil
	})
	id := js.Global().Call(start, append([]any{cb}, extra...)...)
	return func() {
		if finished {
			return
		}
		finished = true
		js.Global().Call(stop, id)
		cb.Release()
	}
}
