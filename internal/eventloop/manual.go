// Package eventloop provides schedule.Loop implementations for hosts that do
// not bring their own: a virtual-clock loop for tests and replays, and a
// goroutine-owned loop for native hosts.
package eventloop

import (
	"sort"
	"time"

	"github.com/inamate/regionedit/internal/schedule"
)

// FrameInterval is the 60 Hz repaint period.
const FrameInterval = time.Second / 60

type task struct {
	due       time.Time
	seq       int
	fn        func()
	cancelled bool
}

// Manual is a loop whose clock only moves when the caller advances it.
// Frames run on Frame and timers fire on Advance. It is not safe for
// concurrent use.
type Manual struct {
	now    time.Time
	seq    int
	frames []*task
	timers []*task
}

var _ schedule.Loop = (*Manual)(nil)

// NewManual starts the virtual clock at start, or at the Unix epoch when
// start is zero.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) RequestFrame(fn func()) schedule.Cancel {
	m.seq++
	t := &task{seq: m.seq, fn: fn}
	m.frames = append(m.frames, t)
	return func() { t.cancelled = true }
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) schedule.Cancel {
	m.seq++
	t := &task{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// Frame runs the frames requested so far. Frames requested while running
// wait for the next call. It returns how many callbacks ran.
func (m *Manual) Frame() int {
	queued := m.frames
	m.frames = nil
	n := 0
	for _, t := range queued {
		if t.cancelled {
			continue
		}
		t.cancelled = true
		t.fn()
		n++
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in order. The
// clock reads each timer's due time while it runs.
func (m *Manual) Advance(d time.Duration) int {
	end := m.now.Add(d)
	n := 0
	for {
		t := m.nextDue(end)
		if t == nil {
			break
		}
		m.now = t.due
		t.cancelled = true
		t.fn()
		n++
	}
	m.now = end
	return n
}

// Tick advances one frame interval and then runs the frame.
func (m *Manual) Tick() {
	m.Advance(FrameInterval)
	m.Frame()
}

// PendingFrames reports queued, uncancelled frame callbacks.
func (m *Manual) PendingFrames() int { return countLive(m.frames) }

// PendingTimers reports armed, uncancelled timers.
func (m *Manual) PendingTimers() int {
	m.compact()
	return len(m.timers)
}

func (m *Manual) nextDue(end time.Time) *task {
	m.compact()
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	if m.timers[0].due.After(end) {
		return nil
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	return t
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.timers = live
}

func countLive(tasks []*task) int {
	n := 0
	for _, t := range tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
