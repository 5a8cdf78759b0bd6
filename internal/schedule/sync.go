package schedule

import (
	"log/slog"
	"time"

	"github.com/inamate/regionedit/internal/logging"
)

// DefaultSyncInterval matches one 60 Hz frame.
const DefaultSyncInterval = 16 * time.Millisecond

// SyncThrottler rate-limits a sync callback to one run per interval. A
// request inside the interval re-arms a single trailing timer, so the
// callback always observes the latest state when it finally runs.
type SyncThrottler struct {
	loop     Loop
	logger   *slog.Logger
	interval time.Duration
	fn       func()

	lastRun time.Time
	timer   Cancel
}

func NewSyncThrottler(loop Loop, interval time.Duration, fn func(), logger *slog.Logger) *SyncThrottler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &SyncThrottler{loop: loop, logger: logger, interval: interval, fn: fn}
}

// Request asks for a sync.
func (s *SyncThrottler) Request() {
	now := s.loop.Now()
	if s.timer == nil && (s.lastRun.IsZero() || now.Sub(s.lastRun) >= s.interval) {
		s.run(now)
		return
	}
	if s.timer != nil {
		s.timer()
	}
	s.timer = s.loop.AfterFunc(s.interval, func() {
		s.timer = nil
		s.run(s.loop.Now())
	})
}

// Flush runs the sync now and drops any pending timer.
func (s *SyncThrottler) Flush() {
	s.Cancel()
	s.run(s.loop.Now())
}

// Pending reports whether a trailing sync is armed.
func (s *SyncThrottler) Pending() bool { return s.timer != nil }

// Cancel drops the pending trailing sync.
func (s *SyncThrottler) Cancel() {
	if s.timer != nil {
		s.timer()
		s.timer = nil
	}
}

func (s *SyncThrottler) run(now time.Time) {
	s.lastRun = now
	defer logging.Recover(s.logger, "sync")
	s.fn()
}
