package eventloop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/schedule"
)

// Serial runs every callback on the goroutine that called Run. Frames are
// flushed on a fixed ticker. Other goroutines hand work to it with Post.
type Serial struct {
	logger   *slog.Logger
	interval time.Duration
	calls    chan func()
	done     chan struct{}

	mu     sync.Mutex
	frames []*serialTask
}

type serialTask struct {
	fn        func()
	cancelled atomic.Bool
}

var _ schedule.Loop = (*Serial)(nil)

func NewSerial(frameInterval time.Duration, logger *slog.Logger) *Serial {
	if frameInterval <= 0 {
		frameInterval = FrameInterval
	}
	return &Serial{
		logger:   logger,
		interval: frameInterval,
		calls:    make(chan func(), 256),
		done:     make(chan struct{}),
	}
}

// Run processes posted calls and frames until ctx is cancelled.
func (s *Serial) Run(ctx context.Context) error {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.calls:
			s.invoke(fn, "call")
		case <-ticker.C:
			s.flushFrames()
		}
	}
}

// Post queues fn to run on the loop. It blocks while the queue is full and
// returns false once the loop has stopped.
func (s *Serial) Post(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case <-s.done:
		return false
	case s.calls <- fn:
		return true
	}
}

func (s *Serial) Now() time.Time { return time.Now() }

func (s *Serial) RequestFrame(fn func()) schedule.Cancel {
	t := &serialTask{fn: fn}
	s.mu.Lock()
	s.frames = append(s.frames, t)
	s.mu.Unlock()
	return func() { t.cancelled.Store(true) }
}

func (s *Serial) AfterFunc(d time.Duration, fn func()) schedule.Cancel {
	t := &serialTask{fn: fn}
	timer := time.AfterFunc(d, func() {
		s.Post(func() {
			if t.cancelled.Load() {
				return
			}
			t.fn()
		})
	})
	return func() {
		t.cancelled.Store(true)
		timer.Stop()
	}
}

func (s *Serial) flushFrames() {
	s.mu.Lock()
	queued := s.frames
	s.frames = nil
	s.mu.Unlock()

	for _, t := range queued {
		if t.cancelled.Swap(true) {
			continue
		}
		s.invoke(t.fn, "frame")
	}
}

func (s *Serial) invoke(fn func(), where string) {
	defer logging.Recover(s.logger, where)
	fn()
}
