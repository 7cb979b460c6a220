package executor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anggasct/autofsm/internal/goid"
)

// Queue collects callbacks until the host drains them. The goroutine that
// calls Drain is the executor for as long as the drain lasts.
type Queue struct {
	mu      sync.Mutex
	pending []func()

	drainer atomic.Uint64
	logger  *slog.Logger
}

// NewQueue creates an empty queue
func NewQueue(opts ...Option) *Queue {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Queue{
		pending: make([]func(), 0, cfg.capacity),
		logger:  cfg.logger,
	}
}

// IsOnExecutor reports whether the caller is currently draining the queue
func (q *Queue) IsOnExecutor() bool {
	id := q.drainer.Load()
	return id != 0 && id == goid.Get()
}

// RunOnExecutor runs fn inline while draining and queues it otherwise
func (q *Queue) RunOnExecutor(fn func()) {
	if q.IsOnExecutor() {
		q.invoke(fn)
		return
	}
	q.Post(fn)
}

// Post queues fn
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Pending returns the number of queued callbacks
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs queued callbacks on the calling goroutine until the queue is
// empty, including callbacks queued while draining, and returns how many ran.
// A Drain that overlaps another one, or is nested inside a callback, returns 0.
func (q *Queue) Drain() int {
	if !q.drainer.CompareAndSwap(0, goid.Get()) {
		return 0
	}
	defer q.drainer.Store(0)

	ran := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.invoke(fn)
		ran++
	}
}

// DrainUntil drains the queue every interval until cond holds or ctx ends.
// cond is checked on the calling goroutine right after each drain. The first
// drain happens immediately, so a condition that already holds returns nil
// whatever the interval.
func (q *Queue) DrainUntil(ctx context.Context, interval time.Duration, cond func() bool) error {
	q.Drain()
	if cond() {
		return nil
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		q.Drain()
		if cond() {
			return nil
		}
	}
}

func (q *Queue) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queued callback panicked", slog.Any("panic", r))
		}
	}()
	fn()
}
