package executor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/anggasct/autofsm/internal/goid"
)

// Loop runs callbacks on one dedicated goroutine in the order they were posted.
// All methods are safe for concurrent use.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake   chan struct{}
	done   chan struct{}
	gid    atomic.Uint64
	logger *slog.Logger
}

// NewLoop starts a loop goroutine. Call Close to stop it.
func NewLoop(opts ...Option) *Loop {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	l := &Loop{
		pending: make([]func(), 0, cfg.capacity),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  cfg.logger,
	}

	ready := make(chan struct{})
	go l.run(ready)
	<-ready

	return l
}

// IsOnExecutor reports whether the caller runs on the loop goroutine
func (l *Loop) IsOnExecutor() bool {
	return goid.Get() == l.gid.Load()
}

// RunOnExecutor runs fn inline when called from the loop goroutine and posts it otherwise
func (l *Loop) RunOnExecutor(fn func()) {
	if l.IsOnExecutor() {
		l.invoke(fn)
		return
	}
	if err := l.Post(fn); err != nil {
		l.logger.Warn("dropping callback posted to closed loop")
	}
}

// Post queues fn without running it inline, even when called from the loop goroutine
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call runs fn on the loop and waits for it to return or for ctx to end.
// Called from the loop goroutine it runs fn inline.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	if l.IsOnExecutor() {
		l.invoke(fn)
		return nil
	}

	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting callbacks, runs the ones already posted and waits
// for the loop goroutine to exit. Called from the loop goroutine it does not wait.
// Close is idempotent.
func (l *Loop) Close() error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}
	l.mu.Unlock()

	if l.IsOnExecutor() {
		return nil
	}
	<-l.done
	return nil
}

// Done is closed once the loop goroutine has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of callbacks waiting to run
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Loop) run(ready chan<- struct{}) {
	defer close(l.done)

	l.gid.Store(goid.Get())
	close(ready)

	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		closed := l.closed
		l.mu.Unlock()

		for i, fn := range batch {
			batch[i] = nil
			l.invoke(fn)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked", slog.Any("panic", r))
		}
	}()
	fn()
}
