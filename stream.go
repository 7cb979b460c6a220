package autofsm

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Stream is a multi-subscriber broadcast of values of type T.
// Subscribers only see values published after they subscribed; there is no replay.
// Subscribe and Unsubscribe are safe from any goroutine, including from inside a handler.
type Stream[T any] struct {
	mu          sync.Mutex
	subscribers []*Subscription[T]
	onPanic     func(recovered any)
}

// Subscription is the handle returned by Subscribe
type Subscription[T any] struct {
	ID      uuid.UUID
	stream  *Stream[T]
	handler func(T)
	active  atomic.Bool
}

// NewStream creates an empty stream. onPanic, when not nil, receives values
// recovered from panicking handlers.
func NewStream[T any](onPanic func(recovered any)) *Stream[T] {
	return &Stream[T]{onPanic: onPanic}
}

// Subscribe registers handler for every value published from now on
func (s *Stream[T]) Subscribe(handler func(T)) *Subscription[T] {
	sub := &Subscription[T]{
		ID:      uuid.New(),
		stream:  s,
		handler: handler,
	}
	sub.active.Store(true)

	s.mu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	return sub
}

// SubscribeWhere registers handler for published values matching pred
func (s *Stream[T]) SubscribeWhere(pred func(T) bool, handler func(T)) *Subscription[T] {
	return s.Subscribe(func(v T) {
		if pred(v) {
			handler(v)
		}
	})
}

// Len returns the number of active subscriptions
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Publish delivers v to every subscriber in subscription order and returns
// once all of them ran. Handlers unsubscribed during delivery are skipped.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	subscribers := make([]*Subscription[T], len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subscribers {
		if !sub.active.Load() {
			continue
		}
		s.deliver(sub, v)
	}
}

func (s *Stream[T]) deliver(sub *Subscription[T], v T) {
	defer func() {
		if r := recover(); r != nil && s.onPanic != nil {
			s.onPanic(r)
		}
	}()
	sub.handler(v)
}

func (s *Stream[T]) remove(sub *Subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.subscribers {
		if existing == sub {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// Unsubscribe stops delivery to the handler. It is idempotent.
func (sub *Subscription[T]) Unsubscribe() {
	if sub == nil || !sub.active.CompareAndSwap(true, false) {
		return
	}
	sub.stream.remove(sub)
}

// Active reports whether the subscription still receives values
func (sub *Subscription[T]) Active() bool {
	return sub != nil && sub.active.Load()
}

// Close is an alias of Unsubscribe so a Subscription can be used as an io.Closer
func (sub *Subscription[T]) Close() error {
	sub.Unsubscribe()
	return nil
}
