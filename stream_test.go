package autofsm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Publish(t *testing.T) {
	t.Run("delivers in subscription order", func(t *testing.T) {
		s := NewStream[int](nil)
		var got []string
		s.Subscribe(func(v int) { got = append(got, "first") })
		s.Subscribe(func(v int) { got = append(got, "second") })

		s.Publish(1)

		assert.Equal(t, []string{"first", "second"}, got)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("no replay for late subscribers", func(t *testing.T) {
		s := NewStream[int](nil)
		s.Publish(1)

		var got []int
		s.Subscribe(func(v int) { got = append(got, v) })
		s.Publish(2)

		assert.Equal(t, []int{2}, got)
	})

	t.Run("filtered subscription", func(t *testing.T) {
		s := NewStream[int](nil)
		var even []int
		s.SubscribeWhere(func(v int) bool { return v%2 == 0 }, func(v int) { even = append(even, v) })

		for i := 1; i <= 6; i++ {
			s.Publish(i)
		}

		assert.Equal(t, []int{2, 4, 6}, even)
	})

	t.Run("panicking handler does not stop delivery", func(t *testing.T) {
		var recovered []any
		s := NewStream[int](func(r any) { recovered = append(recovered, r) })

		delivered := 0
		s.Subscribe(func(int) { panic("bad handler") })
		s.Subscribe(func(int) { delivered++ })

		assert.NotPanics(t, func() { s.Publish(1) })
		assert.Equal(t, 1, delivered)
		assert.Equal(t, []any{"bad handler"}, recovered)
	})

	t.Run("panic without handler is swallowed", func(t *testing.T) {
		s := NewStream[int](nil)
		s.Subscribe(func(int) { panic("ignored") })

		assert.NotPanics(t, func() { s.Publish(1) })
	})
}

func TestStream_Unsubscribe(t *testing.T) {
	t.Run("stops delivery and is idempotent", func(t *testing.T) {
		s := NewStream[int](nil)
		count := 0
		sub := s.Subscribe(func(int) { count++ })

		s.Publish(1)
		sub.Unsubscribe()
		sub.Unsubscribe()
		s.Publish(2)

		assert.Equal(t, 1, count)
		assert.False(t, sub.Active())
		assert.Zero(t, s.Len())
	})

	t.Run("handler may unsubscribe itself during delivery", func(t *testing.T) {
		s := NewStream[int](nil)
		var got []int
		var sub *Subscription[int]
		sub = s.Subscribe(func(v int) {
			got = append(got, v)
			sub.Unsubscribe()
		})
		other := 0
		s.Subscribe(func(int) { other++ })

		s.Publish(1)
		s.Publish(2)

		assert.Equal(t, []int{1}, got)
		assert.Equal(t, 2, other)
	})

	t.Run("handler unsubscribing a later subscriber skips it", func(t *testing.T) {
		s := NewStream[int](nil)
		var later *Subscription[int]
		s.Subscribe(func(int) { later.Unsubscribe() })
		called := false
		later = s.Subscribe(func(int) { called = true })

		s.Publish(1)

		assert.False(t, called)
	})

	t.Run("handler subscribing during delivery waits for the next value", func(t *testing.T) {
		s := NewStream[int](nil)
		var late []int
		once := sync.Once{}
		s.Subscribe(func(int) {
			once.Do(func() {
				s.Subscribe(func(v int) { late = append(late, v) })
			})
		})

		s.Publish(1)
		s.Publish(2)

		assert.Equal(t, []int{2}, late)
	})

	t.Run("close implements io.Closer", func(t *testing.T) {
		s := NewStream[int](nil)
		sub := s.Subscribe(func(int) {})

		require.NoError(t, sub.Close())
		assert.False(t, sub.Active())

		var nilSub *Subscription[int]
		assert.NotPanics(t, nilSub.Unsubscribe)
		assert.False(t, nilSub.Active())
	})
}

func TestStream_Concurrency(t *testing.T) {
	s := NewStream[int](nil)
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := s.Subscribe(func(v int) {
				mu.Lock()
				total += v
				mu.Unlock()
			})
			s.Publish(1)
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	assert.Zero(t, s.Len())
	assert.Positive(t, total)
}
