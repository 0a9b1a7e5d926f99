package sim

import "sync"

// FIFO is a first-in-first-out queue. It can optionally be limited in size. If it is limited, then when the queue is
// full, the oldest items will be removed to make room for new items.
type FIFO[T any] struct {
	values []T
	limit  int
	mu     sync.Mutex
}

func (fifo *FIFO[T]) Push(value ...T) {
	fifo.mu.Lock()
	defer fifo.mu.Unlock()
	fifo.values = append(fifo.values, value...)
	if over := len(fifo.values) - fifo.limit; fifo.limit > 0 && over > 0 {
		fifo.values = append([]T(nil), fifo.values[over:]...)
	}
}

func (fifo *FIFO[T]) Pop(n int) []T {
	fifo.mu.Lock()
	defer fifo.mu.Unlock()
	if n > len(fifo.values) {
		n = len(fifo.values)
	}
	values := fifo.values[:n:n]
	fifo.values = fifo.values[n:]
	return values
}

// Values returns a copy of the queued items, oldest first.
func (fifo *FIFO[T]) Values() []T {
	fifo.mu.Lock()
	defer fifo.mu.Unlock()
	return append([]T(nil), fifo.values...)
}

func (fifo *FIFO[T]) Len() int {
	fifo.mu.Lock()
	defer fifo.mu.Unlock()
	return len(fifo.values)
}

func (fifo *FIFO[T]) Clear() {
	fifo.mu.Lock()
	defer fifo.mu.Unlock()
	fifo.values = nil
}

func NewFIFO[T any](limit int) *FIFO[T] {
	return &FIFO[T]{
		limit: limit,
	}
}
