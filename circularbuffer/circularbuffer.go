package circularbuffer

import "sync"

// CircularBuffer keeps the most recent Cap elements pushed into it.
type CircularBuffer[T any] struct {
	values   []T
	position int
	full     bool
	mu       sync.Mutex
}

// New creates a buffer holding up to size elements. Sizes below one are
// treated as one.
func New[T any](size int) *CircularBuffer[T] {
	if size < 1 {
		size = 1
	}

	return &CircularBuffer[T]{
		values: make([]T, size),
	}
}

// Push stores element, overwriting the oldest one once the buffer is full.
func (cb *CircularBuffer[T]) Push(element T) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.values[cb.position] = element
	cb.position++

	if cb.position >= len(cb.values) {
		cb.position = 0
		cb.full = true
	}
}

// Each calls fn on every stored element, oldest first.
func (cb *CircularBuffer[T]) Each(fn func(T)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.each(fn)
}

func (cb *CircularBuffer[T]) each(fn func(T)) {
	start, n := 0, cb.position
	if cb.full {
		start, n = cb.position, len(cb.values)
	}

	for i := 0; i < n; i++ {
		fn(cb.values[(start+i)%len(cb.values)])
	}
}

// Slice returns a copy of the stored elements, oldest first.
func (cb *CircularBuffer[T]) Slice() []T {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	out := make([]T, 0, cb.len())
	cb.each(func(v T) {
		out = append(out, v)
	})
	return out
}

func (cb *CircularBuffer[T]) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.len()
}

func (cb *CircularBuffer[T]) len() int {
	if cb.full {
		return len(cb.values)
	}
	return cb.position
}

func (cb *CircularBuffer[T]) Cap() int {
	return len(cb.values)
}

// Reset drops every stored element.
func (cb *CircularBuffer[T]) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var zero T
	for i := range cb.values {
		cb.values[i] = zero
	}
	cb.position = 0
	cb.full = false
}
