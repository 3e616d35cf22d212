// Package rollbuf implements a bounded history which drops its oldest entry
// when full.
package rollbuf

// Buffer is a fixed capacity FIFO. It is not safe for concurrent use.
type Buffer[T any] struct {
	items []T
	head  int // index of the oldest entry, once the buffer is full
}

// New creates an empty buffer. A capacity below 1 is raised to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, 0, capacity)}
}

// Add appends item. If the buffer is full, the oldest entry is evicted.
func (b *Buffer[T]) Add(item T) {
	if len(b.items) < cap(b.items) {
		b.items = append(b.items, item)
		return
	}
	b.items[b.head] = item
	b.head = (b.head + 1) % len(b.items)
}

// Values returns a copy of the entries, oldest first.
func (b *Buffer[T]) Values() []T {
	out := make([]T, 0, len(b.items))
	out = append(out, b.items[b.head:]...)
	return append(out, b.items[:b.head]...)
}

// Len returns the number of entries.
func (b *Buffer[T]) Len() int { return len(b.items) }

// Cap returns the capacity.
func (b *Buffer[T]) Cap() int { return cap(b.items) }
