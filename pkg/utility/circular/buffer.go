package circular

// Buffer keeps the last capacity values, Get(0) being the most recent one
type Buffer[T any] struct {
	capacity uint

	head uint
	size uint
	data []T
}

func NewBuffer[T any](capacity uint) *Buffer[T] {
	if capacity == 0 {
		panic("capacity must > 0")
	}
	return &Buffer[T]{
		capacity: capacity,
		data:     make([]T, capacity),
	}
}

func (b *Buffer[T]) Capacity() uint {
	return b.capacity
}

func (b *Buffer[T]) Size() uint {
	return b.size
}

func (b *Buffer[T]) IsEmpty() bool {
	return b.size == 0
}

func (b *Buffer[T]) IsFull() bool {
	return b.size == b.capacity
}

func (b *Buffer[T]) Push(value T) {
	b.data[b.head] = value
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

func (b *Buffer[T]) Get(idx uint) T {
	if idx >= b.size {
		panic("index out of range")
	}
	return b.data[(b.head+b.capacity-1-idx)%b.capacity]
}

// First returns the most recently pushed value
func (b *Buffer[T]) First() T {
	return b.Get(0)
}

// Last returns the oldest value still kept
func (b *Buffer[T]) Last() T {
	return b.Get(b.size - 1)
}

// Data copies the content ordered from the oldest to the most recent value
func (b *Buffer[T]) Data() []T {
	out := make([]T, b.size)
	for i := uint(0); i < b.size; i++ {
		out[i] = b.Get(b.size - 1 - i)
	}
	return out
}
