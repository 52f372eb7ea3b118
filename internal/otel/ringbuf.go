package otel

import "sync"

// RingBuffer keeps the most recent events in memory for live inspection.
// Fixed capacity; old events are overwritten. Goroutine-safe.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	count int
}

// NewRingBuffer creates a buffer holding up to capacity events.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 256
	}
	return &RingBuffer{buf: make([]Event, capacity)}
}

// Push appends an event, evicting the oldest when full.
func (rb *RingBuffer) Push(e Event) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.buf[rb.next] = e
	rb.next = (rb.next + 1) % len(rb.buf)
	if rb.count < len(rb.buf) {
		rb.count++
	}
}

// Snapshot returns the buffered events, oldest first.
func (rb *RingBuffer) Snapshot() []Event {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	out := make([]Event, 0, rb.count)
	start := rb.next - rb.count
	if start < 0 {
		start += len(rb.buf)
	}
	for i := 0; i < rb.count; i++ {
		out = append(out, rb.buf[(start+i)%len(rb.buf)])
	}
	return out
}

// Len returns the number of buffered events.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}
