package otel

// Goroutine safety:
// The drain goroutine is the sole reader of l.ch and the sole writer to l.w.
// Logger.mu protects only the l.buf pointer (read by drain, written by
// SetRingBuffer). The ring buffer's own mu handles concurrent Push/Snapshot
// calls. No nested lock acquisition occurs.

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// writerChanSize is the capacity of the async write channel.
// At ~200 bytes/event, 2048 events buffers ~400KB.
const writerChanSize = 2048

// logEntry carries both serialized bytes (for disk) and the original Event
// (for the ring buffer), so ring copies keep fields like Dur that are not
// serialized.
type logEntry struct {
	data []byte
	ev   Event
}

// Logger serializes events as JSONL via an async background writer.
// Goroutine-safe. All emitted events flow through a buffered channel
// to a drain goroutine that writes to disk and pushes to the ring buffer.
type Logger struct {
	mu        sync.Mutex
	buf       *RingBuffer // nil until SetRingBuffer
	sessionID string      // random hex, set once at creation
	ch        chan logEntry
	w         io.Writer
	dropped   atomic.Uint64 // events dropped: full channel, encode or write failure
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewLogger creates a Logger writing JSONL to w asynchronously.
// Starts a background drain goroutine. Call Close() to flush and stop.
func NewLogger(w io.Writer) *Logger {
	var sid [8]byte
	_, _ = rand.Read(sid[:])

	l := &Logger{
		sessionID: fmt.Sprintf("%x", sid[:]),
		ch:        make(chan logEntry, writerChanSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go l.drain()
	return l
}

// NewNullLogger creates a Logger that discards output.
// Callers should still call Close() to stop the drain goroutine.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

// SetRingBuffer attaches a ring buffer that receives every emitted event.
func (l *Logger) SetRingBuffer(rb *RingBuffer) {
	l.mu.Lock()
	l.buf = rb
	l.mu.Unlock()
}

// SessionID returns the random session identifier stamped on every event.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Dropped returns the number of events lost since creation.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// drain reads from ch and writes to disk + ring buffer.
func (l *Logger) drain() {
	defer close(l.done)
	for entry := range l.ch {
		if _, err := l.w.Write(entry.data); err != nil {
			l.dropped.Add(1)
		}

		l.mu.Lock()
		rb := l.buf
		l.mu.Unlock()

		if rb != nil {
			rb.Push(entry.ev)
		}
	}
}

// Emit writes an event to the JSONL log (and ring buffer if attached).
// Sets Time (if zero) and SessionID. Goroutine-safe. Non-blocking: if the
// channel is full or the logger is closed, the event is dropped and the
// drop counter is incremented.
//
// Safe to call concurrently with Close(). If Close() races between the
// closed-flag check and the channel send, the resulting panic is recovered
// and the event is counted as dropped.
func (l *Logger) Emit(e Event) {
	defer func() {
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()

	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.sessionID

	data, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	data = append(data, '\n')

	select {
	case l.ch <- logEntry{data: data, ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Close marks the logger closed, flushes pending events, and stops the
// drain goroutine. Idempotent.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		<-l.done
	})
}
