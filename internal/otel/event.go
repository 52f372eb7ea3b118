// Package otel provides structured observability for frameseq.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain
// goroutine. An optional RingBuffer provides live in-memory inspection.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Search pipeline events
	KindSearchStart      EventKind = "search.start"
	KindSearchCandidates EventKind = "search.candidates"
	KindSearchComplete   EventKind = "search.complete"
	KindSearchError      EventKind = "search.error"

	// Per-candidate events
	KindPivotSelect    EventKind = "pivot.select"
	KindPivotSkip      EventKind = "pivot.skip"
	KindWindowExpand   EventKind = "window.expand"
	KindWindowError    EventKind = "window.error"
	KindSequenceBuild  EventKind = "sequence.build"
	KindSequenceReject EventKind = "sequence.reject"

	// Similarity provider events
	KindMatrixBatch    EventKind = "matrix.batch"
	KindMatrixFallback EventKind = "matrix.fallback"
	KindPairFallback   EventKind = "pair.fallback"

	// Store events
	KindStoreError EventKind = "store.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      EventKind     `json:"kind"`
	Comp      string        `json:"comp,omitempty"`       // component: "search", "similarity", "store"
	SessionID string        `json:"session_id,omitempty"` // random hex, same for one session
	QueryID   string        `json:"qid,omitempty"`        // search correlation ID
	Dur       time.Duration `json:"-"`                    // not serialized directly
	DurMs     float64       `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	VideoID   string        `json:"video_id,omitempty"`
	Frame     int           `json:"frame,omitempty"` // keyframe number
	EventIdx  int           `json:"event_idx,omitempty"`
	Count     int           `json:"count,omitempty"`
	Score     float64       `json:"score,omitempty"`
	Query     string        `json:"query,omitempty"`
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"`
}

// MarshalJSON computes DurMs from Dur before serializing.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event // avoid recursion
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur.Microseconds()) / 1000.0
	}
	return json.Marshal(a)
}
