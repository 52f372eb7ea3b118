package otel

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEmitWritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSearchStart, Level: LevelInfo, Comp: "search"})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "search.start" {
		t.Errorf("expected kind=search.start, got %v", decoded["kind"])
	}
	if decoded["level"] != "info" {
		t.Errorf("expected level=info, got %v", decoded["level"])
	}
	if decoded["comp"] != "search" {
		t.Errorf("expected comp=search, got %v", decoded["comp"])
	}
}

func TestEmitSetsTimeAndSessionID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", ev.Time, before, after)
	}
	if len(ev.SessionID) != 16 {
		t.Errorf("session_id should be 16 hex chars, got %d: %q", len(ev.SessionID), ev.SessionID)
	}
}

func TestDurToMs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSearchComplete, Dur: 1500 * time.Millisecond})
	l.Close()

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	durMs, ok := decoded["dur_ms"].(float64)
	if !ok {
		t.Fatal("dur_ms not present or not float64")
	}
	if durMs != 1500 {
		t.Errorf("expected dur_ms=1500, got %v", durMs)
	}
}

func TestOmitempty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := strings.TrimSpace(buf.String())
	for _, field := range []string{"dur_ms", "count", "video_id", "frame", "event_idx", "score", "query", "err", "msg", "qid"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("expected field %q to be omitted, but found in: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindPivotSelect, Comp: "search"})
		}()
	}
	wg.Wait()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 lines, got %d", len(lines))
	}
}

func TestEmitAfterCloseDrops(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Close()

	l.Emit(Event{Kind: KindStartup})
	if l.Dropped() == 0 {
		t.Error("emit after close should increment dropped counter")
	}
}

func TestRingBufferReceivesEvents(t *testing.T) {
	l := NewNullLogger()
	rb := NewRingBuffer(8)
	l.SetRingBuffer(rb)

	l.Emit(Event{Kind: KindSequenceBuild, Count: 3})
	l.Close()

	events := rb.Snapshot()
	if len(events) != 1 {
		t.Fatalf("ring buffer has %d events, want 1", len(events))
	}
	if events[0].Kind != KindSequenceBuild || events[0].Count != 3 {
		t.Errorf("ring event = %+v", events[0])
	}
}
