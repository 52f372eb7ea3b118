package similarity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/abelbrown/frameseq/internal/model"
)

type fakeMatrix struct {
	calls atomic.Int64
	fail  bool
	score float64
}

func (f *fakeMatrix) Name() string { return "fake-matrix" }

func (f *fakeMatrix) Matrix(ctx context.Context, frameIDs []int64, queries []string) (*model.SimilarityMatrix, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("matrix unavailable")
	}
	m := model.NewSimilarityMatrix(len(queries), len(frameIDs))
	for qi := range queries {
		for fi := range frameIDs {
			m.Scores[qi][fi] = f.score
		}
	}
	return m, nil
}

type fakePairs struct {
	calls atomic.Int64
	fail  bool
	score float64
}

func (f *fakePairs) Name() string { return "fake-pairs" }

func (f *fakePairs) Pair(ctx context.Context, frameID int64, text string) (float64, error) {
	f.calls.Add(1)
	if f.fail {
		return 0, errors.New("pair unavailable")
	}
	return f.score, nil
}

func testFrames(n int) []model.Frame {
	frames := make([]model.Frame, n)
	for i := range frames {
		frames[i] = model.Frame{ID: int64(i + 1), VideoID: "v", KeyframeN: (i + 1) * 10, Similarity: 0.8}
	}
	return frames
}

func TestWindowMatrixBatchPath(t *testing.T) {
	fm := &fakeMatrix{score: 0.7}
	fp := &fakePairs{score: 0.9}
	r := NewResolver(fm, fp, NewCache(), 4, 0, nil)

	m := r.WindowMatrix(context.Background(), testFrames(3), []string{"a", "b"})
	if m.Events() != 2 || m.Frames() != 3 {
		t.Fatalf("matrix shape = %dx%d", m.Events(), m.Frames())
	}
	if m.At(1, 2) != 0.7 {
		t.Errorf("At(1,2) = %v, want 0.7", m.At(1, 2))
	}
	if fp.calls.Load() != 0 {
		t.Errorf("pair provider called %d times on batch path", fp.calls.Load())
	}
	// batch results populate the cache
	if score, ok := r.Cache().Get(2, "b"); !ok || score != 0.7 {
		t.Errorf("cache miss after batch: %v %v", score, ok)
	}
}

func TestWindowMatrixFallsBackToPairs(t *testing.T) {
	fm := &fakeMatrix{fail: true}
	fp := &fakePairs{score: 0.55}
	r := NewResolver(fm, fp, NewCache(), 4, 0, nil)

	m := r.WindowMatrix(context.Background(), testFrames(2), []string{"a"})
	if m.At(0, 0) != 0.55 || m.At(0, 1) != 0.55 {
		t.Errorf("fallback scores = %v %v, want 0.55", m.At(0, 0), m.At(0, 1))
	}
	if fp.calls.Load() != 2 {
		t.Errorf("pair calls = %d, want 2", fp.calls.Load())
	}
}

func TestWindowMatrixConservativeWhenAllFail(t *testing.T) {
	fm := &fakeMatrix{fail: true}
	fp := &fakePairs{fail: true}
	r := NewResolver(fm, fp, NewCache(), 4, 0, nil)

	frames := testFrames(2) // Similarity 0.8
	m := r.WindowMatrix(context.Background(), frames, []string{"a"})
	if m.At(0, 0) != 0.4 {
		t.Errorf("conservative score = %v, want 0.4", m.At(0, 0))
	}
	// estimates are not cached
	if _, ok := r.Cache().Get(1, "a"); ok {
		t.Error("conservative estimate was cached")
	}
}

func TestWindowMatrixUsesCache(t *testing.T) {
	fm := &fakeMatrix{fail: true}
	fp := &fakePairs{score: 0.6}
	cache := NewCache()
	cache.Put(1, "a", 0.99)
	r := NewResolver(fm, fp, cache, 4, 0, nil)

	m := r.WindowMatrix(context.Background(), testFrames(2), []string{"a"})
	if m.At(0, 0) != 0.99 {
		t.Errorf("cached score = %v, want 0.99", m.At(0, 0))
	}
	if fp.calls.Load() != 1 {
		t.Errorf("pair calls = %d, want 1 (one cache hit)", fp.calls.Load())
	}
}

func TestPairScoreDegradation(t *testing.T) {
	fp := &fakePairs{fail: true}
	r := NewResolver(nil, fp, NewCache(), 4, 0, nil)

	frame := model.Frame{ID: 7, KeyframeN: 70, Similarity: 0.6}
	if got := r.PairScore(context.Background(), frame, "x"); got != 0.3 {
		t.Errorf("PairScore = %v, want 0.3", got)
	}

	fp.fail = false
	fp.score = 0.82
	if got := r.PairScore(context.Background(), frame, "x"); got != 0.82 {
		t.Errorf("PairScore = %v, want 0.82", got)
	}
	// second call served from cache
	before := fp.calls.Load()
	r.PairScore(context.Background(), frame, "x")
	if fp.calls.Load() != before {
		t.Error("cache not consulted on repeat lookup")
	}
}

func TestCacheNormalization(t *testing.T) {
	c := NewCache()
	c.Put(1, "A Dog  Jumps", 0.5)
	if score, ok := c.Get(1, "a dog jumps"); !ok || score != 0.5 {
		t.Errorf("normalized lookup = %v %v", score, ok)
	}
	if _, ok := c.Get(2, "a dog jumps"); ok {
		t.Error("different frame id should miss")
	}
}
