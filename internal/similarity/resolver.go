package similarity

import (
	"context"
	"sync"
	"time"

	"github.com/abelbrown/frameseq/internal/model"
	"github.com/abelbrown/frameseq/internal/otel"
)

// Resolver produces similarity scores through a degradation chain:
// session cache, then one batched matrix call, then bounded concurrent
// pair calls, and finally a conservative local estimate. It never fails;
// every lookup yields some score.
type Resolver struct {
	matrix     MatrixProvider
	pairs      PairProvider
	cache      *Cache
	groupSize  int
	groupDelay time.Duration
	events     *otel.Logger
}

// NewResolver wires a resolver. matrix may be nil, forcing the pair path.
func NewResolver(matrix MatrixProvider, pairs PairProvider, cache *Cache, groupSize int, groupDelay time.Duration, events *otel.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if groupSize <= 0 {
		groupSize = 10
	}
	return &Resolver{
		matrix:     matrix,
		pairs:      pairs,
		cache:      cache,
		groupSize:  groupSize,
		groupDelay: groupDelay,
		events:     events,
	}
}

// Cache exposes the session cache, shared across resolver calls.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// WindowMatrix scores every frame in a window against every query text.
// The batched matrix call is attempted first; if it fails, missing cells
// are filled by individual pair calls, and a pair failure degrades that
// cell to half the frame's retrieval similarity.
func (r *Resolver) WindowMatrix(ctx context.Context, frames []model.Frame, queries []string) *model.SimilarityMatrix {
	if len(frames) == 0 || len(queries) == 0 {
		return model.NewSimilarityMatrix(len(queries), len(frames))
	}

	if r.matrix != nil {
		frameIDs := make([]int64, len(frames))
		for i, f := range frames {
			frameIDs[i] = f.ID
		}

		start := time.Now()
		m, err := r.matrix.Matrix(ctx, frameIDs, queries)
		if err == nil {
			for qi, q := range queries {
				for fi, f := range frames {
					r.cache.Put(f.ID, q, m.Scores[qi][fi])
				}
			}
			r.emit(otel.Event{
				Level: otel.LevelDebug,
				Kind:  otel.KindMatrixBatch,
				Comp:  "similarity",
				Count: len(frames) * len(queries),
				Dur:   time.Since(start),
			})
			return m
		}

		r.emit(otel.Event{
			Level: otel.LevelWarn,
			Kind:  otel.KindMatrixFallback,
			Comp:  "similarity",
			Count: len(frames) * len(queries),
			Err:   err.Error(),
		})
	}

	return r.pairMatrix(ctx, frames, queries)
}

// PairScore scores one (frame, text) pair: cache, then the pair provider,
// then the conservative estimate. Used for pivot verification where a
// single score is needed without a window.
func (r *Resolver) PairScore(ctx context.Context, frame model.Frame, text string) float64 {
	if score, ok := r.cache.Get(frame.ID, text); ok {
		return score
	}

	if r.pairs != nil {
		score, err := r.pairs.Pair(ctx, frame.ID, text)
		if err == nil {
			r.cache.Put(frame.ID, text, score)
			return score
		}
		r.emit(otel.Event{
			Level: otel.LevelWarn,
			Kind:  otel.KindPairFallback,
			Comp:  "similarity",
			Frame: frame.KeyframeN,
			Err:   err.Error(),
		})
	}

	return conservative(frame)
}

// cell identifies one matrix position pending a pair call.
type cell struct {
	qi, fi int
}

// pairMatrix fills a matrix cell by cell. Cache hits are free; the rest
// go to the pair provider in bounded concurrent groups with a pacing
// delay between groups, so a degraded service is not hammered.
func (r *Resolver) pairMatrix(ctx context.Context, frames []model.Frame, queries []string) *model.SimilarityMatrix {
	out := model.NewSimilarityMatrix(len(queries), len(frames))

	var pending []cell
	for qi, q := range queries {
		for fi, f := range frames {
			if score, ok := r.cache.Get(f.ID, q); ok {
				out.Scores[qi][fi] = score
			} else {
				pending = append(pending, cell{qi: qi, fi: fi})
			}
		}
	}

	for off := 0; off < len(pending); off += r.groupSize {
		end := min(off+r.groupSize, len(pending))
		group := pending[off:end]

		var wg sync.WaitGroup
		for _, c := range group {
			wg.Add(1)
			go func(c cell) {
				defer wg.Done()
				frame := frames[c.fi]
				query := queries[c.qi]

				if r.pairs != nil {
					score, err := r.pairs.Pair(ctx, frame.ID, query)
					if err == nil {
						r.cache.Put(frame.ID, query, score)
						out.Scores[c.qi][c.fi] = score
						return
					}
					r.emit(otel.Event{
						Level: otel.LevelWarn,
						Kind:  otel.KindPairFallback,
						Comp:  "similarity",
						Frame: frame.KeyframeN,
						Err:   err.Error(),
					})
				}

				// Estimate only; deliberately not cached so a recovered
				// service can replace it on the next lookup.
				out.Scores[c.qi][c.fi] = conservative(frame)
			}(c)
		}
		wg.Wait()

		if end < len(pending) && r.groupDelay > 0 {
			select {
			case <-ctx.Done():
				for _, c := range pending[end:] {
					out.Scores[c.qi][c.fi] = conservative(frames[c.fi])
				}
				return out
			case <-time.After(r.groupDelay):
			}
		}
	}

	return out
}

// conservative is the last-resort estimate when no provider can score a
// pair: half the frame's retrieval similarity. Deterministic so repeated
// degraded runs rank identically.
func conservative(frame model.Frame) float64 {
	return frame.Similarity / 2
}

func (r *Resolver) emit(e otel.Event) {
	if r.events != nil {
		r.events.Emit(e)
	}
}
