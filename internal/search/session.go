// Package search runs temporal sequence searches end to end: query
// composition, candidate retrieval, and per-candidate pivot selection,
// window expansion, sequence building, validation, scoring, and ranking.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/abelbrown/frameseq/internal/config"
	"github.com/abelbrown/frameseq/internal/logging"
	"github.com/abelbrown/frameseq/internal/model"
	"github.com/abelbrown/frameseq/internal/otel"
	"github.com/abelbrown/frameseq/internal/query"
	"github.com/abelbrown/frameseq/internal/sequence"
	"github.com/abelbrown/frameseq/internal/similarity"
)

// Retriever is the candidate-retrieval surface of the external service.
type Retriever interface {
	SearchText(ctx context.Context, query string, topK int, videoID string) ([]model.Frame, error)
	VideoFrames(ctx context.Context, videoID string) ([]model.Frame, error)
}

// FrameSource lists a video's frames. Satisfied by both the HTTP client
// and the local sqlite store.
type FrameSource interface {
	VideoFrames(ctx context.Context, videoID string) ([]model.Frame, error)
}

// Session owns one search's state: a config snapshot taken at creation,
// a fresh similarity cache, and a per-run frame cache. Sessions are
// independent; concurrent sessions never share mutable state.
type Session struct {
	cfg      config.Algorithm
	retrieve Retriever
	frames   FrameSource
	resolver *similarity.Resolver
	events   *otel.Logger

	// VideoID, when set, restricts the search to one video.
	VideoID string

	frameCache map[string][]model.Frame
}

// New creates a session. frames may be nil, in which case video frames
// come from the retriever. The resolver's cache is session-scoped: pass
// a fresh resolver per session.
func New(cfg config.Algorithm, retrieve Retriever, frames FrameSource, resolver *similarity.Resolver, events *otel.Logger) *Session {
	if frames == nil {
		frames = retrieve
	}
	return &Session{
		cfg:        cfg.Normalized(),
		retrieve:   retrieve,
		frames:     frames,
		resolver:   resolver,
		events:     events,
		frameCache: make(map[string][]model.Frame),
	}
}

// Search finds ranked temporal sequences matching the ordered events.
// Fatal conditions (fewer than 2 events, retrieval failure, zero
// candidates) return an error; per-candidate failures degrade with a
// warning event and the search continues.
func (s *Session) Search(ctx context.Context, events []model.Event) ([]model.ScoredSequence, error) {
	if len(events) < 2 {
		return nil, fmt.Errorf("search: need at least 2 events, got %d", len(events))
	}

	start := time.Now()
	composed := query.Compose(events)
	s.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "search", Query: composed, Count: len(events)})

	candidates, err := s.retrieve.SearchText(ctx, composed, s.cfg.TopK, s.VideoID)
	if err != nil {
		s.emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSearchError, Comp: "search", Err: err.Error()})
		return nil, fmt.Errorf("search: candidate retrieval failed: %w", err)
	}
	if len(candidates) == 0 {
		s.emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSearchError, Comp: "search", Msg: "no candidates"})
		return nil, fmt.Errorf("search: retrieval returned no candidates for %q", composed)
	}
	s.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchCandidates, Comp: "search", Count: len(candidates)})

	queries := make([]string, len(events))
	for i, ev := range events {
		queries[i] = ev.Description
	}

	// Candidates are processed sequentially; the heavy step per candidate
	// is the batched window matrix, which paces itself.
	var scored []model.ScoredSequence
	for _, cand := range candidates {
		seq, ok := s.buildCandidate(ctx, cand, events, queries)
		if ok {
			scored = append(scored, seq)
		}
	}

	ranked := sequence.Rank(scored, s.cfg.ScoreThreshold)
	s.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: "search", Count: len(ranked), Dur: time.Since(start)})
	logging.Info("search complete", "events", len(events), "candidates", len(candidates), "sequences", len(ranked))

	return ranked, nil
}

// buildCandidate runs one candidate through pivot selection, window
// expansion, building, validation, and scoring. Returns ok=false when
// the candidate is skipped or its sequence rejected.
func (s *Session) buildCandidate(ctx context.Context, cand model.Frame, events []model.Event, queries []string) (model.ScoredSequence, bool) {
	scores := make([]float64, len(events))
	for i, q := range queries {
		scores[i] = s.resolver.PairScore(ctx, cand, q)
	}

	pivot := sequence.SelectPivot(cand, scores)
	if pivot.Similarity < s.cfg.SimilarityThreshold {
		s.emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindPivotSkip, Comp: "search",
			VideoID: cand.VideoID, Frame: cand.KeyframeN, Score: pivot.Similarity,
		})
		return model.ScoredSequence{}, false
	}
	s.emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindPivotSelect, Comp: "search",
		VideoID: cand.VideoID, Frame: cand.KeyframeN, EventIdx: pivot.EventIndex, Score: pivot.Similarity,
	})

	frames, err := s.videoFrames(ctx, cand.VideoID)
	if err != nil {
		s.emit(otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindWindowError, Comp: "search",
			VideoID: cand.VideoID, Err: err.Error(),
		})
		logging.Warn("skipping candidate, frame listing failed", "video", cand.VideoID, "error", err)
		return model.ScoredSequence{}, false
	}

	window := sequence.Window(frames, cand, s.cfg.SearchWindow)
	s.emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindWindowExpand, Comp: "search",
		VideoID: cand.VideoID, Frame: cand.KeyframeN, Count: len(window),
	})

	matrix := s.resolver.WindowMatrix(ctx, window, queries)

	slots := sequence.Build(pivot, events, window, matrix, s.cfg.SimilarityThreshold)
	s.emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindSequenceBuild, Comp: "search",
		VideoID: cand.VideoID, Frame: cand.KeyframeN, Count: len(slots),
	})

	if !sequence.Valid(slots, len(events), s.cfg.MinSequenceCompleteness) {
		s.emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindSequenceReject, Comp: "search",
			VideoID: cand.VideoID, Frame: cand.KeyframeN, Count: len(slots),
		})
		return model.ScoredSequence{}, false
	}

	return sequence.Score(slots, len(events), sequence.ScoreParams{
		MaxTemporalGap:     s.cfg.MaxTemporalGap,
		MinCompleteness:    s.cfg.MinSequenceCompleteness,
		TemporalWeight:     s.cfg.TemporalWeight,
		CompletenessWeight: s.cfg.CompletenessWeight,
	}), true
}

// videoFrames memoizes per-video frame listings for the run, so several
// candidates from the same video cost one listing call.
func (s *Session) videoFrames(ctx context.Context, videoID string) ([]model.Frame, error) {
	if frames, ok := s.frameCache[videoID]; ok {
		return frames, nil
	}
	frames, err := s.frames.VideoFrames(ctx, videoID)
	if err != nil {
		return nil, err
	}
	s.frameCache[videoID] = frames
	return frames, nil
}

func (s *Session) emit(e otel.Event) {
	if s.events != nil {
		s.events.Emit(e)
	}
}
