package sequence

import (
	"math"

	"github.com/abelbrown/frameseq/internal/model"
)

// ScoreParams are the scoring tunables, copied from the algorithm config
// at session start.
type ScoreParams struct {
	MaxTemporalGap     int
	MinCompleteness    float64
	TemporalWeight     float64
	CompletenessWeight float64
}

// Fixed weights of the non-configurable score terms. The five weighted
// terms are an unnormalized blend and need not sum to 1.
const (
	baseSimilarityWeight = 0.4
	consistencyWeight    = 0.1
	orderWeight          = 0.1
)

// Score computes the composite score and sub-score breakdown for a valid
// sequence, plus derived metadata. slots must be in event order with
// strictly increasing keyframe numbers (as Valid enforces).
func Score(slots []model.SequenceSlot, totalEvents int, p ScoreParams) model.ScoredSequence {
	base := meanSimilarity(slots)
	temporal := temporalScore(slots, p.MaxTemporalGap)
	completeness := completenessScore(len(slots), totalEvents, p.MinCompleteness)
	consistency := consistencyScore(slots)
	order := orderScore(slots)

	breakdown := model.ScoreBreakdown{
		BaseSimilarity: base,
		Temporal:       temporal,
		Completeness:   completeness,
		Consistency:    consistency,
		Order:          order,
	}

	final := baseSimilarityWeight*base +
		p.TemporalWeight*temporal +
		p.CompletenessWeight*completeness +
		consistencyWeight*consistency +
		orderWeight*order

	start := slots[0].Frame.KeyframeN
	end := slots[len(slots)-1].Frame.KeyframeN

	return model.ScoredSequence{
		Slots:        slots,
		Score:        final,
		Breakdown:    breakdown,
		VideoID:      slots[0].Frame.VideoID,
		StartFrame:   start,
		EndFrame:     end,
		Duration:     end - start,
		Completeness: float64(len(slots)) / float64(totalEvents),
	}
}

func meanSimilarity(slots []model.SequenceSlot) float64 {
	sum := 0.0
	for _, s := range slots {
		sum += s.Similarity
	}
	return sum / float64(len(slots))
}

// temporalScore rewards tight sequences: each consecutive keyframe gap is
// normalized against maxGap and capped at 1, and the score is one minus
// the mean normalized gap. Single-slot sequences score 1.
func temporalScore(slots []model.SequenceSlot, maxGap int) float64 {
	if len(slots) < 2 {
		return 1.0
	}
	if maxGap <= 0 {
		maxGap = 1
	}
	sum := 0.0
	for i := 1; i < len(slots); i++ {
		gap := float64(slots[i].Frame.KeyframeN - slots[i-1].Frame.KeyframeN)
		norm := gap / float64(maxGap)
		if norm > 1 {
			norm = 1
		}
		sum += norm
	}
	return 1.0 - sum/float64(len(slots)-1)
}

// completenessScore is the assignment ratio, halved when it falls below
// the floor so under-complete sequences drop off more steeply.
func completenessScore(assigned, total int, floor float64) float64 {
	ratio := float64(assigned) / float64(total)
	if ratio < floor {
		return ratio / 2
	}
	return ratio
}

// consistencyScore rewards low variance across slot similarities.
func consistencyScore(slots []model.SequenceSlot) float64 {
	if len(slots) < 2 {
		return 1.0
	}
	mean := meanSimilarity(slots)
	sum := 0.0
	for _, s := range slots {
		d := s.Similarity - mean
		sum += d * d
	}
	stddev := math.Sqrt(sum / float64(len(slots)))
	if stddev >= 1 {
		return 0
	}
	return 1 - stddev
}

// orderScore is the fraction of consecutive pairs with strictly
// increasing keyframe numbers. Always 1 for a validated sequence; kept in
// the breakdown anyway so score reports stay self-explanatory.
func orderScore(slots []model.SequenceSlot) float64 {
	if len(slots) < 2 {
		return 1.0
	}
	ordered := 0
	for i := 1; i < len(slots); i++ {
		if slots[i].Frame.KeyframeN > slots[i-1].Frame.KeyframeN {
			ordered++
		}
	}
	return float64(ordered) / float64(len(slots)-1)
}
