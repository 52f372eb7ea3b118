// Package sequence implements pivot-centered temporal sequence assembly:
// anchoring a candidate frame to its best event, expanding a keyframe
// window, filling the remaining events under strict temporal order, and
// scoring the result.
package sequence

import "github.com/abelbrown/frameseq/internal/model"

// Pivot anchors a candidate frame to the event it matches best.
type Pivot struct {
	Frame      model.Frame
	EventIndex int
	Similarity float64
}

// SelectPivot picks the best-matching event for a candidate frame given
// its per-event similarity scores (indexed by event). Ties keep the
// first-seen maximum, so the lowest event index wins.
func SelectPivot(frame model.Frame, scores []float64) Pivot {
	best := 0
	bestScore := 0.0
	if len(scores) > 0 {
		bestScore = scores[0]
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > bestScore {
			best = i
			bestScore = scores[i]
		}
	}
	return Pivot{Frame: frame, EventIndex: best, Similarity: bestScore}
}
