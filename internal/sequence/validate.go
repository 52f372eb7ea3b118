package sequence

import "github.com/abelbrown/frameseq/internal/model"

// Valid reports whether an assembled sequence may be scored: non-empty,
// completeness at or above the floor, and strictly increasing keyframe
// numbers across the assigned slots in event order. An invalid sequence
// is simply excluded from results, not an error.
func Valid(slots []model.SequenceSlot, totalEvents int, minCompleteness float64) bool {
	if len(slots) == 0 || totalEvents == 0 {
		return false
	}
	if float64(len(slots))/float64(totalEvents) < minCompleteness {
		return false
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Frame.KeyframeN <= slots[i-1].Frame.KeyframeN {
			return false
		}
	}
	return true
}
