package sequence

import (
	"sort"

	"github.com/abelbrown/frameseq/internal/model"
)

// Build assembles a sequence around a pivot. The pivot's slot carries the
// pivot's own similarity; every other event is filled backward then
// forward from the pivot, taking the highest-similarity window frame that
// keeps keyframe numbers strictly monotonic against the nearest
// already-placed slot on the pivot side. Events with no qualifying frame
// stay unassigned. The two fill passes touch disjoint event indices and
// share only the pivot slot, so their relative order does not matter.
//
// window must be sorted ascending by keyframe number (as Window returns),
// and matrix rows must follow events, columns the window frames.
// minSimilarity excludes frames scoring below it from slot assignment.
func Build(pivot Pivot, events []model.Event, window []model.Frame, matrix *model.SimilarityMatrix, minSimilarity float64) []model.SequenceSlot {
	slots := make([]*model.SequenceSlot, len(events))
	slots[pivot.EventIndex] = &model.SequenceSlot{
		EventIndex: pivot.EventIndex,
		Frame:      pivot.Frame,
		Similarity: pivot.Similarity,
		IsPivot:    true,
	}

	if len(window) > 0 {
		// Backward pass: candidate must precede the nearest placed slot
		// after it, which starts as the pivot and tightens as slots fill.
		bound := pivot.Frame.KeyframeN
		for e := pivot.EventIndex - 1; e >= 0; e-- {
			if slot := bestBefore(e, window, matrix, bound, minSimilarity); slot != nil {
				slots[e] = slot
				bound = slot.Frame.KeyframeN
			}
		}

		// Forward pass, mirrored.
		bound = pivot.Frame.KeyframeN
		for e := pivot.EventIndex + 1; e < len(events); e++ {
			if slot := bestAfter(e, window, matrix, bound, minSimilarity); slot != nil {
				slots[e] = slot
				bound = slot.Frame.KeyframeN
			}
		}
	}

	out := make([]model.SequenceSlot, 0, len(events))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// ranked returns window frame indices ordered by similarity to the event,
// descending. The sort is stable over the window's keyframe order, so
// equal scores resolve to the earlier frame.
func ranked(event int, window []model.Frame, matrix *model.SimilarityMatrix) []int {
	idx := make([]int, len(window))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return matrix.At(event, idx[a]) > matrix.At(event, idx[b])
	})
	return idx
}

func bestBefore(event int, window []model.Frame, matrix *model.SimilarityMatrix, bound int, minSimilarity float64) *model.SequenceSlot {
	for _, i := range ranked(event, window, matrix) {
		sim := matrix.At(event, i)
		if sim < minSimilarity {
			return nil // ranked descending; nothing below qualifies
		}
		if window[i].KeyframeN < bound {
			return &model.SequenceSlot{EventIndex: event, Frame: window[i], Similarity: sim}
		}
	}
	return nil
}

func bestAfter(event int, window []model.Frame, matrix *model.SimilarityMatrix, bound int, minSimilarity float64) *model.SequenceSlot {
	for _, i := range ranked(event, window, matrix) {
		sim := matrix.At(event, i)
		if sim < minSimilarity {
			return nil
		}
		if window[i].KeyframeN > bound {
			return &model.SequenceSlot{EventIndex: event, Frame: window[i], Similarity: sim}
		}
	}
	return nil
}
