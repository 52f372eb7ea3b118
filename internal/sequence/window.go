package sequence

import (
	"sort"

	"github.com/abelbrown/frameseq/internal/model"
)

// Window filters a video's frames down to those within radius keyframe
// numbers of the pivot, inclusive on both ends, with the lower bound
// clamped to 1. The result is sorted ascending by keyframe number.
// Applying Window twice with the same inputs yields the same set.
func Window(frames []model.Frame, pivot model.Frame, radius int) []model.Frame {
	lo := pivot.KeyframeN - radius
	if lo < 1 {
		lo = 1
	}
	hi := pivot.KeyframeN + radius

	out := make([]model.Frame, 0, len(frames))
	for _, f := range frames {
		if f.VideoID != pivot.VideoID {
			continue
		}
		if f.KeyframeN >= lo && f.KeyframeN <= hi {
			out = append(out, f)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].KeyframeN < out[j].KeyframeN
	})
	return out
}
