package sequence

import (
	"sort"

	"github.com/abelbrown/frameseq/internal/model"
)

// Rank filters sequences below the score threshold and sorts the rest by
// descending score. The sort is stable, so exact ties keep input order.
func Rank(seqs []model.ScoredSequence, scoreThreshold float64) []model.ScoredSequence {
	out := make([]model.ScoredSequence, 0, len(seqs))
	for _, s := range seqs {
		if s.Score >= scoreThreshold {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
