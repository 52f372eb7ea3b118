// Package similarity computes frame-to-text similarity scores, preferring
// batched matrix calls to the external service and degrading through
// individual pair calls down to a conservative local estimate.
package similarity

import (
	"context"

	"github.com/abelbrown/frameseq/internal/model"
)

// PairProvider scores one (frame, text) pair.
type PairProvider interface {
	Pair(ctx context.Context, frameID int64, text string) (float64, error)
	Name() string
}

// MatrixProvider scores a full frames × queries grid in one call.
// The returned matrix has one row per query and one column per frame.
type MatrixProvider interface {
	Matrix(ctx context.Context, frameIDs []int64, queries []string) (*model.SimilarityMatrix, error)
	Name() string
}
