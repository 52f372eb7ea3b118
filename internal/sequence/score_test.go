package sequence

import (
	"math"
	"testing"

	"github.com/abelbrown/frameseq/internal/model"
)

func slot(keyframe int, sim float64) model.SequenceSlot {
	return model.SequenceSlot{Frame: frame(int64(keyframe), keyframe), Similarity: sim}
}

func defaultParams() ScoreParams {
	return ScoreParams{
		MaxTemporalGap:     150,
		MinCompleteness:    0.1,
		TemporalWeight:     0.3,
		CompletenessWeight: 0.2,
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		slots []model.SequenceSlot
		total int
		floor float64
		want  bool
	}{
		{"empty", nil, 2, 0.1, false},
		{"ordered pair", []model.SequenceSlot{slot(100, 0.8), slot(200, 0.7)}, 2, 0.1, true},
		{"out of order", []model.SequenceSlot{slot(200, 0.8), slot(100, 0.7)}, 2, 0.1, false},
		{"duplicate frame number", []model.SequenceSlot{slot(100, 0.8), slot(100, 0.7)}, 2, 0.1, false},
		{"one of three above floor", []model.SequenceSlot{slot(100, 0.8)}, 3, 0.1, true},
		{"one of three below floor", []model.SequenceSlot{slot(100, 0.8)}, 3, 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.slots, tt.total, tt.floor); got != tt.want {
				t.Errorf("Valid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreCompleteSequence(t *testing.T) {
	slots := []model.SequenceSlot{slot(500, 0.8), slot(620, 0.8)}
	got := Score(slots, 2, defaultParams())

	approx(t, "base", got.Breakdown.BaseSimilarity, 0.8)
	// gap 120 / maxGap 150 = 0.8 normalized, temporal = 0.2
	approx(t, "temporal", got.Breakdown.Temporal, 0.2)
	approx(t, "completeness", got.Breakdown.Completeness, 1.0)
	approx(t, "consistency", got.Breakdown.Consistency, 1.0) // identical sims
	approx(t, "order", got.Breakdown.Order, 1.0)
	// 0.4*0.8 + 0.3*0.2 + 0.2*1 + 0.1*1 + 0.1*1
	approx(t, "final", got.Score, 0.78)

	if got.VideoID != "v1" || got.StartFrame != 500 || got.EndFrame != 620 || got.Duration != 120 {
		t.Errorf("metadata = %+v", got)
	}
	approx(t, "Completeness", got.Completeness, 1.0)
}

func TestScoreSingleSlot(t *testing.T) {
	got := Score([]model.SequenceSlot{slot(100, 0.6)}, 3, defaultParams())
	approx(t, "temporal", got.Breakdown.Temporal, 1.0)
	approx(t, "consistency", got.Breakdown.Consistency, 1.0)
	approx(t, "completeness", got.Breakdown.Completeness, 1.0/3.0)
	if got.Duration != 0 {
		t.Errorf("Duration = %d, want 0", got.Duration)
	}
}

func TestScoreCompletenessHalvedBelowFloor(t *testing.T) {
	p := defaultParams()
	p.MinCompleteness = 0.5
	got := Score([]model.SequenceSlot{slot(100, 0.6)}, 3, p)
	approx(t, "completeness", got.Breakdown.Completeness, (1.0/3.0)/2)
}

func TestScoreGapCappedAtMax(t *testing.T) {
	slots := []model.SequenceSlot{slot(100, 0.5), slot(5000, 0.5)}
	got := Score(slots, 2, defaultParams())
	approx(t, "temporal", got.Breakdown.Temporal, 0.0)
}

func TestScoreConsistencyPenalizesSpread(t *testing.T) {
	slots := []model.SequenceSlot{slot(100, 0.2), slot(200, 0.8)}
	got := Score(slots, 2, defaultParams())
	// population stddev of {0.2, 0.8} is 0.3
	approx(t, "consistency", got.Breakdown.Consistency, 0.7)
}

func TestScoreDeterministic(t *testing.T) {
	slots := []model.SequenceSlot{slot(100, 0.41), slot(230, 0.73), slot(350, 0.6)}
	a := Score(slots, 3, defaultParams())
	b := Score(slots, 3, defaultParams())
	if a.Score != b.Score || a.Breakdown != b.Breakdown {
		t.Errorf("scoring not deterministic: %v vs %v", a, b)
	}
}

func TestRank(t *testing.T) {
	seqs := []model.ScoredSequence{
		{VideoID: "a", Score: 0.5},
		{VideoID: "b", Score: 0.9},
		{VideoID: "c", Score: 0.2},
		{VideoID: "d", Score: 0.5},
	}

	got := Rank(seqs, 0.3)
	if len(got) != 3 {
		t.Fatalf("got %d sequences, want 3 (0.2 filtered)", len(got))
	}
	if got[0].VideoID != "b" {
		t.Errorf("first = %s, want b", got[0].VideoID)
	}
	// stable: a before d on exact tie
	if got[1].VideoID != "a" || got[2].VideoID != "d" {
		t.Errorf("tie order = %s, %s, want a, d", got[1].VideoID, got[2].VideoID)
	}
}

func TestRankEmptyAndThresholdInclusive(t *testing.T) {
	got := Rank([]model.ScoredSequence{{Score: 0.3}}, 0.3)
	if len(got) != 1 {
		t.Errorf("threshold should be inclusive, got %d", len(got))
	}
	if got := Rank(nil, 0); len(got) != 0 {
		t.Errorf("nil input should rank to empty, got %d", len(got))
	}
}
