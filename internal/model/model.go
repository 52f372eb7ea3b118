// Package model defines the core data types for temporal sequence search.
package model

// Event is one ordered stage of a temporal query, described by free text.
// Events are immutable once a search begins; the ordered list length is the
// sequence's target cardinality.
type Event struct {
	Index       int     // 0-based position in the query
	Description string  // free-text event description
	Weight      float64 // reserved for weighted events; currently always 1
}

// NewEvents builds an ordered Event list from descriptions.
func NewEvents(descriptions []string) []Event {
	events := make([]Event, len(descriptions))
	for i, d := range descriptions {
		events[i] = Event{Index: i, Description: d, Weight: 1}
	}
	return events
}

// Frame is a keyframe extracted from a video. Read-only reference data:
// field names mirror the corpus schema. KeyframeN is unique within a video
// and strictly increasing with playback time.
type Frame struct {
	ID         int64   `json:"id"`
	VideoID    string  `json:"video_id"`
	KeyframeN  int     `json:"keyframe_n"`
	Filename   string  `json:"image_filename"`
	Path       string  `json:"image_path,omitempty"`
	PtsTime    float64 `json:"pts_time"`
	FPS        float64 `json:"fps,omitempty"`
	FrameIdx   int     `json:"frame_idx,omitempty"`
	VideoTitle string  `json:"video_title,omitempty"`
	Similarity float64 `json:"similarity"`
}

// SequenceSlot is one event's frame assignment. All fields are always
// populated; unassigned events are simply absent from a sequence rather
// than represented by empty placeholder slots.
type SequenceSlot struct {
	EventIndex int
	Frame      Frame
	Similarity float64
	IsPivot    bool
}

// ScoreBreakdown holds the sub-scores behind a sequence's final score,
// kept for observability. Each value is in [0,1].
type ScoreBreakdown struct {
	BaseSimilarity float64 `json:"base_similarity"`
	Temporal       float64 `json:"temporal"`
	Completeness   float64 `json:"completeness"`
	Consistency    float64 `json:"consistency"`
	Order          float64 `json:"order"`
}

// ScoredSequence is a finalized sequence with its composite score and
// derived metadata.
type ScoredSequence struct {
	Slots        []SequenceSlot `json:"slots"`
	Score        float64        `json:"score"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	VideoID      string         `json:"video_id"`
	StartFrame   int            `json:"start_frame"`
	EndFrame     int            `json:"end_frame"`
	Duration     int            `json:"duration"` // EndFrame - StartFrame, in keyframe numbers
	Completeness float64        `json:"completeness"`
}

// SimilarityMatrix maps (event index, frame index) pairs to similarity
// scores in [0,1]. Rows follow event order, columns follow the frame list
// the matrix was computed over. Consumed read-only during sequence building.
type SimilarityMatrix struct {
	Scores [][]float64
}

// NewSimilarityMatrix allocates an events × frames matrix of zeros.
func NewSimilarityMatrix(events, frames int) *SimilarityMatrix {
	scores := make([][]float64, events)
	for i := range scores {
		scores[i] = make([]float64, frames)
	}
	return &SimilarityMatrix{Scores: scores}
}

// At returns the similarity for (event, frame), or 0 if out of range.
func (m *SimilarityMatrix) At(event, frame int) float64 {
	if m == nil || event < 0 || event >= len(m.Scores) {
		return 0
	}
	row := m.Scores[event]
	if frame < 0 || frame >= len(row) {
		return 0
	}
	return row[frame]
}

// Events returns the number of event rows.
func (m *SimilarityMatrix) Events() int {
	if m == nil {
		return 0
	}
	return len(m.Scores)
}

// Frames returns the number of frame columns.
func (m *SimilarityMatrix) Frames() int {
	if m == nil || len(m.Scores) == 0 {
		return 0
	}
	return len(m.Scores[0])
}
