package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/frameseq/internal/model"
)

func sampleSequences() []model.ScoredSequence {
	return []model.ScoredSequence{
		{
			VideoID: "v1", Score: 0.81, StartFrame: 500, EndFrame: 620, Duration: 120, Completeness: 1,
			Slots: []model.SequenceSlot{
				{EventIndex: 0, Frame: model.Frame{VideoID: "v1", KeyframeN: 500}, Similarity: 0.9, IsPivot: true},
				{EventIndex: 1, Frame: model.Frame{VideoID: "v1", KeyframeN: 620}, Similarity: 0.8},
			},
		},
		{VideoID: "v2", Score: 0.55, StartFrame: 10, EndFrame: 90, Duration: 80, Completeness: 0.5,
			Slots: []model.SequenceSlot{{EventIndex: 0, Frame: model.Frame{VideoID: "v2", KeyframeN: 10}, Similarity: 0.6, IsPivot: true}}},
	}
}

func TestBrowserListView(t *testing.T) {
	m := New(sampleSequences(), model.NewEvents([]string{"enters", "leaves"}))
	view := m.View()
	if !strings.Contains(view, "2 sequences") {
		t.Errorf("view missing count: %q", view)
	}
	if !strings.Contains(view, "v1") || !strings.Contains(view, "v2") {
		t.Errorf("view missing video ids")
	}
}

func TestBrowserCursorAndDetail(t *testing.T) {
	m := New(sampleSequences(), model.NewEvents([]string{"enters", "leaves"}))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor moved past end: %d", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if !m.detail {
		t.Fatal("enter should open detail view")
	}
	if !strings.Contains(m.detailView(), "v2") {
		t.Errorf("detail should show selected sequence")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.detail {
		t.Error("esc should close detail, not quit")
	}
}

func TestBrowserEmpty(t *testing.T) {
	m := New(nil, nil)
	if !strings.Contains(m.View(), "no sequences") {
		t.Errorf("empty view = %q", m.View())
	}
}
