// Package ui is the interactive results browser for sequence searches.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/frameseq/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#484f58"))
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))
	pivotStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Detail key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Detail: key.NewBinding(key.WithKeys("enter", " ")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// Model is the results browser: a sequence list with a detail view
// toggled per selection.
type Model struct {
	sequences []model.ScoredSequence
	events    []model.Event
	cursor    int
	detail    bool
	viewport  viewport.Model
	width     int
	height    int
}

// New creates a browser over ranked sequences.
func New(sequences []model.ScoredSequence, events []model.Event) Model {
	return Model{
		sequences: sequences,
		events:    events,
		viewport:  viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 6

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if !m.detail && m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if !m.detail && m.cursor < len(m.sequences)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Detail):
			if len(m.sequences) > 0 {
				m.detail = !m.detail
				if m.detail {
					m.viewport.SetContent(m.detailView())
					m.viewport.GotoTop()
				}
			}
		}
	}

	if m.detail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.sequences) == 0 {
		return dimStyle.Render("  no sequences found") + "\n" + helpStyle.Render("  [q]uit")
	}

	if m.detail {
		header := titleStyle.Render(fmt.Sprintf(" sequence %d/%d", m.cursor+1, len(m.sequences)))
		return header + "\n" + m.viewport.View() + "\n" + helpStyle.Render("  [enter]back [q]back")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf(" %d sequences", len(m.sequences))))
	b.WriteString("\n\n")

	for i, seq := range m.sequences {
		line := fmt.Sprintf("%s  %s  frames %d-%d  %d/%d events",
			scoreStyle.Render(fmt.Sprintf("%.3f", seq.Score)),
			seq.VideoID, seq.StartFrame, seq.EndFrame,
			len(seq.Slots), len(m.events))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  [↑/↓]select [enter]detail [q]uit"))
	return b.String()
}

// detailView renders the selected sequence's slots and score breakdown.
func (m Model) detailView() string {
	seq := m.sequences[m.cursor]
	var b strings.Builder

	fmt.Fprintf(&b, "video    %s\n", seq.VideoID)
	fmt.Fprintf(&b, "score    %.4f\n", seq.Score)
	fmt.Fprintf(&b, "frames   %d-%d (span %d)\n", seq.StartFrame, seq.EndFrame, seq.Duration)
	fmt.Fprintf(&b, "complete %.0f%%\n\n", seq.Completeness*100)

	bd := seq.Breakdown
	fmt.Fprintf(&b, "breakdown  sim %.3f  temporal %.3f  complete %.3f  consistency %.3f  order %.3f\n\n",
		bd.BaseSimilarity, bd.Temporal, bd.Completeness, bd.Consistency, bd.Order)

	for _, slot := range seq.Slots {
		desc := ""
		if slot.EventIndex < len(m.events) {
			desc = m.events[slot.EventIndex].Description
		}
		marker := " "
		if slot.IsPivot {
			marker = pivotStyle.Render("●")
		}
		fmt.Fprintf(&b, "%s event %d  frame %d  sim %.3f  %s\n",
			marker, slot.EventIndex, slot.Frame.KeyframeN, slot.Similarity, dimStyle.Render(desc))
	}

	return b.String()
}
