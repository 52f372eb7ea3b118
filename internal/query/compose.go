// Package query builds retrieval query strings from ordered events.
package query

import (
	"strings"

	"github.com/abelbrown/frameseq/internal/model"
)

// transitions cycle through interior events by index to vary phrasing.
// This biases the text-retrieval call toward temporally structured content;
// it is not itself a ranking step.
var transitions = []string{"followed by", "then", "subsequently"}

// Compose merges ordered event descriptions into a single query string.
// One event passes through unchanged. Multiple events become
// "temporal sequence: first X, then Y, ..., finally W".
func Compose(events []model.Event) string {
	if len(events) == 0 {
		return ""
	}
	if len(events) == 1 {
		return events[0].Description
	}

	var b strings.Builder
	b.WriteString("temporal sequence: ")
	last := len(events) - 1
	for i, ev := range events {
		switch {
		case i == 0:
			b.WriteString("first ")
		case i == last:
			b.WriteString(", finally ")
		default:
			b.WriteString(", ")
			b.WriteString(transitions[i%len(transitions)])
			b.WriteString(" ")
		}
		b.WriteString(ev.Description)
	}
	return b.String()
}
