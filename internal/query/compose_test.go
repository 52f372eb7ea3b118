package query

import (
	"testing"

	"github.com/abelbrown/frameseq/internal/model"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   string
	}{
		{"empty", nil, ""},
		{"single passes through", []string{"a dog jumps"}, "a dog jumps"},
		{"two events", []string{"person enters", "person leaves"},
			"temporal sequence: first person enters, finally person leaves"},
		{"three events", []string{"a", "b", "c"},
			"temporal sequence: first a, then b, finally c"},
		{"five events cycle transitions", []string{"a", "b", "c", "d", "e"},
			"temporal sequence: first a, then b, subsequently c, followed by d, finally e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(model.NewEvents(tt.events))
			if got != tt.want {
				t.Errorf("Compose = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeDeterministic(t *testing.T) {
	events := model.NewEvents([]string{"x", "y", "z", "w"})
	if Compose(events) != Compose(events) {
		t.Error("Compose is not deterministic")
	}
}
