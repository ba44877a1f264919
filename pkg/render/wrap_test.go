package render

import (
	"slices"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 60, nil},
		{"blank", "   ", 60, nil},
		{"fits", "gm all", 60, []string{"gm all"}},
		{"breaks", "people saying good morning", 60, []string{"people", "saying", "good", "morning"}},
		{"packs", "people saying good morning", 90, []string{"people saying", "good morning"}},
		{"long word", "supercalifragilistic ok", 60, []string{"supercalifragilistic", "ok"}},
		{"collapses spaces", "a   b\tc", 60, []string{"a b c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.text, tt.width, charMeasurer); !slices.Equal(got, tt.want) {
				t.Errorf("Wrap(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestDefaultMeasurer(t *testing.T) {
	m := DefaultMeasurer()
	if m.Measure("wide words") <= m.Measure("w") {
		t.Error("longer strings should measure wider")
	}
}
