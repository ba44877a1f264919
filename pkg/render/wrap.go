package render

import (
	"strings"

	"golang.org/x/image/font"

	"github.com/matzehuels/blockscape/pkg/fonts"
)

// Measurer reports the rendered width of a string in pixels.
type Measurer interface {
	Measure(s string) float64
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc func(s string) float64

// Measure calls f(s).
func (f MeasureFunc) Measure(s string) float64 { return f(s) }

type faceMeasurer struct{ face font.Face }

func (m faceMeasurer) Measure(s string) float64 { return fonts.Measure(m.face, s) }

// DefaultMeasurer measures with the built-in font at [LabelFontSize]. If the
// font cannot be loaded it estimates 0.6 em per rune.
func DefaultMeasurer() Measurer {
	face, err := fonts.Face(LabelFontSize)
	if err != nil {
		return MeasureFunc(func(s string) float64 {
			return float64(len([]rune(s))) * LabelFontSize * 0.6
		})
	}
	return faceMeasurer{face: face}
}

// Wrap breaks text into lines no wider than width, splitting on whitespace.
// A single word wider than width gets a line of its own.
func Wrap(text string, width float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if m.Measure(candidate) <= width {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}
