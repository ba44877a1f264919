package sink

import (
	"encoding/json"

	"github.com/matzehuels/blockscape/pkg/gesture"
	"github.com/matzehuels/blockscape/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	tooltip *jsonTooltip
	indent  bool
}

// WithJSONTooltip includes the hover tooltip when it is visible.
func WithJSONTooltip(t gesture.Tooltip) JSONOption {
	return func(r *jsonRenderer) {
		if t.Visible {
			r.tooltip = &jsonTooltip{X: t.X, Y: t.Y, Text: t.Text}
		}
	}
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	render.Frame
	Tooltip *jsonTooltip `json:"tooltip,omitempty"`
}

type jsonTooltip struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// RenderJSON exports the frame's command list. Browser canvases and other
// external painters replay the commands in order.
func RenderJSON(f render.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Frame: f, Tooltip: r.tooltip}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
