// Package sink paints a [render.Frame] onto a concrete surface.
//
// Each sink consumes the same ordered command list, so layering is decided
// once by the composer and never by the sink:
//
//   - [RenderPNG]: raster image through fogleman/gg with the built-in font
//   - [RenderSVG]: standalone SVG document
//   - [RenderJSON]: the command list itself, for external canvases
//   - [RenderTerm]: a braille-dot approximation for terminals
//
// Options follow the functional style used across the module:
//
//	png, err := sink.RenderPNG(frame, sink.WithScale(2))
//	svg := sink.RenderSVG(frame, sink.WithTooltip(tip))
package sink
