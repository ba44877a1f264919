// Package render turns the current block's clusters into a frame of draw
// commands.
//
// # Overview
//
// Rendering is split in two so that the same frame can reach very different
// surfaces (a PNG, an SVG document, a terminal, a JSON stream):
//
//   - [Composer.Compose] reads the scene, the viewport and the animation clock
//     and produces a [Frame]: an ordered list of [Command] values in screen
//     pixels.
//   - The [sink] subpackage paints a Frame onto a concrete surface.
//
// # Layers
//
// Commands are emitted in a fixed order and later layers draw over earlier
// ones:
//
//  1. clear
//  2. cluster edges
//  3. points
//  4. centroid diamonds, each followed by its wrapped short-summary label
//  5. the "Block Height: N" watermark in the top-right corner
//
// # Flicker
//
// Edges and points twinkle without per-frame randomness. Each element carries a
// phase fixed when it was created, and its opacity is
//
//	base + amplitude * sin(elapsed * speed + phase)
//
// # Loop
//
// [Loop] is the cooperative frame task. Its owner calls [Loop.Tick] once per
// frame interval; Tick checks the animating flag before drawing and reports
// whether the owner should schedule the next frame.
//
// The [nodelink] subpackage exports a block's cluster skeletons as Graphviz.
package render
