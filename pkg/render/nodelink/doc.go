// Package nodelink renders parsed dependency reports as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz. Each
// chunk of a report becomes one diagram: titles are rectangles linked to
// their root dependencies, dependencies are double octagons.
//
// # Usage
//
// Convert a chunk to DOT format, then render to SVG:
//
//	dot := nodelink.ChunkDOT(chunk, nodelink.Options{Circular: circular})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The focus view renders a single title and highlights matching nodes:
//
//	dot := nodelink.ChunkDOT(chunk, nodelink.Options{Focus: "app - runtime"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	svg = nodelink.EmbedCircularMetadata(svg, circular)
//
// # Colours
//
// Node fill follows the Gradle marker carried in the identifier:
//
//   - (n) not resolved: lightcoral
//   - (c) constraint: greenyellow
//   - (*) omitted repeat: yellow
//   - otherwise: lightblue2
//
// Nodes matching the focus or highlight term are filled red. Edges in the
// circular edge set are drawn red and bold.
//
// # DOT Format
//
// [ChunkDOT] and [TitlesDOT] produce Graphviz DOT source that can be:
//   - Rendered with [RenderSVG] (embedded Graphviz, no system install needed)
//   - Written to a .dot file for use with the dot command line
//
// [RenderSVG] runs under a context deadline; without one it applies
// [DefaultTimeout].
package nodelink
