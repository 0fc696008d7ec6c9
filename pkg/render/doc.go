// Package render holds the visual outputs for parsed dependency reports.
//
// The [nodelink] subpackage renders report chunks as directed Graphviz
// diagrams. Rendering is driven by pkg/pipeline, which caches SVG output by
// the hash of the DOT source.
//
// [nodelink]: github.com/matzehuels/depscope/pkg/render/nodelink
package render
