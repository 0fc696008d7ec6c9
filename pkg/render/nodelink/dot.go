package nodelink

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/report"
)

// Node fill colours keyed by Gradle marker.
const (
	ColorNotResolved = "lightcoral"
	ColorConstraint  = "greenyellow"
	ColorOmitted     = "yellow"
	ColorDefault     = "lightblue2"
	ColorFocus       = "red"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Focus restricts the diagram to the title with this exact name.
	// Empty renders every title in the chunk.
	Focus string

	// Highlight fills nodes whose identifier contains this term red.
	// Matching ignores case and whitespace. Defaults to Focus.
	Highlight string

	// Detailed adds resolved coordinate fields to node labels.
	Detailed bool

	// Circular edges are drawn red and bold.
	Circular *cycles.EdgeSet

	// Coordinates supplies labels when Detailed is set.
	Coordinates map[string]report.Coordinate
}

// ChunkDOT converts one chunk to Graphviz DOT. Each title becomes a
// rectangle linked to its root dependencies; dependencies are double
// octagons coloured by marker. Node and edge order follow the chunk, so the
// output is deterministic.
func ChunkDOT(chunk *report.Chunk, opts Options) string {
	highlight := opts.Highlight
	if highlight == "" {
		highlight = opts.Focus
	}
	highlight = squash(highlight)

	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	writeGraphAttrs(&buf)

	nodes := make(map[string]bool)
	edges := make(map[string]bool)
	addEdge := func(from, to string, attrs string) {
		key := from + "->" + to
		if edges[key] {
			return
		}
		edges[key] = true
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", from, to, attrs)
	}
	addNode := func(id string) {
		if nodes[id] {
			return
		}
		nodes[id] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(id, highlight, opts), ", "))
	}

	for _, t := range chunk.Titles() {
		if opts.Focus != "" && t.Name != opts.Focus {
			continue
		}
		fmt.Fprintf(&buf, "  %q [shape=rectangle, label=%q];\n", t.Name, t.Name)
		nodes[t.Name] = true

		for _, parent := range t.Keys() {
			addNode(parent)
			if slices.Contains(t.Roots, parent) {
				addEdge(t.Name, parent, "")
			}
			children, _ := t.Children(parent)
			for _, child := range children {
				addNode(child)
				if opts.Circular.Has(parent, child) {
					addEdge(parent, child, " [color=red, style=bold]")
				} else {
					addEdge(parent, child, " [style=solid]")
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// TitlesDOT renders the overview graph: one rectangle per title.
func TitlesDOT(titles []string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph titles {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	for _, t := range titles {
		fmt.Fprintf(&buf, "  %q [shape=rectangle, label=%q];\n", t, t)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeGraphAttrs(buf *bytes.Buffer) {
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ranksep=2;\n")
	buf.WriteString("  nodesep=0.5;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  concentrate=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("\n")
}

func nodeAttrs(id, highlight string, opts Options) []string {
	color := MarkerColor(id)
	fill := color
	if highlight != "" && strings.Contains(squash(id), highlight) {
		fill = ColorFocus
	}
	return []string{
		"shape=doubleoctagon",
		"style=filled",
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("fillcolor=%q", fill),
		fmt.Sprintf("label=%q", label(id, opts)),
	}
}

// MarkerColor returns the fill colour for an identifier's Gradle marker.
func MarkerColor(id string) string {
	switch report.MarkerOf(id) {
	case report.MarkerNotResolved:
		return ColorNotResolved
	case report.MarkerConstraint:
		return ColorConstraint
	case report.MarkerOmitted:
		return ColorOmitted
	default:
		return ColorDefault
	}
}

func label(id string, opts Options) string {
	if !opts.Detailed {
		return id
	}
	c, ok := opts.Coordinates[id]
	if !ok {
		return id
	}

	parts := []string{id}
	if c.Group != "" {
		parts = append(parts, "group: "+c.Group)
	}
	if c.Version != "" {
		parts = append(parts, "version: "+c.Version)
	}
	if c.HasConflict() {
		parts = append(parts, "requested: "+c.Requested)
	}
	if c.Configuration != "" {
		parts = append(parts, "configuration: "+c.Configuration)
	}
	return strings.Join(parts, "\n")
}

// squash lowercases s and drops all whitespace.
func squash(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}
