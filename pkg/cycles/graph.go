package cycles

import "github.com/matzehuels/depscope/pkg/report"

// Graph is the global union of every title block's adjacency.
// Nodes keep first-seen order and child lists are concatenated.
type Graph struct {
	nodes    []string
	children map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{children: make(map[string][]string)}
}

// Merge builds the global graph from a chunk sequence.
func Merge(chunks []*report.Chunk) *Graph {
	g := NewGraph()
	for _, c := range chunks {
		for _, t := range c.Titles() {
			for _, id := range t.Keys() {
				children, _ := t.Children(id)
				g.Add(id, children...)
			}
		}
	}
	return g
}

// Add registers id and appends children to its list.
func (g *Graph) Add(id string, children ...string) {
	if _, ok := g.children[id]; !ok {
		g.nodes = append(g.nodes, id)
		g.children[id] = nil
	}
	g.children[id] = append(g.children[id], children...)
}

// Nodes returns every node with an adjacency entry, in insertion order.
func (g *Graph) Nodes() []string { return g.nodes }

// Children returns the stored children of id. Unknown ids have none.
func (g *Graph) Children(id string) []string { return g.children[id] }
