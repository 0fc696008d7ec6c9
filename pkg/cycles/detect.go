package cycles

import (
	"slices"
	"strings"

	"github.com/matzehuels/depscope/pkg/report"
)

// Edge is a directed parent -> child pair.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

func (e Edge) String() string { return e.From + "->" + e.To }

// EdgeSet is the set of edges flagged as circular.
type EdgeSet struct {
	edges map[Edge]struct{}
}

// NewEdgeSet builds a set from explicit edges.
func NewEdgeSet(edges ...Edge) *EdgeSet {
	s := &EdgeSet{edges: make(map[Edge]struct{}, len(edges))}
	for _, e := range edges {
		s.edges[e] = struct{}{}
	}
	return s
}

// Has reports whether from -> to is circular. A nil set has no edges.
func (s *EdgeSet) Has(from, to string) bool {
	if s == nil {
		return false
	}
	_, ok := s.edges[Edge{From: from, To: to}]
	return ok
}

// Len returns the number of flagged edges.
func (s *EdgeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.edges)
}

// Edges returns the flagged edges sorted by From then To.
func (s *EdgeSet) Edges() []Edge {
	if s == nil {
		return nil
	}
	out := make([]Edge, 0, len(s.edges))
	for e := range s.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	return out
}

// Strings returns the sorted edges in "from->to" form.
func (s *EdgeSet) Strings() []string {
	edges := s.Edges()
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.String()
	}
	return out
}

// Detect merges chunks into one graph and returns its circular edges.
func Detect(chunks []*report.Chunk) *EdgeSet {
	return DetectGraph(Merge(chunks))
}

type frame struct {
	id   string
	next int // index of the next child to visit
}

// DetectGraph runs the depth-first search over g.
func DetectGraph(g *Graph) *EdgeSet {
	flagged := NewEdgeSet()
	visited := make(map[string]bool)
	pathIndex := make(map[string]int)
	var path []string

	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}

		stack := []frame{{id: start}}
		visited[start] = true
		pathIndex[start] = len(path)
		path = append(path, start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)

			if top.next >= len(children) {
				delete(pathIndex, top.id)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}

			child := children[top.next]
			top.next++

			if i, onPath := pathIndex[child]; onPath {
				flagCycle(flagged, path[i:])
				continue
			}
			if visited[child] {
				continue
			}

			visited[child] = true
			pathIndex[child] = len(path)
			path = append(path, child)
			stack = append(stack, frame{id: child})
		}
	}
	return flagged
}

// flagCycle records consecutive pairs of cycle and the edge closing it.
func flagCycle(s *EdgeSet, cycle []string) {
	for i := 0; i+1 < len(cycle); i++ {
		s.edges[Edge{From: cycle[i], To: cycle[i+1]}] = struct{}{}
	}
	s.edges[Edge{From: cycle[len(cycle)-1], To: cycle[0]}] = struct{}{}
}
