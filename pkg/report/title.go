package report

import "slices"

// TitleBlock is one named section of a report with its flattened
// parent -> children adjacency.
//
// Keys keep insertion order so iteration is deterministic. A TitleBlock is
// mutated only by the [State] that created it; once parsing has finished it
// is read-only and safe for concurrent readers.
type TitleBlock struct {
	Name string
	// Roots lists the depth-0 identifiers in first-seen order.
	Roots []string

	keys     []string
	children map[string][]string
}

// NewTitleBlock returns an empty block named name.
func NewTitleBlock(name string) *TitleBlock {
	return &TitleBlock{Name: name, children: make(map[string][]string)}
}

// Ensure registers id with an empty child list if it is not present yet.
func (t *TitleBlock) Ensure(id string) {
	if _, ok := t.children[id]; ok {
		return
	}
	t.keys = append(t.keys, id)
	t.children[id] = nil
}

// AddChild appends child to parent's list, registering both identifiers.
// Repeated edges are kept: the list is the concatenation of every occurrence.
func (t *TitleBlock) AddChild(parent, child string) {
	t.Ensure(parent)
	t.children[parent] = append(t.children[parent], child)
	t.Ensure(child)
}

// AddRoot records a depth-0 identifier.
func (t *TitleBlock) AddRoot(id string) {
	t.Ensure(id)
	if !slices.Contains(t.Roots, id) {
		t.Roots = append(t.Roots, id)
	}
}

// Has reports whether id is a key of the adjacency map.
func (t *TitleBlock) Has(id string) bool {
	_, ok := t.children[id]
	return ok
}

// Children returns the children of id and whether id is known.
// The returned slice must not be modified.
func (t *TitleBlock) Children(id string) ([]string, bool) {
	c, ok := t.children[id]
	return c, ok
}

// Keys returns every identifier in insertion order.
func (t *TitleBlock) Keys() []string { return t.keys }

// Len returns the number of distinct identifiers.
func (t *TitleBlock) Len() int { return len(t.keys) }

// EachEdge calls fn for every parent -> child pair in insertion order and
// stops when fn returns false.
func (t *TitleBlock) EachEdge(fn func(parent, child string) bool) {
	for _, k := range t.keys {
		for _, c := range t.children[k] {
			if !fn(k, c) {
				return
			}
		}
	}
}

// Adjacency returns a copy of the adjacency map.
func (t *TitleBlock) Adjacency() map[string][]string {
	out := make(map[string][]string, len(t.children))
	for k, v := range t.children {
		out[k] = slices.Clone(v)
	}
	return out
}

// Chunk is an ordered collection of title blocks.
type Chunk struct {
	titles []*TitleBlock
	index  map[string]int
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{index: make(map[string]int)}
}

// Put registers t. A block with the same name is replaced in place,
// keeping its position.
func (c *Chunk) Put(t *TitleBlock) {
	if i, ok := c.index[t.Name]; ok {
		c.titles[i] = t
		return
	}
	c.index[t.Name] = len(c.titles)
	c.titles = append(c.titles, t)
}

// Titles returns the blocks in registration order.
func (c *Chunk) Titles() []*TitleBlock { return c.titles }

// Title returns the block named name.
func (c *Chunk) Title(name string) (*TitleBlock, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.titles[i], true
}

// Len returns the number of title blocks.
func (c *Chunk) Len() int { return len(c.titles) }

// Empty reports whether the chunk holds no title blocks.
func (c *Chunk) Empty() bool { return len(c.titles) == 0 }
