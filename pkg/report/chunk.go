package report

import (
	"fmt"
	"strings"
)

// Policy decides when the current chunk is flushed.
type Policy int

const (
	// FlushByLines flushes as soon as the per-chunk line counter reaches the
	// chunk size, even in the middle of a title. The open title stays
	// registered in the chunk it was created in and later lines keep
	// extending that same block. A flush that leaves nothing behind emits no
	// chunk.
	FlushByLines Policy = iota
	// FlushOnTitleBoundary flushes only when a new title starts and the
	// counter has reached the chunk size, so a title never spans chunks.
	FlushOnTitleBoundary
)

func (p Policy) String() string {
	switch p {
	case FlushByLines:
		return "lines"
	case FlushOnTitleBoundary:
		return "titles"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps "lines" or "titles" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lines":
		return FlushByLines, nil
	case "titles", "title", "boundary":
		return FlushOnTitleBoundary, nil
	default:
		return FlushByLines, fmt.Errorf("unknown chunk policy %q (want lines or titles)", s)
	}
}

// chunker owns the chunk sequence and the per-chunk line counter.
type chunker struct {
	size    int
	policy  Policy
	current *Chunk
	done    []*Chunk
	lines   int
}

func newChunker(size int, policy Policy) *chunker {
	return &chunker{size: size, policy: policy, current: NewChunk()}
}

// register adds a new title block to the current chunk, flushing first when
// the title-boundary policy says so.
func (c *chunker) register(t *TitleBlock) {
	if c.policy == FlushOnTitleBoundary && c.lines >= c.size && !c.current.Empty() {
		c.flush()
	}
	c.current.Put(t)
}

// count records one processed dependency line.
func (c *chunker) count() {
	c.lines++
	if c.policy == FlushByLines && c.lines >= c.size {
		c.flush()
	}
}

// flush closes the current chunk. A chunk without titles is dropped; that
// happens under FlushByLines when one title spans several budgets.
func (c *chunker) flush() {
	if !c.current.Empty() {
		c.done = append(c.done, c.current)
		c.current = NewChunk()
	}
	c.lines = 0
}

// finish returns the sequence. It always has at least one chunk.
func (c *chunker) finish() []*Chunk {
	out := c.done
	if !c.current.Empty() || len(out) == 0 {
		out = append(out, c.current)
	}
	return out
}
