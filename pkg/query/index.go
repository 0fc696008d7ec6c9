// Package query answers read-only lookups over a parsed report.
//
// An [Index] is built once from the chunk sequence, the coordinate cache and
// the circular edge set. It never mutates them, so a single Index may serve
// any number of concurrent readers. Lookups that find nothing return empty
// results or a false flag; they are not errors.
package query

import (
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/report"
)

// DefaultAutocompleteLimit caps suggestions served to the UI.
const DefaultAutocompleteLimit = 10

// Index serves lookups over one parsed report.
type Index struct {
	chunks      []*report.Chunk
	coordinates map[string]report.Coordinate
	circular    *cycles.EdgeSet

	// identifiers lists every key or child once, in first-seen order.
	identifiers []string
}

// New builds an index. circular may be nil when no detection ran.
func New(chunks []*report.Chunk, coordinates map[string]report.Coordinate, circular *cycles.EdgeSet) *Index {
	idx := &Index{chunks: chunks, coordinates: coordinates, circular: circular}

	seen := make(map[string]bool)
	idx.eachTitle(func(_ int, t *report.TitleBlock) bool {
		for _, id := range t.Keys() {
			if !seen[id] {
				seen[id] = true
				idx.identifiers = append(idx.identifiers, id)
			}
		}
		return true
	})
	return idx
}

// eachTitle walks title blocks in chunk then title order until fn returns false.
func (x *Index) eachTitle(fn func(chunk int, t *report.TitleBlock) bool) {
	for i, c := range x.chunks {
		for _, t := range c.Titles() {
			if !fn(i, t) {
				return
			}
		}
	}
}

// Circular returns the circular edge set.
func (x *Index) Circular() *cycles.EdgeSet { return x.circular }

// TitleFor returns the first title whose adjacency has id as a key.
func (x *Index) TitleFor(id string) (string, bool) {
	var (
		name  string
		found bool
	)
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		if t.Has(id) {
			name, found = t.Name, true
			return false
		}
		return true
	})
	return name, found
}

// ChildrenOf returns the direct children of id.
//
// Title names are checked first: a title equal to or containing id, and
// starting with titlePrefix when one is given, yields that title's root
// dependencies. Otherwise the first adjacency key equal to or containing id
// yields its children. The flag is false only when nothing matched, so a
// known leaf returns an empty slice and true.
func (x *Index) ChildrenOf(id, titlePrefix string) ([]string, bool) {
	var (
		out   []string
		found bool
	)
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		if matches(t.Name, id) && (titlePrefix == "" || strings.HasPrefix(t.Name, titlePrefix)) {
			out, found = slices.Clone(t.Roots), true
			return false
		}
		return true
	})
	if found {
		return nonNil(out), true
	}

	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		for _, k := range t.Keys() {
			if matches(k, id) {
				children, _ := t.Children(k)
				out, found = slices.Clone(children), true
				return false
			}
		}
		return true
	})
	return nonNil(out), found
}

func matches(candidate, id string) bool {
	return candidate == id || strings.Contains(candidate, id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// TitlesWithCircularDependencies returns each title holding at least one
// circular edge, once, in chunk then title order.
func (x *Index) TitlesWithCircularDependencies() []string {
	out := []string{}
	if x.circular.Len() == 0 {
		return out
	}
	seen := make(map[string]bool)
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		if seen[t.Name] {
			return true
		}
		t.EachEdge(func(parent, child string) bool {
			if x.circular.Has(parent, child) {
				seen[t.Name] = true
				out = append(out, t.Name)
				return false
			}
			return true
		})
		return true
	})
	return out
}

// TitlesReferencing returns every title where id is a key or a child.
func (x *Index) TitlesReferencing(id string) []string {
	out := []string{}
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		if t.Has(id) {
			out = append(out, t.Name)
		}
		return true
	})
	return out
}

// SearchTitle returns the first title referencing id. Every child is also
// an adjacency key, so this is the same walk as [Index.TitleFor].
func (x *Index) SearchTitle(id string) (string, bool) {
	return x.TitleFor(id)
}

// Autocomplete returns up to limit identifiers containing term, compared
// case-insensitively, in first-seen order. Title names are never returned.
func (x *Index) Autocomplete(term string, limit int) []string {
	out := []string{}
	if limit <= 0 {
		return out
	}
	needle := strings.ToLower(term)
	titles := x.titleSet()
	for _, id := range x.identifiers {
		if titles[id] {
			continue
		}
		if strings.Contains(strings.ToLower(id), needle) {
			out = append(out, id)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func (x *Index) titleSet() map[string]bool {
	set := make(map[string]bool)
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		set[t.Name] = true
		return true
	})
	return set
}

// Titles returns every title name in chunk then title order.
func (x *Index) Titles() []string {
	out := []string{}
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		out = append(out, t.Name)
		return true
	})
	return out
}

// ChunkForTitle returns the index of the first chunk holding title.
func (x *Index) ChunkForTitle(title string) (int, bool) {
	for i, c := range x.chunks {
		if _, ok := c.Title(title); ok {
			return i, true
		}
	}
	return -1, false
}

// Title returns the first block named title.
func (x *Index) Title(title string) (*report.TitleBlock, bool) {
	for _, c := range x.chunks {
		if t, ok := c.Title(title); ok {
			return t, true
		}
	}
	return nil, false
}

// Coordinate returns the cached coordinate of id.
func (x *Index) Coordinate(id string) (report.Coordinate, bool) {
	c, ok := x.coordinates[id]
	return c, ok
}

// MatchTitles returns the titles matching a glob pattern such as
// "*Classpath*". An empty pattern matches every title.
func (x *Index) MatchTitles(pattern string) ([]string, error) {
	if pattern == "" {
		return x.Titles(), nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPattern, err, "compile title pattern %q", pattern)
	}
	out := []string{}
	x.eachTitle(func(_ int, t *report.TitleBlock) bool {
		if g.Match(t.Name) {
			out = append(out, t.Name)
		}
		return true
	})
	return out, nil
}
