package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/report"
)

// ReadJSON decodes a JSON document from r.
//
// Title blocks are rebuilt in their stored node order, so iteration over the
// result matches the report that was exported. Children that have no node
// entry of their own are registered as leaves. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Parsed, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Parsed{}, fmt.Errorf("decode: %w", err)
	}
	return fromDocument(doc), nil
}

// ReadYAML decodes a YAML document from r.
func ReadYAML(r io.Reader) (Parsed, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Parsed{}, fmt.Errorf("decode: %w", err)
	}
	return fromDocument(doc), nil
}

// ImportJSON reads the JSON document at path.
func ImportJSON(path string) (Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Parsed{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Unmarshal decodes bytes produced by [Marshal].
func Unmarshal(data []byte) (Parsed, error) {
	return ReadJSON(bytes.NewReader(data))
}

func fromDocument(doc document) Parsed {
	rep := &report.Report{
		Stats:       doc.Stats,
		Coordinates: doc.Coordinates,
		Chunks:      make([]*report.Chunk, 0, len(doc.Chunks)),
	}
	if rep.Coordinates == nil {
		rep.Coordinates = make(map[string]report.Coordinate)
	}

	for _, c := range doc.Chunks {
		ch := report.NewChunk()
		for _, t := range c.Titles {
			tb := report.NewTitleBlock(t.Name)
			for _, n := range t.Nodes {
				tb.Ensure(n.ID)
			}
			for _, n := range t.Nodes {
				for _, child := range n.Children {
					tb.AddChild(n.ID, child)
				}
			}
			for _, r := range t.Roots {
				tb.AddRoot(r)
			}
			ch.Put(tb)
		}
		rep.Chunks = append(rep.Chunks, ch)
	}
	if len(rep.Chunks) == 0 {
		rep.Chunks = append(rep.Chunks, report.NewChunk())
	}

	return Parsed{
		Source:   doc.Source,
		Report:   rep,
		Circular: cycles.NewEdgeSet(doc.Circular...),
	}
}
