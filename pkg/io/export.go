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

// Parsed is the serializable outcome of one parse.
type Parsed struct {
	Source   string
	Report   *report.Report
	Circular *cycles.EdgeSet
}

type document struct {
	Source      string                       `json:"source,omitempty" yaml:"source,omitempty"`
	Stats       report.Stats                 `json:"stats" yaml:"stats"`
	Chunks      []chunk                      `json:"chunks" yaml:"chunks"`
	Coordinates map[string]report.Coordinate `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Circular    []cycles.Edge                `json:"circular,omitempty" yaml:"circular,omitempty"`
}

type chunk struct {
	Titles []title `json:"titles" yaml:"titles"`
}

type title struct {
	Name  string   `json:"name" yaml:"name"`
	Roots []string `json:"roots,omitempty" yaml:"roots,omitempty"`
	Nodes []node   `json:"nodes" yaml:"nodes"`
}

type node struct {
	ID       string   `json:"id" yaml:"id"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

func toDocument(p Parsed) document {
	doc := document{Source: p.Source, Circular: p.Circular.Edges()}
	if p.Report == nil {
		return doc
	}
	doc.Stats = p.Report.Stats
	doc.Coordinates = p.Report.Coordinates
	doc.Chunks = make([]chunk, len(p.Report.Chunks))
	for i, c := range p.Report.Chunks {
		titles := make([]title, 0, c.Len())
		for _, t := range c.Titles() {
			tt := title{Name: t.Name, Roots: t.Roots, Nodes: make([]node, 0, t.Len())}
			for _, id := range t.Keys() {
				children, _ := t.Children(id)
				tt.Nodes = append(tt.Nodes, node{ID: id, Children: children})
			}
			titles = append(titles, tt)
		}
		doc.Chunks[i] = chunk{Titles: titles}
	}
	return doc
}

// WriteJSON encodes p as an indented JSON document and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(p Parsed, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(p)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes p as YAML and writes it to w.
func WriteYAML(p Parsed, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(p)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes p to a JSON file at path.
func ExportJSON(p Parsed, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(p, w) })
}

// ExportYAML writes p to a YAML file at path.
func ExportYAML(p Parsed, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteYAML(p, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Marshal returns the compact JSON encoding of p.
func Marshal(p Parsed) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(toDocument(p)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
