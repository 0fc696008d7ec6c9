package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depscope/pkg/errors"
)

func TestQueryCommands(t *testing.T) {
	report := writeReport(t)
	const runtime = "runtimeClasspath - Runtime classpath of source set 'main'."

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"title-for", []string{"title-for", "org:b:1.0"}, runtime + "\n"},
		{"children of node", []string{"children", "org:a:1.0"}, "org:b:1.0\n"},
		{"children of title", []string{"children", "testRuntimeClasspath"}, "org:d:1.0 (n)\n"},
		{"children unknown", []string{"children", "nothing"}, ""},
		{"circular", []string{"circular"}, runtime + "\n"},
		{"referencing", []string{"referencing", "org:d:1.0 (n)"}, "testRuntimeClasspath - Test runtime classpath\n"},
		{"autocomplete", []string{"autocomplete", "ORG:", "--limit", "2"}, "org:a:1.0\norg:b:1.0\n"},
		{"titles glob", []string{"titles", "--match", "test*"}, "testRuntimeClasspath - Test runtime classpath\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"query"}, tt.args...)
			args = append(args, "--report", report)
			got, err := execute(t, args...)
			if err != nil {
				t.Fatalf("query %v error: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("query %v = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestQueryCommand_JSON(t *testing.T) {
	out, err := execute(t, "query", "edges", "--json", "--report", writeReport(t))
	if err != nil {
		t.Fatalf("query edges error: %v", err)
	}
	var edges []string
	if err := json.Unmarshal([]byte(out), &edges); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if len(edges) != 2 {
		t.Errorf("edges = %v, want 2", edges)
	}
}

func TestQueryCommand_Coordinate(t *testing.T) {
	out, err := execute(t, "query", "coordinate", "org:c:1.0 -> 2.0", "--report", writeReport(t))
	if err != nil {
		t.Fatalf("coordinate error: %v", err)
	}
	for _, want := range []string{"group: org", "name: c", "version: 2.0", "requested: 1.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("coordinate output missing %q:\n%s", want, out)
		}
	}
}

func TestQueryCommand_FromExport(t *testing.T) {
	report := writeReport(t)
	export := filepath.Join(t.TempDir(), "deps.json")
	if _, err := execute(t, "parse", report, "-o", export); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := execute(t, "query", "children", "org:a:1.0", "--report", export)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if out != "org:b:1.0\n" {
		t.Errorf("children from export = %q", out)
	}
}

func TestQueryCommand_Errors(t *testing.T) {
	report := writeReport(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown title-for", []string{"query", "title-for", "nope", "--report", report}, errors.ErrCodeNotFound},
		{"unknown coordinate", []string{"query", "coordinate", "nope", "--report", report}, errors.ErrCodeNotFound},
		{"bad glob", []string{"query", "titles", "--match", "[", "--report", report}, errors.ErrCodeInvalidPattern},
		{"blank id", []string{"query", "children", " ", "--report", report}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestQueryCommand_RequiresReport(t *testing.T) {
	if _, err := execute(t, "query", "circular"); err == nil {
		t.Error("query without --report should fail")
	}
}
