package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/depscope/pkg/errors"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "sub/c.txt", "sub/d.log"} {
		p := filepath.Join(dir, name)
		os.MkdirAll(filepath.Dir(p), 0o755)
		os.WriteFile(p, []byte("x"), 0o644)
	}

	got, err := expandInputs([]string{filepath.Join(dir, "**", "*.txt"), filepath.Join(dir, "a.txt")})
	if err != nil {
		t.Fatalf("expandInputs() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.txt"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("expandInputs() = %v, want %v", got, want)
	}
}

func TestExpandInputs_NoMatch(t *testing.T) {
	_, err := expandInputs([]string{filepath.Join(t.TempDir(), "*.txt")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestOutputNames(t *testing.T) {
	got := outputNames([]string{"x/deps.txt", "y/deps.txt", "z/other.log"}, "json")
	want := []string{"deps.json", "deps-2.json", "other.json"}
	if !slices.Equal(got, want) {
		t.Errorf("outputNames() = %v, want %v", got, want)
	}
}

func TestParseCommand_JSON(t *testing.T) {
	out, err := execute(t, "parse", writeReport(t))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var doc struct {
		Chunks []struct {
			Titles []struct {
				Name string `json:"name"`
			} `json:"titles"`
		} `json:"chunks"`
		Circular []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"circular"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(doc.Chunks) == 0 || len(doc.Chunks[0].Titles) != 2 {
		t.Errorf("chunks = %+v, want 2 titles", doc.Chunks)
	}
	if len(doc.Circular) != 2 {
		t.Errorf("circular = %+v, want 2 edges", doc.Circular)
	}
}

func TestParseCommand_Batch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.txt", "two.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte(sampleReport), 0o644)
	}
	outDir := filepath.Join(t.TempDir(), "out")

	if _, err := execute(t, "parse", filepath.Join(dir, "*.txt"), "-o", outDir, "--format", "yaml"); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for _, name := range []string{"one.yaml", "two.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}
}

func TestParseCommand_Errors(t *testing.T) {
	report := writeReport(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"parse", report, "--format", "xml"}, errors.ErrCodeUnsupported},
		{"zero chunk size", []string{"parse", report, "--chunk-size", "0"}, errors.ErrCodeInvalidChunkSize},
		{"missing file", []string{"parse", filepath.Join(t.TempDir(), "none.txt")}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
