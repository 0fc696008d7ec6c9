package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

func TestWriteCircularEdges(t *testing.T) {
	edges := cycles.NewEdgeSet(
		cycles.Edge{From: "org:a:1.0", To: "org:b:1.0"},
		cycles.Edge{From: "org:b:1.0", To: "org:a:1.0"},
		cycles.Edge{From: "org:c:1.0", To: "org:d:1.0"},
	).Edges()

	tests := []struct {
		name  string
		limit int
		lines int
		more  string
	}{
		{"all listed", 5, 3, ""},
		{"truncated", 2, 3, "… and 1 more"},
		{"none listed", 0, 1, "… and 3 more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeCircularEdges(&buf, edges, tt.limit)
			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			if len(lines) != tt.lines {
				t.Fatalf("writeCircularEdges() wrote %d lines, want %d:\n%s", len(lines), tt.lines, buf.String())
			}
			if tt.limit > 0 && !strings.Contains(lines[0], "org:a:1.0 → org:b:1.0") {
				t.Errorf("first line = %q, want the a → b edge", lines[0])
			}
			if tt.more != "" && !strings.Contains(lines[len(lines)-1], tt.more) {
				t.Errorf("last line = %q, want %q", lines[len(lines)-1], tt.more)
			}
		})
	}
}

func TestWriteCircularEdges_None(t *testing.T) {
	var buf bytes.Buffer
	writeCircularEdges(&buf, nil, maxListedCycles)
	if buf.Len() != 0 {
		t.Errorf("writeCircularEdges(nil) = %q, want nothing", buf.String())
	}
}

func TestSnapshotStatsLine(t *testing.T) {
	rep, err := report.Parse(strings.NewReader(cycleReport), report.Options{ChunkSize: report.DefaultChunkSize})
	if err != nil {
		t.Fatal(err)
	}

	plain, _ := session.NewSnapshot("deps.txt", rep, nil)
	circular, _ := session.NewSnapshot("deps.txt", rep, cycles.NewEdgeSet(cycles.Edge{From: "org:b:1.0", To: "org:a:1.0"}))

	tests := []struct {
		name    string
		snap    *session.Snapshot
		cached  bool
		want    []string
		notWant string
	}{
		{"fresh without cycles", plain, false, []string{"1 titles", "1 chunks", "fresh"}, "circular"},
		{"cached with cycles", circular, true, []string{"1 circular edges", "cached"}, "fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := snapshotStatsLine(tt.snap, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("snapshotStatsLine() = %q, missing %q", line, w)
				}
			}
			if strings.Contains(line, tt.notWant) {
				t.Errorf("snapshotStatsLine() = %q, should not contain %q", line, tt.notWant)
			}
		})
	}
}
