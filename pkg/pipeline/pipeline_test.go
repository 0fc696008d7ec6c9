package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/report"
)

const sample = `app - runtime
+--- org:a:1.0
|    \--- org:b:1.0
|         \--- org:a:1.0
\--- org:c:1.0
lib - compile
\--- org:d:1.0 (n)
`

func quietRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"zero value", Options{}, ""},
		{"explicit", Options{ChunkSize: 5, Policy: "titles"}, ""},
		{"negative chunk size", Options{ChunkSize: -1}, errors.ErrCodeInvalidChunkSize},
		{"unknown policy", Options{Policy: "bogus"}, errors.ErrCodeInvalidConfig},
		{"negative indent", Options{IndentWidth: -2}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error = %v", err)
				}
				if tt.opts.ChunkSize <= 0 || tt.opts.Policy == "" {
					t.Errorf("defaults not applied: %+v", tt.opts)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestIngest(t *testing.T) {
	r := quietRunner(t, nil)
	res, err := r.Ingest(context.Background(), "deps.txt", []byte(sample), Options{})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.CacheHit {
		t.Error("CacheHit = true with NullCache")
	}
	snap := res.Snapshot
	if got := snap.Report.Stats.Titles; got != 2 {
		t.Errorf("Titles = %d, want 2", got)
	}
	if !snap.Circular.Has("org:a:1.0", "org:b:1.0") || !snap.Circular.Has("org:b:1.0", "org:a:1.0") {
		t.Errorf("Circular = %v, want a<->b", snap.Circular.Strings())
	}
	if title, ok := snap.Index.TitleFor("org:d:1.0 (n)"); !ok || title != "lib - compile" {
		t.Errorf("TitleFor(d) = %q, %v", title, ok)
	}
	if res.ContentHash != cache.Hash([]byte(sample)) {
		t.Error("ContentHash does not match input")
	}
}

func TestIngest_Errors(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()

	if _, err := r.Ingest(ctx, "x", []byte(sample), Options{ChunkSize: -3}); !errors.Is(err, errors.ErrCodeInvalidChunkSize) {
		t.Errorf("negative chunk size: err = %v", err)
	}
	if _, err := r.Ingest(ctx, "x", []byte("\n\n  \n"), Options{}); !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("blank input: err = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Ingest(cancelled, "x", []byte(sample), Options{}); err == nil {
		t.Error("cancelled context: err = nil")
	}
}

func TestIngest_Cache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := quietRunner(t, fc)
	ctx := context.Background()

	first, err := r.Ingest(ctx, "a.txt", []byte(sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Ingest(ctx, "b.txt", []byte(sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if second.Snapshot.Source != "b.txt" {
		t.Errorf("Source = %q, want b.txt", second.Snapshot.Source)
	}
	if second.Snapshot.ID == first.Snapshot.ID {
		t.Error("cached ingest reused the session ID")
	}
	if got, want := second.Snapshot.Circular.Strings(), first.Snapshot.Circular.Strings(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("cached Circular = %v, want %v", got, want)
	}

	// Different options miss.
	third, _ := r.Ingest(ctx, "a.txt", []byte(sample), Options{ChunkSize: 2})
	if third.CacheHit {
		t.Error("different chunk size hit the cache")
	}
	refreshed, _ := r.Ingest(ctx, "a.txt", []byte(sample), Options{Refresh: true})
	if refreshed.CacheHit {
		t.Error("Refresh hit the cache")
	}
}

func TestIngestFile_Missing(t *testing.T) {
	r := quietRunner(t, nil)
	_, err := r.IngestFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("IngestFile() err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestIngestAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(sample), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.txt"))

	r := quietRunner(t, nil)
	calls := 0
	results, err := r.IngestAll(context.Background(), paths, Options{}, 2, func(BatchResult) { calls++ })
	if err != nil {
		t.Fatalf("IngestAll() error: %v", err)
	}
	if calls != len(paths) {
		t.Errorf("progress called %d times, want %d", calls, len(paths))
	}
	for i, br := range results[:3] {
		if br.Err != nil || br.Result == nil {
			t.Errorf("results[%d] = %+v, want success", i, br)
			continue
		}
		if br.Path != paths[i] {
			t.Errorf("results[%d].Path = %s, want %s", i, br.Path, paths[i])
		}
	}
	if !errors.Is(results[3].Err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing report err = %v", results[3].Err)
	}

	ids := map[string]bool{}
	for _, br := range results[:3] {
		ids[br.Result.Snapshot.ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("got %d distinct sessions, want 3", len(ids))
	}
}

func TestRender_DOT(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()
	res, err := r.Ingest(ctx, "x", []byte(sample), Options{})
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Render(ctx, res.Snapshot, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(out) != len(res.Snapshot.Report.Chunks) {
		t.Fatalf("Render() returned %d artifacts, want %d", len(out), len(res.Snapshot.Report.Chunks))
	}
	if !strings.Contains(string(out[0]), `"org:a:1.0" -> "org:b:1.0" [color=red, style=bold];`) {
		t.Errorf("circular edge not highlighted:\n%s", out[0])
	}

	if _, err := r.Render(ctx, res.Snapshot, RenderOptions{Format: "png"}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Render(png) err = %v", err)
	}
}

func TestRender_OnChunk(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()
	res, err := r.Ingest(ctx, "x", []byte(sample), Options{ChunkSize: 1})
	if err != nil {
		t.Fatal(err)
	}

	var seen []int
	var titles int
	_, err = r.Render(ctx, res.Snapshot, RenderOptions{
		Format: FormatDOT,
		OnChunk: func(i, total int, chunk *report.Chunk) {
			if total != len(res.Snapshot.Report.Chunks) {
				t.Errorf("OnChunk total = %d, want %d", total, len(res.Snapshot.Report.Chunks))
			}
			seen = append(seen, i)
			titles += chunk.Len()
		},
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(seen) != len(res.Snapshot.Report.Chunks) {
		t.Fatalf("OnChunk called %d times, want %d", len(seen), len(res.Snapshot.Report.Chunks))
	}
	for i, got := range seen {
		if got != i {
			t.Errorf("OnChunk call %d got index %d", i, got)
		}
	}
	if titles != len(res.Snapshot.Report.Titles()) {
		t.Errorf("titles seen = %d, want %d", titles, len(res.Snapshot.Report.Titles()))
	}
}

func TestRenderFocus(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()
	res, _ := r.Ingest(ctx, "x", []byte(sample), Options{})

	dot, err := r.RenderFocus(ctx, res.Snapshot, "lib - compile", RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("RenderFocus() error: %v", err)
	}
	if strings.Contains(string(dot), "app - runtime") {
		t.Error("focus graph contains another title")
	}

	if _, err := r.RenderFocus(ctx, res.Snapshot, "nope", RenderOptions{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("RenderFocus(unknown) err = %v, want NOT_FOUND", err)
	}
}

func TestRenderTitles(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()
	res, _ := r.Ingest(ctx, "x", []byte(sample), Options{})

	dot, err := r.RenderTitles(ctx, res.Snapshot, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("RenderTitles() error: %v", err)
	}
	for _, title := range []string{"app - runtime", "lib - compile"} {
		if !strings.Contains(string(dot), title) {
			t.Errorf("RenderTitles() missing %q", title)
		}
	}
}
