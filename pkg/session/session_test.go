package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/report"
)

const sample = `main - deps
+--- A
|    \--- B
\--- B
     \--- A
`

func snapshot(t *testing.T, source string) *Snapshot {
	t.Helper()
	rep, err := report.ParseString(sample, report.DefaultOptions())
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	snap, err := NewSnapshot(source, rep, cycles.Detect(rep.Chunks))
	if err != nil {
		t.Fatalf("NewSnapshot() error: %v", err)
	}
	return snap
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

func TestNewSnapshot(t *testing.T) {
	snap := snapshot(t, "deps.txt")
	if snap.ID == "" {
		t.Error("ID is empty")
	}
	if snap.Index == nil {
		t.Fatal("Index is nil")
	}
	if !snap.Circular.Has("A", "B") {
		t.Errorf("Circular = %v, want A->B", snap.Circular.Strings())
	}
	if _, err := NewSnapshot("x", nil, nil); err == nil {
		t.Error("NewSnapshot(nil) returned nil error")
	}
}

func TestNewSnapshot_UniqueIDs(t *testing.T) {
	a, b := snapshot(t, "a"), snapshot(t, "b")
	if a.ID == b.ID {
		t.Errorf("IDs collide: %s", a.ID)
	}
}

func TestManager_LatestAndGet(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryStore(4), quietLogger())

	if _, err := mgr.Get(ctx, ""); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(\"\") before publish: err = %v, want SESSION_NOT_FOUND", err)
	}

	first := snapshot(t, "first")
	second := snapshot(t, "second")
	for _, s := range []*Snapshot{first, second} {
		if err := mgr.Publish(ctx, s); err != nil {
			t.Fatalf("Publish() error: %v", err)
		}
	}

	if got := mgr.Latest(); got != second {
		t.Errorf("Latest() = %v, want second", got.Source)
	}
	got, err := mgr.Get(ctx, "")
	if err != nil || got != second {
		t.Errorf("Get(\"\") = %v, %v; want second", got, err)
	}
	got, err = mgr.Get(ctx, first.ID)
	if err != nil || got != first {
		t.Errorf("Get(first) = %v, %v; want first", got, err)
	}
	if _, err := mgr.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(missing) err = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(nil, quietLogger())
	snap := snapshot(t, "x")
	if err := mgr.Publish(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if mgr.Latest() != nil {
		t.Error("Latest() not cleared after deleting it")
	}
}

func TestManager_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryStore(0), quietLogger())
	if err := mgr.Publish(ctx, snapshot(t, "seed")); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap, err := mgr.Get(ctx, "")
				if err != nil {
					t.Errorf("Get() error: %v", err)
					return
				}
				if _, ok := snap.Index.TitleFor("A"); !ok {
					t.Error("snapshot missing title for A")
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		if err := mgr.Publish(ctx, snapshot(t, "next")); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
}

func TestMemoryStore_Evicts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	a, b, c := snapshot(t, "a"), snapshot(t, "b"), snapshot(t, "c")
	for _, snap := range []*Snapshot{a, b, c} {
		s.Set(ctx, snap)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if got, _ := s.Get(ctx, a.ID); got != nil {
		t.Error("oldest snapshot not evicted")
	}
	if got, _ := s.Get(ctx, c.ID); got != c {
		t.Error("newest snapshot missing")
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	snap := snapshot(t, "deps.txt")
	if err := store.Set(ctx, snap); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := store.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil")
	}
	if got.ID != snap.ID || got.Source != "deps.txt" {
		t.Errorf("Get() = %s/%s, want %s/deps.txt", got.ID, got.Source, snap.ID)
	}
	if got.Circular.Len() != snap.Circular.Len() {
		t.Errorf("Circular.Len() = %d, want %d", got.Circular.Len(), snap.Circular.Len())
	}
	children, ok := got.Index.ChildrenOf("A", "")
	if !ok || len(children) != 1 || children[0] != "B" {
		t.Errorf("ChildrenOf(A) = %v, %v; want [B]", children, ok)
	}

	if err := store.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, snap.ID); got != nil {
		t.Error("Get() after Delete returned a snapshot")
	}
}

func TestFileStore_Missing(t *testing.T) {
	store, _ := NewFileStore(t.TempDir(), 0)
	got, err := store.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestFileStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	expired, _ := NewFileStore(dir, time.Nanosecond)
	snap := snapshot(t, "old")
	if err := expired.Set(ctx, snap); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o600)
	time.Sleep(time.Millisecond)

	n, err := expired.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Cleanup() = %d, want 2", n)
	}
}
