package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.txt")
	if err := os.WriteFile(path, []byte("a - b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	reloaded := make(chan string, 4)
	w, err := New(path, func(ctx context.Context, p string) error {
		calls.Add(1)
		reloaded <- p
		return nil
	}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// A burst of writes collapses into one reload.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("a - b\n+--- x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-reloaded:
		want, _ := filepath.Abs(path)
		if got != want {
			t.Errorf("reload path = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("reload called %d times, want 1", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.txt")
	os.WriteFile(path, []byte("x"), 0o644)

	var calls atomic.Int32
	w, err := New(path, func(context.Context, string) error {
		calls.Add(1)
		return nil
	}, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(20 * time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	os.WriteFile(filepath.Join(dir, "other.txt"), []byte("y"), 0o644)
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("reload called %d times for unrelated file", n)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.txt")
	os.WriteFile(path, []byte("x"), 0o644)
	w, err := New(path, func(context.Context, string) error { return nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
