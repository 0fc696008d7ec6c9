package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/depscope/pkg/report"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderSpinner animates a one-line status on w while graphs render. The
// phase text changes as the pipeline moves from chunk to chunk.
type renderSpinner struct {
	w    io.Writer
	ctx  context.Context
	stop context.CancelFunc

	mu    sync.Mutex
	phase string
	width int // widest line written, cleared on finish

	stopped chan struct{}
	once    sync.Once
}

// newRenderSpinner returns a spinner showing phase. It stops by itself
// when ctx is done.
func newRenderSpinner(ctx context.Context, w io.Writer, phase string) *renderSpinner {
	ctx, stop := context.WithCancel(ctx)
	return &renderSpinner{
		w:       w,
		ctx:     ctx,
		stop:    stop,
		phase:   phase,
		stopped: make(chan struct{}),
	}
}

func (s *renderSpinner) start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for n := 0; ; n++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(n)
			}
		}
	}()
}

func (s *renderSpinner) draw(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w := utf8.RuneCountInString(s.phase) + 2; w > s.width {
		s.width = w
	}
	frame := spinnerFrames[n%len(spinnerFrames)]
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.phase))
}

// setPhase replaces the status text.
func (s *renderSpinner) setPhase(format string, args ...any) {
	s.mu.Lock()
	s.phase = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// chunk reports that chunk i of total is about to render. Its signature
// matches pipeline.RenderOptions.OnChunk.
func (s *renderSpinner) chunk(i, total int, c *report.Chunk) {
	s.setPhase("%s", chunkPhase(i, total, c.Len()))
}

func (s *renderSpinner) line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// finish stops the animation and clears the status line. It is safe to
// call more than once.
func (s *renderSpinner) finish() {
	s.once.Do(func() {
		s.stop()
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// chunkPhase formats the status for one chunk, e.g.
// "Rendering chunk 3/12 · 5 titles".
func chunkPhase(i, total, titles int) string {
	noun := "titles"
	if titles == 1 {
		noun = "title"
	}
	return fmt.Sprintf("Rendering chunk %d/%d · %d %s", i+1, total, titles, noun)
}
