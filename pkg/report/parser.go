package report

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depscope/pkg/errors"
)

// DefaultChunkSize is the line budget used by the upload endpoint.
const DefaultChunkSize = 1000

// maxLineSize bounds a single report line.
const maxLineSize = 1 << 20

// Options configures a parse.
type Options struct {
	// ChunkSize is the number of dependency lines per chunk. Must be positive.
	ChunkSize int
	// Policy selects the flush behaviour. The zero value is FlushByLines.
	Policy Policy
	// Rules overrides individual matchers; unset fields use DefaultRules.
	Rules Rules
	// Configuration is the sticky label before the first configuration
	// change. Empty means DefaultConfiguration.
	Configuration string
}

// DefaultOptions returns options matching the upload endpoint.
func DefaultOptions() Options {
	return Options{ChunkSize: DefaultChunkSize, Policy: FlushByLines}
}

// Stats summarizes one parse.
type Stats struct {
	Lines           int `json:"lines" yaml:"lines"`
	DependencyLines int `json:"dependency_lines" yaml:"dependency_lines"`
	Roots           int `json:"roots" yaml:"roots"`
	Orphans         int `json:"orphans" yaml:"orphans"`
	Titles          int `json:"titles" yaml:"titles"`
	Chunks          int `json:"chunks" yaml:"chunks"`
}

// Report is the result of parsing one dependency report.
type Report struct {
	Chunks      []*Chunk
	Coordinates map[string]Coordinate
	Stats       Stats
}

// stackEntry is one open ancestor.
type stackEntry struct {
	id    string
	depth int
}

// State is the explicit parser state threaded through [State.Apply].
// A State belongs to a single parse and is not safe for concurrent use.
type State struct {
	configuration string
	title         *TitleBlock
	stack         []stackEntry
	chunks        *chunker
	coords        map[string]Coordinate
	stats         Stats
}

// NewState returns an empty state for opts. The chunk size must already be
// validated.
func NewState(opts Options) *State {
	cfg := opts.Configuration
	if cfg == "" {
		cfg = DefaultConfiguration
	}
	return &State{
		configuration: cfg,
		chunks:        newChunker(opts.ChunkSize, opts.Policy),
		coords:        make(map[string]Coordinate),
	}
}

// Configuration returns the sticky configuration label.
func (s *State) Configuration() string { return s.configuration }

// Apply feeds one classified line into the state.
func (s *State) Apply(l Line) {
	s.stats.Lines++

	switch l.Kind {
	case KindNoise, KindBlank:
		return
	case KindConfigChange:
		s.configuration = l.Configuration
		return
	case KindTitleStart:
		s.title = NewTitleBlock(l.Text)
		s.stack = s.stack[:0]
		s.chunks.register(s.title)
		s.stats.Titles++
		return
	}

	if s.title == nil {
		return
	}

	switch l.Kind {
	case KindRoot:
		s.stack = append(s.stack[:0], stackEntry{id: l.Text, depth: 0})
		s.title.AddRoot(l.Text)
		s.resolve(l.Text)
		s.stats.Roots++
	case KindNested:
		for len(s.stack) > 0 && s.stack[len(s.stack)-1].depth >= l.Depth {
			s.stack = s.stack[:len(s.stack)-1]
		}
		if len(s.stack) == 0 {
			s.stats.Orphans++
		} else {
			parent := s.stack[len(s.stack)-1].id
			s.title.AddChild(parent, l.Text)
			s.resolve(l.Text)
			s.stack = append(s.stack, stackEntry{id: l.Text, depth: l.Depth})
		}
	default:
		return
	}

	s.stats.DependencyLines++
	s.chunks.count()
}

// resolve caches the coordinate of id; the first configuration seen wins.
func (s *State) resolve(id string) {
	if _, ok := s.coords[id]; ok {
		return
	}
	s.coords[id] = ParseCoordinate(id, s.configuration)
}

// Finish closes the state and returns the report. The state must not be
// used afterwards.
func (s *State) Finish() *Report {
	chunks := s.chunks.finish()
	s.stats.Chunks = len(chunks)
	s.stack = nil
	return &Report{Chunks: chunks, Coordinates: s.coords, Stats: s.stats}
}

// Parse reads a whole report from r.
//
// A non-positive chunk size is rejected before anything is read. Input that
// cannot be read or holds no non-blank line is an error and no partial
// report is returned. Structural anomalies are never errors.
func Parse(r io.Reader, opts Options) (*Report, error) {
	if err := errors.ValidateChunkSize(opts.ChunkSize); err != nil {
		return nil, err
	}
	rules := opts.Rules.withDefaults()
	state := NewState(opts)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	content := false
	for sc.Scan() {
		line := sc.Text()
		if !content && strings.TrimSpace(line) != "" {
			content = true
		}
		state.Apply(Classify(line, rules))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read report")
	}
	if !content {
		return nil, errors.New(errors.ErrCodeEmptyInput, "report is empty")
	}
	return state.Finish(), nil
}

// ParseString parses an in-memory report.
func ParseString(s string, opts Options) (*Report, error) {
	return Parse(strings.NewReader(s), opts)
}

// ParseFile parses the report at path.
func ParseFile(path string, opts Options) (*Report, error) {
	if err := errors.ValidateChunkSize(opts.ChunkSize); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Titles returns every title block across all chunks in order.
func (r *Report) Titles() []*TitleBlock {
	var out []*TitleBlock
	for _, c := range r.Chunks {
		out = append(out, c.Titles()...)
	}
	return out
}
