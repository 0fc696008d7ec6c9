// Package pipeline provides the ingestion and rendering pipeline for depscope.
//
// This package implements the read → parse → detect → publish flow shared by
// the CLI, the API server and watch mode. Centralizing it keeps caching,
// instrumentation and option defaults identical across entry points.
//
// # Architecture
//
// Ingestion consists of three stages:
//
//  1. Hash: the raw report bytes are hashed for the cache key
//  2. Parse: the report is classified line by line and chunked
//  3. Detect: circular edges are computed over the global union graph
//
// The result is an immutable [session.Snapshot]. Rendering turns snapshot
// chunks into DOT or SVG, caching SVG output by DOT content.
//
// # Usage
//
// Create a Runner and ingest a report:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.IngestFile(ctx, "deps.txt", pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	svgs, err := runner.Render(ctx, res.Snapshot, pipeline.RenderOptions{})
//
// Ingest many reports concurrently:
//
//	results, err := runner.IngestAll(ctx, paths, opts, 4, nil)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/render/nodelink"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watch
// =============================================================================

const (
	// DefaultChunkSize matches the upload endpoint's chunk size.
	DefaultChunkSize = report.DefaultChunkSize

	// DefaultPolicy is the flush policy name used when none is given.
	DefaultPolicy = "lines"

	// DefaultWorkers bounds concurrent ingestion in IngestAll.
	DefaultWorkers = 4

	// DefaultRenderTimeout bounds rendering of a single chunk.
	DefaultRenderTimeout = nodelink.DefaultTimeout
)

// Format constants for rendered output.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures ingestion. The zero value parses with defaults.
// This struct supports JSON serialization for API requests.
type Options struct {
	ChunkSize     int    `json:"chunk_size,omitempty"`
	Policy        string `json:"policy,omitempty"`
	IndentWidth   int    `json:"indent_width,omitempty"`
	Configuration string `json:"configuration,omitempty"`

	// Refresh bypasses the parse cache.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults fills unset fields and checks the rest.
// A zero chunk size means "use the default"; a negative one is an error.
func (o *Options) ValidateAndSetDefaults() error {
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if err := errors.ValidateChunkSize(o.ChunkSize); err != nil {
		return err
	}
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if _, err := report.ParsePolicy(o.Policy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid chunk policy %q", o.Policy)
	}
	if o.IndentWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "indent width must not be negative, got %d", o.IndentWidth)
	}
	return nil
}

// ReportOptions converts validated options to parser options.
func (o *Options) ReportOptions() report.Options {
	policy, _ := report.ParsePolicy(o.Policy)
	return report.Options{
		ChunkSize:     o.ChunkSize,
		Policy:        policy,
		Rules:         report.Rules{IndentWidth: o.IndentWidth},
		Configuration: o.Configuration,
	}
}

// ReportKeyOpts returns cache key options for a parse result.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		ChunkSize:     o.ChunkSize,
		Policy:        o.Policy,
		IndentWidth:   o.IndentWidth,
		Configuration: o.Configuration,
	}
}

// RenderOptions configures chunk rendering.
type RenderOptions struct {
	Format    string `json:"format,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`

	// Timeout bounds each chunk render. Zero uses DefaultRenderTimeout.
	Timeout time.Duration `json:"-"`

	// OnChunk, if set, is called by Render before each chunk is rendered.
	// i counts from zero.
	OnChunk func(i, total int, chunk *report.Chunk) `json:"-"`
}

// SetDefaults fills unset render options.
func (o *RenderOptions) SetDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultRenderTimeout
	}
}

// Result contains the outputs of one ingestion.
type Result struct {
	// Snapshot is the published-ready parse result.
	Snapshot *session.Snapshot

	// ContentHash is the SHA-256 of the raw report bytes.
	ContentHash string

	// Stats contains timing information.
	Stats Stats

	// CacheHit reports whether the parse came from cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ParseTime  time.Duration
	DetectTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: svg, dot)", format)
	}
	return nil
}

func (r *Result) String() string {
	s := r.Snapshot.Report.Stats
	return fmt.Sprintf("%s: %d titles, %d chunks, %d circular edges",
		r.Snapshot.Source, s.Titles, s.Chunks, r.Snapshot.Circular.Len())
}
