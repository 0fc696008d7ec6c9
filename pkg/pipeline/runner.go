package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/errors"
	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/observability"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// IngestFile reads a report from disk and ingests it.
func (r *Runner) IngestFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "report not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read report %s", path)
	}
	return r.Ingest(ctx, path, data, opts)
}

// Ingest parses a report and detects circular edges, returning a snapshot
// ready to publish. Results are cached by content hash and options.
func (r *Runner) Ingest(ctx context.Context, source string, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{ContentHash: cache.Hash(data)}
	key := r.Keyer.ReportKey(res.ContentHash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if p, ok := r.cached(ctx, key); ok {
			snap, err := session.NewSnapshot(source, p.Report, p.Circular)
			if err == nil {
				res.Snapshot = snap
				res.CacheHit = true
				r.Logger.Debug("report cache hit", "source", source, "key", key)
				return res, nil
			}
		}
	}

	// Stage 1: Parse
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source)
	parseStart := time.Now()
	rep, err := report.Parse(bytes.NewReader(data), opts.ReportOptions())
	res.Stats.ParseTime = time.Since(parseStart)
	if err != nil {
		hooks.OnParseComplete(ctx, source, 0, 0, res.Stats.ParseTime, err)
		return nil, err
	}
	hooks.OnParseComplete(ctx, source, rep.Stats.Titles, rep.Stats.Lines, res.Stats.ParseTime, nil)

	r.Logger.Info("parsed report",
		"source", source,
		"titles", rep.Stats.Titles,
		"dependencies", rep.Stats.DependencyLines,
		"chunks", rep.Stats.Chunks,
		"duration", res.Stats.ParseTime)
	if rep.Stats.Orphans > 0 {
		r.Logger.Warn("dropped orphan lines", "source", source, "count", rep.Stats.Orphans)
	}

	// Stage 2: Detect
	detectStart := time.Now()
	circular := cycles.Detect(rep.Chunks)
	res.Stats.DetectTime = time.Since(detectStart)
	hooks.OnDetectComplete(ctx, source, circular.Len(), res.Stats.DetectTime)

	r.Logger.Info("detected cycles",
		"circular_edges", circular.Len(),
		"duration", res.Stats.DetectTime)

	snap, err := session.NewSnapshot(source, rep, circular)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build snapshot")
	}
	res.Snapshot = snap

	if encoded, err := pkgio.Marshal(snap.Parsed()); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.TTLReport); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(encoded))
		}
	}
	return res, nil
}

func (r *Runner) cached(ctx context.Context, key string) (pkgio.Parsed, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return pkgio.Parsed{}, false
	}
	p, err := pkgio.Unmarshal(data)
	if err != nil {
		// Corrupt entry: fall through to a fresh parse.
		observability.Cache().OnCacheMiss(ctx, key)
		return pkgio.Parsed{}, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return p, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
