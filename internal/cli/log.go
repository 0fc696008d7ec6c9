// Package cli implements the depscope command-line interface.
//
// This package provides commands for parsing Gradle-style dependency
// reports, querying and rendering them, and serving them over HTTP. The CLI
// is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - parse: Parse reports (paths or globs) and export JSON or YAML
//   - query: Lookups over a report (titles, children, cycles, autocomplete)
//   - render: Generate SVG or DOT node-link diagrams per chunk
//   - serve: Run the HTTP API, optionally re-parsing a watched report
//   - browse: Explore titles interactively
//   - cache, config: Manage the parse-result cache and configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; otherwise
// log.level from the configuration applies. Finished steps are logged as
// key/value pairs with their elapsed time.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/pipeline"
)

// newLogger returns a logger writing to w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one CLI step. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg with keyvals and the elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", p.elapsed())...)
}

// parsed logs the outcome of ingesting one report, e.g.
//
//	Parsed report source=deps.txt titles=12 chunks=1 circular_edges=2 cached=false elapsed=41ms
func (p *progress) parsed(res *pipeline.Result) {
	snap := res.Snapshot
	p.done("Parsed report",
		"source", snap.Source,
		"titles", snap.Report.Stats.Titles,
		"chunks", snap.Report.Stats.Chunks,
		"circular_edges", snap.Circular.Len(),
		"cached", res.CacheHit,
	)
	if res.Stats.ParseTime > 0 {
		p.logger.Debug("timings", "parse", res.Stats.ParseTime, "detect", res.Stats.DetectTime)
	}
}
