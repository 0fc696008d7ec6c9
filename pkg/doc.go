// Package pkg provides the core libraries for depscope, a parser and query
// engine for Gradle-style dependency reports.
//
// # Overview
//
// A dependency report is indented text: configuration titles followed by
// "+---" and "\---" trees of group:name:version coordinates. depscope turns
// that text into chunks of adjacency maps, finds circular edges and answers
// lookups over the result.
//
// # Architecture
//
// The data flow through depscope:
//
//	Report text (file, upload, watched file)
//	         ↓
//	    [report] package (classify lines, build trees, chunk)
//	         ↓
//	    [cycles] package (detect circular edges per chunk)
//	         ↓
//	    [query] package (title, child, reference and search lookups)
//	         ↓
//	    [session] package (snapshots kept in memory, file, redis or mongo)
//	         ↓
//	    JSON/YAML exports ([io]), SVG/DOT diagrams ([render/nodelink])
//
// [pipeline] ties these together with caching ([cache]), hooks
// ([observability]) and structured errors ([errors]).
//
// # Quick Start
//
// Parse a report and look up the title that owns a dependency:
//
//	rep, err := report.ParseString(text, report.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	circular := cycles.Detect(rep.Chunks)
//	idx := query.New(rep.Chunks, rep.Coordinates, circular)
//	title, ok := idx.TitleFor("org.slf4j:slf4j-api:2.0.9")
//
// With caching and session publishing, use a pipeline runner:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.IngestFile(ctx, "deps.txt", pipeline.DefaultOptions())
//	svgs, err := runner.Render(ctx, res.Snapshot, pipeline.RenderOptions{})
//
// [report]: github.com/matzehuels/depscope/pkg/report
// [cycles]: github.com/matzehuels/depscope/pkg/cycles
// [query]: github.com/matzehuels/depscope/pkg/query
// [session]: github.com/matzehuels/depscope/pkg/session
// [io]: github.com/matzehuels/depscope/pkg/io
// [render/nodelink]: github.com/matzehuels/depscope/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/depscope/pkg/pipeline
// [cache]: github.com/matzehuels/depscope/pkg/cache
// [observability]: github.com/matzehuels/depscope/pkg/observability
// [errors]: github.com/matzehuels/depscope/pkg/errors
package pkg
