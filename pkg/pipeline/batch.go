package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of ingesting one report in a batch.
type BatchResult struct {
	Path   string
	Result *Result
	Err    error
}

// IngestAll ingests every path as an independent report with at most
// workers running at once. A failing report does not stop the others; its
// error is recorded in the corresponding BatchResult. Results keep the
// order of paths. progress, if non-nil, is called once per finished report
// from a single goroutine at a time.
//
// The returned error is non-nil only if ctx is cancelled.
func (r *Runner) IngestAll(ctx context.Context, paths []string, opts Options, workers int, progress func(BatchResult)) ([]BatchResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]BatchResult, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.IngestFile(gctx, path, opts)
			br := BatchResult{Path: path, Result: res, Err: err}
			results[i] = br
			if err != nil {
				r.Logger.Warn("ingest failed", "path", path, "error", err)
			}
			if progress != nil {
				mu.Lock()
				progress(br)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
