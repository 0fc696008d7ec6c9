package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/observability"
	"github.com/matzehuels/depscope/pkg/render/nodelink"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

// Render renders every chunk of the snapshot, one artifact per chunk in
// chunk order.
func (r *Runner) Render(ctx context.Context, snap *session.Snapshot, opts RenderOptions) ([][]byte, error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format, len(snap.Report.Chunks))
	start := time.Now()

	out := make([][]byte, 0, len(snap.Report.Chunks))
	for i, chunk := range snap.Report.Chunks {
		if opts.OnChunk != nil {
			opts.OnChunk(i, len(snap.Report.Chunks), chunk)
		}
		data, err := r.renderChunk(ctx, snap, i, chunk, "", opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
			return nil, err
		}
		out = append(out, data)
	}

	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), nil)
	r.Logger.Info("rendered chunks",
		"format", opts.Format,
		"chunks", len(out),
		"duration", time.Since(start))
	return out, nil
}

// RenderFocus renders the chunk that holds title, restricted to that title.
// SVG output carries the circular edge list as embedded metadata.
// An unknown title is a NOT_FOUND error.
func (r *Runner) RenderFocus(ctx context.Context, snap *session.Snapshot, title string, opts RenderOptions) ([]byte, error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	i, ok := snap.Index.ChunkForTitle(title)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "title %q not found", title)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format, 1)
	start := time.Now()

	data, err := r.renderChunk(ctx, snap, i, snap.Report.Chunks[i], title, opts)
	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatSVG {
		data = nodelink.EmbedCircularMetadata(data, snap.Circular)
	}

	r.Logger.Debug("rendered focus graph", "title", title, "chunk", i, "duration", time.Since(start))
	return data, nil
}

// RenderTitles renders the overview graph of all title names.
func (r *Runner) RenderTitles(ctx context.Context, snap *session.Snapshot, opts RenderOptions) ([]byte, error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	dot := nodelink.TitlesDOT(snap.Index.Titles())
	return r.renderDOT(ctx, dot, cache.RenderKeyOpts{Chunk: -1, Format: opts.Format}, opts)
}

func (r *Runner) renderChunk(ctx context.Context, snap *session.Snapshot, i int, chunk *report.Chunk, focus string, opts RenderOptions) ([]byte, error) {
	dot := nodelink.ChunkDOT(chunk, nodelink.Options{
		Focus:       focus,
		Highlight:   opts.Highlight,
		Detailed:    opts.Detailed,
		Circular:    snap.Circular,
		Coordinates: snap.Report.Coordinates,
	})
	return r.renderDOT(ctx, dot, cache.RenderKeyOpts{
		Chunk:    i,
		Focus:    focus,
		Format:   opts.Format,
		Detailed: opts.Detailed,
	}, opts)
}

// renderDOT returns dot as-is for the DOT format and otherwise renders it,
// caching SVG output keyed by the DOT content.
func (r *Runner) renderDOT(ctx context.Context, dot string, keyOpts cache.RenderKeyOpts, opts RenderOptions) ([]byte, error) {
	if opts.Format == FormatDOT {
		return []byte(dot), nil
	}

	key := r.Keyer.RenderKey(cache.Hash([]byte(dot)), keyOpts)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, key)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, key)

	rctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	svg, err := nodelink.RenderSVG(rctx, dot)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, svg, cache.TTLRender); err == nil {
		observability.Cache().OnCacheSet(ctx, key, len(svg))
	}
	return svg, nil
}
