package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/errors"
)

// DefaultTimeout bounds a single Graphviz render.
const DefaultTimeout = 600 * time.Second

// RenderSVG renders a DOT graph to SVG using Graphviz.
// If ctx carries no deadline, DefaultTimeout applies. Exceeding the
// deadline is a TIMEOUT error.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	type result struct {
		svg []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		svg, err := render(ctx, dot)
		done <- result{svg, err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "graphviz render")
	case r := <-done:
		return r.svg, r.err
	}
}

func render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// EmbedCircularMetadata inserts the circular edge list as
// <metadata id='circular-edges'>a->b,...</metadata> before the closing
// svg tag. Identifiers are XML-escaped. Input without a closing tag is
// returned unchanged.
func EmbedCircularMetadata(svg []byte, circular *cycles.EdgeSet) []byte {
	i := bytes.LastIndex(svg, []byte("</svg>"))
	if i < 0 {
		return svg
	}
	edges := circular.Edges()
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = html.EscapeString(e.From) + "->" + html.EscapeString(e.To)
	}
	meta := "<metadata id='circular-edges'>" + strings.Join(parts, ",") + "</metadata>"

	out := make([]byte, 0, len(svg)+len(meta))
	out = append(out, svg[:i]...)
	out = append(out, meta...)
	return append(out, svg[i:]...)
}
