package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/observability"
)

// logHooks reports pipeline, cache and server events as debug logs.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

func (h logHooks) OnParseStart(_ context.Context, source string) {
	h.logger.Debug("parse start", "source", source)
}

func (h logHooks) OnParseComplete(_ context.Context, source string, titles, lines int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("parse complete", "source", source, "titles", titles, "lines", lines, "duration", d)
}

func (h logHooks) OnDetectComplete(_ context.Context, source string, edges int, d time.Duration) {
	h.logger.Debug("cycle detection complete", "source", source, "circular_edges", edges, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, format string, chunks int) {
	h.logger.Debug("render start", "format", format, "chunks", chunks)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("render complete", "format", format, "duration", d, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(context.Context, string, string) {}

func (h logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}
