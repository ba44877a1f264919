// Package cli implements the blockscape command-line interface.
//
// This package provides commands for fetching block ranges, rendering and
// exporting a block, exploring blocks interactively in the terminal, serving
// the HTTP API and managing the response cache. The CLI is built using cobra
// and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - fetch: Fetch a range and print a per-block summary, optionally saving it
//   - render: Draw one block to PNG, SVG, JSON or the terminal
//   - export: Write a block's cluster skeletons as Graphviz DOT or SVG
//   - explore: Interactive terminal explorer
//   - serve: HTTP API with one visualization panel per session
//   - cache: Manage the response cache
//   - config: Show or create the configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every fetch, cache lookup and upstream request through the
// observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Fetched 12 blocks (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports observability events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnFetchStart(_ context.Context, source string, start, end int) {
	h.logger.Debug("fetch start", "source", source, "start", start, "end", end)
}

func (h *logHooks) OnFetchComplete(_ context.Context, source string, start, end, points int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "source", source, "start", start, "end", end, "duration", d, "err", err)
		return
	}
	h.logger.Debug("fetch done", "source", source, "start", start, "end", end, "points", points, "duration", d)
}

func (h *logHooks) OnFrame(context.Context, int, int, time.Duration) {}

func (h *logHooks) OnBlockChange(_ context.Context, block, clusters int, d time.Duration) {
	h.logger.Debug("block", "number", block, "clusters", clusters, "build", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request error", "method", method, "host", host, "path", path, "err", err)
}
