// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a structured logger writing to w at the given
// level. Format "json" selects JSON output; anything else selects
// text. The result can be passed to WithLogger.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("component", "pointsearch")
}

// ParseLevel converts a level name (debug, info, warn, error) into a
// slog.Level. Unknown names map to slog.LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// noopLevel is above every level slog defines, so a handler set to it
// never emits.
const noopLevel = slog.Level(1000)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: noopLevel}))
}

func (sc *SearchContext) logCreate(indexBytes int64) {
	sc.logger.Debug("search context created",
		"points", len(sc.points),
		"strategy", sc.strategy.String(),
		"index_bytes", indexBytes,
	)
}

func (sc *SearchContext) logSearch(r Rect, maxCount, results int) {
	// Searches are hot; skip argument boxing when nobody listens.
	if !sc.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	sc.logger.Debug("search completed",
		"rect", r.String(),
		"max_count", maxCount,
		"results", results,
	)
}

func (sc *SearchContext) logBatch(ctx context.Context, queries int, err error) {
	if err != nil {
		sc.logger.WarnContext(ctx, "search batch aborted",
			"queries", queries,
			"error", err,
		)
	} else {
		sc.logger.DebugContext(ctx, "search batch completed",
			"queries", queries,
		)
	}
}

func (sc *SearchContext) logDestroy(points int) {
	sc.logger.Debug("search context destroyed",
		"points", points,
	)
}
