// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"log/slog"
	"strings"
)

// Strategy selects how a SearchContext finds candidate points. All
// strategies return identical results; they differ only in cost.
type Strategy int

const (
	// Auto uses PackedRTree for point sets of at least the index
	// threshold (see WithIndexThreshold) and Linear otherwise.
	Auto Strategy = iota
	// Linear scans every point on each query, collects all matches and
	// sorts them stably by rank. Creation does no work beyond copying
	// the points.
	Linear
	// PackedRTree builds a packed Hilbert R-Tree over the points at
	// creation and keeps only the best maxCount matches on each query
	// using a bounded heap.
	PackedRTree
)

const (
	// DefaultNodeSize is the default R-Tree node size.
	DefaultNodeSize uint16 = 16
	// DefaultIndexThreshold is the default point count at or above
	// which Auto builds an index.
	DefaultIndexThreshold = 256
)

// ParseStrategy converts the name of a strategy, as returned by
// Strategy.String, back into a Strategy. Matching is case-insensitive
// and the empty string means Auto.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "linear":
		return Linear, nil
	case "packedrtree", "rtree":
		return PackedRTree, nil
	default:
		return Auto, fmtErr("unknown strategy %q", name)
	}
}

type options struct {
	strategy       Strategy
	nodeSize       uint16
	indexThreshold int
	maxBytes       int64
	parallelism    int
	logger         *slog.Logger
	metrics        *Metrics
}

func defaultOptions() options {
	return options{
		strategy:       Auto,
		nodeSize:       DefaultNodeSize,
		indexThreshold: DefaultIndexThreshold,
		logger:         noopLogger(),
	}
}

// Option configures Create.
type Option func(*options)

// WithStrategy sets the candidate search strategy. Panics if s is not
// one of the declared Strategy values.
func WithStrategy(s Strategy) Option {
	if s < Auto || s > PackedRTree {
		fmtPanic("invalid strategy %d", int(s))
	}
	return func(o *options) {
		o.strategy = s
	}
}

// WithNodeSize sets the number of children per R-Tree node. Larger
// nodes mean a shallower tree and coarser pruning. Panics if n is less
// than 2.
func WithNodeSize(n uint16) Option {
	if n < 2 {
		fmtPanic("node size must be at least 2, got %d", n)
	}
	return func(o *options) {
		o.nodeSize = n
	}
}

// WithIndexThreshold sets the point count at or above which the Auto
// strategy builds an R-Tree. Panics if n is negative.
func WithIndexThreshold(n int) Option {
	if n < 0 {
		fmtPanic("negative index threshold %d", n)
	}
	return func(o *options) {
		o.indexThreshold = n
	}
}

// WithMaxBytes caps the memory Create may allocate for the point copy
// and index. Create returns ErrOutOfMemory if the cap would be
// exceeded. Zero, the default, means no cap. Panics if n is negative.
func WithMaxBytes(n int64) Option {
	if n < 0 {
		fmtPanic("negative byte limit %d", n)
	}
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithParallelism bounds the number of queries SearchBatch runs at
// once. Zero, the default, means GOMAXPROCS. Panics if n is negative.
func WithParallelism(n int) Option {
	if n < 0 {
		fmtPanic("negative parallelism %d", n)
	}
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLogger sets the structured logger for lifecycle and query
// events. If nil is passed, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = noopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the collectors updated by the search context. If
// nil is passed, no metrics are recorded.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
