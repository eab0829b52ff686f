// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"log/slog"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogama/pointsearch/packedrtree"
	"github.com/gogama/pointsearch/topk"
)

const (
	numPointBytes = int64(unsafe.Sizeof(Point{}))
	numRefBytes   = int64(unsafe.Sizeof(packedrtree.Ref{}))
)

// SearchContext answers ranked rectangle queries over a fixed set of
// points. It owns a private copy of the points it was created from and
// never modifies or reorders that copy.
//
// Search, Find and SearchBatch only read the context and may be called
// from multiple goroutines at once. Create and Destroy must not race
// with any other call on the same context.
type SearchContext struct {
	stateful
	points   []Point
	index    *packedrtree.PackedRTree
	strategy Strategy
	logger   *slog.Logger
	metrics  *Metrics
	parallel int
	scratch  sync.Pool
}

// scratch is per-query working memory, pooled so that concurrent
// queries don't allocate in the steady state.
type scratch struct {
	sel     topk.Selector
	entries []topk.Entry
}

// Create copies points into a new SearchContext. The caller's slice is
// not retained and may be reused as soon as Create returns. An empty
// or nil slice is valid and yields a context on which every search
// returns nothing.
//
// Coordinates and ranks are stored verbatim without validation. Points
// with NaN coordinates are kept but never match any Rect.
//
// Create returns an error wrapping ErrOutOfMemory if the storage
// required cannot be allocated. No usable context is returned in that
// case.
func Create(points []Point, opts ...Option) (*SearchContext, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	strategy := resolveStrategy(o.strategy, len(points), o.indexThreshold)
	indexBytes, err := footprint(len(points), strategy == PackedRTree, o.nodeSize, o.maxBytes)
	if err != nil {
		return nil, o.createFailed(len(points), err)
	}

	sc := &SearchContext{
		strategy: strategy,
		logger:   o.logger,
		metrics:  o.metrics,
		parallel: o.parallelism,
	}
	sc.scratch.New = func() interface{} {
		return &scratch{}
	}

	var buildErr error
	err = allocate(func() {
		sc.points = make([]Point, len(points))
		copy(sc.points, points)
		if strategy == PackedRTree {
			sc.index, buildErr = buildIndex(sc.points, o.nodeSize)
		}
	})
	if err == nil && buildErr != nil {
		err = wrapErr("failed to build index", buildErr)
	}
	if err != nil {
		return nil, o.createFailed(len(points), err)
	}

	sc.init()
	sc.metrics.observeCreate(len(sc.points))
	sc.logCreate(indexBytes)
	return sc, nil
}

func (o *options) createFailed(numPoints int, err error) error {
	o.metrics.observeCreateFailure()
	o.logger.Warn("search context creation failed",
		"points", numPoints,
		"error", err,
	)
	return err
}

// resolveStrategy turns Auto into a concrete strategy. An empty point
// set never gets an index because there is nothing to search.
func resolveStrategy(s Strategy, numPoints, threshold int) Strategy {
	if numPoints == 0 {
		return Linear
	}
	if s == Auto {
		if numPoints >= threshold {
			return PackedRTree
		}
		return Linear
	}
	return s
}

// footprint computes the bytes Create will allocate for numPoints
// points, plus an R-Tree if indexed, and returns the index share of
// that total. Returns an error wrapping ErrOutOfMemory if the total
// overflows or exceeds maxBytes (when maxBytes > 0).
func footprint(numPoints int, indexed bool, nodeSize uint16, maxBytes int64) (indexBytes int64, err error) {
	// Counts cross the API as 32-bit values.
	if int64(numPoints) > math.MaxInt32 {
		return 0, wrapErr("%d points exceeds maximum of %d", ErrOutOfMemory, numPoints, math.MaxInt32)
	}
	total := int64(numPoints) * numPointBytes
	if indexed && numPoints > 0 {
		if indexBytes, err = packedrtree.Size(numPoints, nodeSize); err != nil {
			return 0, wrapErr("index for %d points: %v", ErrOutOfMemory, numPoints, err)
		}
		// The Hilbert-sorted refs are a transient copy freed after the
		// tree is built, but they coexist with it during the build.
		indexBytes += int64(numPoints) * numRefBytes
		total += indexBytes
	}
	if maxBytes > 0 && total > maxBytes {
		return 0, wrapErr("%d bytes needed for %d points exceeds limit of %d bytes", ErrOutOfMemory, total, numPoints, maxBytes)
	}
	return indexBytes, nil
}

// allocate runs f, converting a recoverable allocation panic raised by
// the runtime (for example, a slice length the runtime cannot satisfy)
// into an error wrapping ErrOutOfMemory.
func allocate(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(interface{ RuntimeError() }); ok {
				err = wrapErr("allocation failed: %v", ErrOutOfMemory, re)
				return
			}
			panic(r)
		}
	}()
	f()
	return
}

// buildIndex builds a packed Hilbert R-Tree over points. Each leaf's
// Ref.Index is the point's position in points.
func buildIndex(points []Point, nodeSize uint16) (*packedrtree.PackedRTree, error) {
	refs := make([]packedrtree.Ref, len(points))
	extent := packedrtree.EmptyBox
	for i := range points {
		refs[i] = packedrtree.Ref{
			Box:   packedrtree.PointBox(points[i].X, points[i].Y),
			Index: i,
		}
		extent.Expand(&refs[i].Box)
	}
	packedrtree.HilbertSort(refs, extent)
	return packedrtree.New(refs, nodeSize)
}

// Len returns the number of points in the context.
func (sc *SearchContext) Len() int {
	sc.mustBeLive()
	return len(sc.points)
}

// Strategy returns the concrete strategy in use. It is never Auto.
func (sc *SearchContext) Strategy() Strategy {
	sc.mustBeLive()
	return sc.strategy
}

// Search writes to out the best-ranked points lying strictly inside r,
// at most maxCount of them, and returns how many were written. Points
// are written in ascending rank order. Points of equal rank are
// written in the order they were given to Create.
//
// Search returns min(M, maxCount), where M is the number of points
// inside r. It writes nothing beyond out[:n] and does not retain out.
//
// Preconditions: maxCount must not be negative, len(out) must be at
// least maxCount, and the context must not have been destroyed.
// Search panics if any of these is violated.
func (sc *SearchContext) Search(r Rect, maxCount int, out []Point) int {
	sc.mustBeLive()
	if maxCount < 0 {
		fmtPanic(errNegativeMaxCount, maxCount)
	} else if len(out) < maxCount {
		fmtPanic(errShortOutputBuffer, len(out), maxCount)
	}

	start := time.Now()
	n := sc.search(r, maxCount, out)
	sc.metrics.observeSearch(sc.strategy, n, time.Since(start))
	sc.logSearch(r, maxCount, n)
	return n
}

// Find is like Search but allocates and returns a result slice of
// exactly the number of points found.
func (sc *SearchContext) Find(r Rect, maxCount int) []Point {
	sc.mustBeLive()
	if maxCount < 0 {
		fmtPanic(errNegativeMaxCount, maxCount)
	}

	out := make([]Point, min(maxCount, len(sc.points)))
	return out[:sc.Search(r, len(out), out)]
}

// search is the shared query path. It requires maxCount >= 0 and
// len(out) >= min(maxCount, len(sc.points)).
func (sc *SearchContext) search(r Rect, maxCount int, out []Point) int {
	if maxCount == 0 || len(sc.points) == 0 || r.Empty() {
		return 0
	}

	s := sc.scratch.Get().(*scratch)
	defer sc.scratch.Put(s)

	if sc.index != nil {
		s.entries = sc.selectIndexed(r, maxCount, s)
	} else {
		s.entries = sc.selectLinear(r, maxCount, s)
	}

	n := len(s.entries)
	for i := range s.entries {
		out[i] = sc.points[s.entries[i].Index]
	}
	return n
}

// selectLinear scans every point, collects all matches in input order,
// sorts them stably by rank and truncates to maxCount.
func (sc *SearchContext) selectLinear(r Rect, maxCount int, s *scratch) []topk.Entry {
	es := s.entries[:0]
	for i := range sc.points {
		p := &sc.points[i]
		if r.Contains(p.X, p.Y) {
			es = append(es, topk.Entry{Rank: p.Rank, Index: i})
		}
	}
	topk.SortStable(es)
	if len(es) > maxCount {
		es = es[:maxCount]
	}
	return es
}

// selectIndexed walks the R-Tree and keeps the best maxCount matches
// in a bounded heap, never materializing the full match set.
func (sc *SearchContext) selectIndexed(r Rect, maxCount int, s *scratch) []topk.Entry {
	s.sel.Reset(min(maxCount, len(sc.points)))
	sc.index.Search(r.box(), func(i int) bool {
		p := &sc.points[i]
		if r.Contains(p.X, p.Y) {
			s.sel.Offer(topk.Entry{Rank: p.Rank, Index: i})
		}
		return true
	})
	return s.sel.Drain(s.entries[:0])
}

// Destroy releases the storage owned by the context. The context must
// not be used afterward: any further call to Search, Find,
// SearchBatch, Len, Strategy or Destroy panics.
func (sc *SearchContext) Destroy() {
	sc.toDestroyed()
	n := len(sc.points)
	sc.points = nil
	sc.index = nil
	sc.metrics.observeDestroy(n)
	sc.logDestroy(n)
}
