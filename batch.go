// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Query is one search in a batch.
type Query struct {
	Rect     Rect
	MaxCount int
}

// SearchBatch runs the queries concurrently and returns one result
// slice per query, in query order. Each result holds exactly what Find
// would return for the same query.
//
// At most WithParallelism queries run at once. If ctx is cancelled
// before the batch completes, SearchBatch returns ctx.Err() and no
// results. Panics if any query has a negative MaxCount or the context
// has been destroyed.
func (sc *SearchContext) SearchBatch(ctx context.Context, queries []Query) ([][]Point, error) {
	sc.mustBeLive()
	for i := range queries {
		if queries[i].MaxCount < 0 {
			fmtPanic(errNegativeMaxCount, queries[i].MaxCount)
		}
	}

	limit := sc.parallel
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([][]Point, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range queries {
		if gctx.Err() != nil {
			break
		}
		q := &queries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out := make([]Point, min(q.MaxCount, len(sc.points)))
			n := sc.search(q.Rect, len(out), out)
			sc.metrics.observeSearch(sc.strategy, n, time.Since(start))
			results[i] = out[:n]
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	sc.logBatch(ctx, len(queries), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}
