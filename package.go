// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package pointsearch answers rectangle range queries over a static
// set of ranked 2D points.
//
// A SearchContext is created once from a slice of points and then
// queried any number of times. Each query returns the points lying
// strictly inside an open rectangle, best (lowest) rank first, up to a
// caller-chosen count. Points sharing a rank come back in the order
// they were given to Create.
//
// Large point sets are indexed with the packed Hilbert R-Tree from the
// packedrtree subpackage; ranking uses the bounded selector from the
// topk subpackage. The choice of strategy never changes results.
package pointsearch
