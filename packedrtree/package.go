// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package packedrtree provides a static packed Hilbert R-Tree spatial
// index and its search algorithm.
//
// The tree is built once from a list of references, each carrying a
// bounding box and the index of the item it refers to, and is never
// modified afterward. The ranked point search in the parent package
// uses it to avoid scanning every point on each query, but the package
// is usable wherever a static 2D index is needed.
package packedrtree
