// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import "github.com/gogama/pointsearch/packedrtree"

// Point is a ranked location in the plane. Lower Rank means higher
// priority in search results. Ranks need not be unique.
type Point struct {
	X    float32
	Y    float32
	Rank int32
}

// Rect is the open axis-aligned rectangle (LX, HX) × (LY, HY).
//
// No ordering of the bounds is required. A Rect with LX >= HX or
// LY >= HY is not an error; it simply contains no points.
type Rect struct {
	LX float32
	LY float32
	HX float32
	HY float32
}

// Contains reports whether (x, y) lies strictly inside r. A point on
// any edge or corner of r is outside it, and so is any point with a
// NaN coordinate.
func (r Rect) Contains(x, y float32) bool {
	return x > r.LX &&
		x < r.HX &&
		y > r.LY &&
		y < r.HY
}

// ContainsPoint is shorthand for r.Contains(p.X, p.Y).
func (r Rect) ContainsPoint(p Point) bool {
	return r.Contains(p.X, p.Y)
}

// Empty reports whether r has inverted or collapsed bounds in either
// dimension and therefore cannot contain any point. A Rect with a NaN
// bound is also empty.
func (r Rect) Empty() bool {
	return !(r.LX < r.HX) || !(r.LY < r.HY)
}

func (r Rect) box() packedrtree.Box {
	return packedrtree.Box{XMin: r.LX, YMin: r.LY, XMax: r.HX, YMax: r.HY}
}
