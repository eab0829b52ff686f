// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"math"
	"sort"
)

const (
	// HilbertOrder is the order of the Hilbert curve used in
	// HilbertSort.
	HilbertOrder = 16
	// hilbertMax is the maximum input X- or Y-coordinate hilbertFromXY.
	//
	// In a Hilbert curve of order N, X- and Y- coordinates range from
	// zero to 2^N-1, so in a Hilbert curve of order 1, the X- and Y-
	// coordinates range from 0 to 1, and so on.
	hilbertMax = (1 << HilbertOrder) - 1
)

// hilbertSortable is an implementation of sort.Interface which allows
// us to use the reflection-free, hence slightly more performant,
// sort.Sort function instead of sort.Slice. Hilbert indices are
// computed once up front rather than on every comparison.
type hilbertSortable struct {
	refs []Ref
	keys []uint32
}

func (hs *hilbertSortable) Len() int {
	return len(hs.refs)
}

func (hs *hilbertSortable) Less(i, j int) bool {
	if hs.keys[i] != hs.keys[j] {
		return hs.keys[i] < hs.keys[j]
	}
	return hs.refs[i].Index < hs.refs[j].Index
}

func (hs *hilbertSortable) Swap(i, j int) {
	hs.refs[i], hs.refs[j] = hs.refs[j], hs.refs[i]
	hs.keys[i], hs.keys[j] = hs.keys[j], hs.keys[i]
}

// HilbertSort sorts a list of feature references, whose bounding box
// is given by extent, according to the order given by a Hilbert curve
// of order HilbertOrder.
//
// References with the same index on the Hilbert curve are ordered by
// ascending Ref.Index, so the result is deterministic.
func HilbertSort(refs []Ref, extent Box) {
	hs := hilbertSortable{
		refs: refs,
		keys: make([]uint32, len(refs)),
	}
	w, h := extent.Width(), extent.Height()
	for i := range refs {
		hs.keys[i] = hilbertFromBox(&refs[i].Box, extent.XMin, extent.YMin, w, h)
	}
	sort.Sort(&hs)
}

// hilbertFromBox calculates the Hilbert curve index of the center of
// a box in the context of a set of boxes bounded by the rectangle
// (ex, ey, ex+ew, ey+eh).
//
// NOTES:
//   - 32-bit integers are used because the full 64 bits are not
//     required and the smaller data size may theoretically result in
//     memory/bandwidth/cache benefits at the CPU level, maybe.
//   - Non-finite extents or centers map to the curve origin. This only
//     affects packing quality, never search correctness.
func hilbertFromBox(b *Box, ex, ey, ew, eh float32) uint32 {
	hx := hilbertCoord(b.midX(), ex, ew) // Hilbert X-coordinate between 0 and hilbertMax
	hy := hilbertCoord(b.midY(), ey, eh) // Hilbert Y-coordinate between 0 and hilbertMax
	return hilbertFromXY(hx, hy)
}

// hilbertCoord scales v from the extent [e, e+span] onto the closed
// integer range [0, hilbertMax].
func hilbertCoord(v, e, span float32) uint32 {
	if span == 0 {
		return 0
	}
	r := float64(v-e) / float64(span)
	if !(r > 0) { // Also catches NaN.
		return 0
	} else if r >= 1 {
		return hilbertMax
	}
	return uint32(math.Floor(hilbertMax * r))
}

// hilbertFromXY calculates the Hilbert curve index of a given
// two-dimensional coordinate.
//
// NOTES:
//   - Based on https://github.com/rawrunprotected/hilbert_curves, which
//     is in the public domain.
func hilbertFromXY(x, y uint32) uint32 {
	a := x ^ y
	b := 0xFFFF ^ a
	c := 0xFFFF ^ (x | y)
	d := x & (y ^ 0xFFFF)

	A := a | (b >> 1)
	B := (a >> 1) ^ a
	C := ((c >> 1) ^ (b & (d >> 1))) ^ c
	D := ((a & (c >> 1)) ^ (d >> 1)) ^ d

	a = A
	b = B
	c = C
	d = D
	A = (a & (a >> 2)) ^ (b & (b >> 2))
	B = (a & (b >> 2)) ^ (b & ((a ^ b) >> 2))
	C ^= (a & (c >> 2)) ^ (b & (d >> 2))
	D ^= (b & (c >> 2)) ^ ((a ^ b) & (d >> 2))

	a = A
	b = B
	c = C
	d = D
	A = (a & (a >> 4)) ^ (b & (b >> 4))
	B = (a & (b >> 4)) ^ (b & ((a ^ b) >> 4))
	C ^= (a & (c >> 4)) ^ (b & (d >> 4))
	D ^= (b & (c >> 4)) ^ ((a ^ b) & (d >> 4))

	a = A
	b = B
	c = C
	d = D
	C ^= (a & (c >> 8)) ^ (b & (d >> 8))
	D ^= (b & (c >> 8)) ^ ((a ^ b) & (d >> 8))

	a = C ^ (C >> 1)
	b = D ^ (D >> 1)

	i0 := x ^ y
	i1 := b | (0xFFFF ^ (i0 | a))

	i0 = (i0 | (i0 << 8)) & 0x00FF00FF
	i0 = (i0 | (i0 << 4)) & 0x0F0F0F0F
	i0 = (i0 | (i0 << 2)) & 0x33333333
	i0 = (i0 | (i0 << 1)) & 0x55555555

	i1 = (i1 | (i1 << 8)) & 0x00FF00FF
	i1 = (i1 | (i1 << 4)) & 0x0F0F0F0F
	i1 = (i1 | (i1 << 2)) & 0x33333333
	i1 = (i1 | (i1 << 1)) & 0x55555555

	index := (i1 << 1) | i0

	return index
}
