// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"math"
	"strconv"
	"strings"
)

// Box is an axis-aligned bounding box. A Box around a single point has
// XMin == XMax and YMin == YMax.
type Box struct {
	XMin float32
	YMin float32
	XMax float32
	YMax float32
}

// EmptyBox is the identity value for Expand. Expanding EmptyBox by any
// Box yields that Box.
var EmptyBox = Box{
	XMin: float32(math.Inf(1)),
	YMin: float32(math.Inf(1)),
	XMax: float32(math.Inf(-1)),
	YMax: float32(math.Inf(-1)),
}

// PointBox returns the degenerate Box around the point (x, y).
func PointBox(x, y float32) Box {
	return Box{XMin: x, YMin: y, XMax: x, YMax: y}
}

// Width returns the X extent of the box.
func (b *Box) Width() float32 {
	return b.XMax - b.XMin
}

// Height returns the Y extent of the box.
func (b *Box) Height() float32 {
	return b.YMax - b.YMin
}

func (b *Box) midX() float32 {
	return (b.XMin + b.XMax) / 2
}

func (b *Box) midY() float32 {
	return (b.YMin + b.YMax) / 2
}

// Expand grows b, if necessary, to enclose c.
func (b *Box) Expand(c *Box) {
	if c.XMin < b.XMin {
		b.XMin = c.XMin
	}
	if c.YMin < b.YMin {
		b.YMin = c.YMin
	}
	if c.XMax > b.XMax {
		b.XMax = c.XMax
	}
	if c.YMax > b.YMax {
		b.YMax = c.YMax
	}
}

// OverlapsOpen reports whether b has any point in common with the open
// interior of o, i.e. the region strictly between o's bounds. For a
// point box this is exactly strict containment of the point in o: a
// point lying on an edge of o does not overlap it.
func (b *Box) OverlapsOpen(o *Box) bool {
	return b.XMax > o.XMin &&
		b.XMin < o.XMax &&
		b.YMax > o.YMin &&
		b.YMin < o.YMax
}

// String returns a compact representation of the box in the form
// [XMin,YMin,XMax,YMax].
func (b Box) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(formatFloat(b.XMin))
	sb.WriteByte(',')
	sb.WriteString(formatFloat(b.YMin))
	sb.WriteByte(',')
	sb.WriteString(formatFloat(b.XMax))
	sb.WriteByte(',')
	sb.WriteString(formatFloat(b.YMax))
	sb.WriteByte(']')
	return sb.String()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
