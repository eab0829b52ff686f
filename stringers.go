// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"fmt"
	"strconv"
	"strings"
)

func (p Point) String() string {
	var b strings.Builder
	b.WriteString("Point{")
	b.WriteString(formatFloat(p.X))
	b.WriteByte(',')
	b.WriteString(formatFloat(p.Y))
	b.WriteString(",Rank:")
	b.WriteString(strconv.FormatInt(int64(p.Rank), 10))
	b.WriteByte('}')
	return b.String()
}

func (r Rect) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(formatFloat(r.LX))
	b.WriteByte(',')
	b.WriteString(formatFloat(r.LY))
	b.WriteByte(',')
	b.WriteString(formatFloat(r.HX))
	b.WriteByte(',')
	b.WriteString(formatFloat(r.HY))
	b.WriteByte(')')
	return b.String()
}

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Linear:
		return "linear"
	case PackedRTree:
		return "packedrtree"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// String returns a summary description of the search context. It is
// safe to call after Destroy.
func (sc *SearchContext) String() string {
	if sc.state.Load() != live {
		return "SearchContext{destroyed}"
	}
	return fmt.Sprintf("SearchContext{Points:%d,Strategy:%s}", len(sc.points), sc.strategy)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
