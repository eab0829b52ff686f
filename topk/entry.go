// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package topk selects the best-ranked entries from a stream of
// candidates.
//
// Lower Rank is better. Entries with equal Rank are ordered by
// ascending Index, so every selection is deterministic and agrees with
// a stable sort of the candidates in Index order.
package topk

import (
	"fmt"
	"sort"
)

// Entry is a candidate for selection.
type Entry struct {
	// Rank is the priority of the entry. Lower is better.
	Rank int32
	// Index identifies the entry, typically its position in the
	// caller's item list. It breaks ties between equal ranks.
	Index int
}

// String returns a compact representation of the entry.
func (e Entry) String() string {
	return fmt.Sprintf("Entry{Rank:%d,Index:%d}", e.Rank, e.Index)
}

// Less reports whether a is ranked strictly ahead of b.
//
// Ranks are compared directly rather than by subtraction, which would
// overflow for ranks of large magnitude and opposite sign.
func Less(a, b Entry) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.Index < b.Index
}

// Entries is a slice of Entry structures which implements
// sort.Interface. The sort.Sort function will sort Entries in
// ascending order according to Less.
type Entries []Entry

// Len returns the length of the slice. It implements the corresponding
// method of sort.Interface.
func (es Entries) Len() int {
	return len(es)
}

// Less establishes an absolute ordering of entries. It implements the
// corresponding method of sort.Interface.
func (es Entries) Less(i, j int) bool {
	return Less(es[i], es[j])
}

// Swap swaps two elements of the slice. It implements the corresponding
// method of sort.Interface.
func (es Entries) Swap(i, j int) {
	es[i], es[j] = es[j], es[i]
}

// byRank orders entries by Rank alone. Used with sort.Stable it keeps
// equal-rank entries in their existing relative order.
type byRank []Entry

func (es byRank) Len() int           { return len(es) }
func (es byRank) Less(i, j int) bool { return es[i].Rank < es[j].Rank }
func (es byRank) Swap(i, j int)      { es[i], es[j] = es[j], es[i] }

// SortStable sorts a full list of candidates by ascending Rank,
// preserving the relative order of entries with equal Rank. If the
// input is in ascending Index order, the result is in the same order a
// Selector would produce.
func SortStable(es []Entry) {
	sort.Stable(byRank(es))
}
