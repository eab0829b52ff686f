// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package topk

// Selector keeps the k best entries offered to it. Internally it is a
// bounded max-heap whose root is the worst entry retained, so each
// Offer costs O(log k) and memory stays O(k) no matter how many
// candidates are offered.
//
// A Selector is not safe for concurrent use. The zero value is a
// Selector with k = 0, which rejects everything.
type Selector struct {
	k     int
	items []Entry
}

// New returns a Selector that keeps at most k entries. Panics if k is
// negative.
func New(k int) *Selector {
	s := &Selector{}
	s.Reset(k)
	return s
}

// Reset empties the Selector and changes its bound to k, reusing the
// existing storage where possible. Panics if k is negative.
func (s *Selector) Reset(k int) {
	if k < 0 {
		fmtPanic("negative bound %d", k)
	}
	s.k = k
	if cap(s.items) < k {
		s.items = make([]Entry, 0, k)
	} else {
		s.items = s.items[:0]
	}
}

// K returns the bound on the number of entries kept.
func (s *Selector) K() int {
	return s.k
}

// Len returns the number of entries currently kept.
func (s *Selector) Len() int {
	return len(s.items)
}

// Full reports whether the Selector holds k entries, in which case a
// new entry is only kept if it is ranked ahead of Worst.
func (s *Selector) Full() bool {
	return len(s.items) == s.k
}

// Worst returns the lowest-priority entry kept, if any.
func (s *Selector) Worst() (Entry, bool) {
	if len(s.items) == 0 {
		return Entry{}, false
	}
	return s.items[0], true
}

// Offer considers an entry for selection and reports whether it was
// kept. When the Selector is full, keeping e evicts the current Worst.
func (s *Selector) Offer(e Entry) bool {
	if len(s.items) < s.k {
		s.items = append(s.items, e)
		s.siftUp(len(s.items) - 1)
		return true
	}
	if s.k == 0 || !Less(e, s.items[0]) {
		return false
	}
	s.items[0] = e
	s.siftDown(0)
	return true
}

// Drain appends the kept entries to dst in ascending order, best
// first, and empties the Selector.
func (s *Selector) Drain(dst []Entry) []Entry {
	n := len(s.items)
	start := len(dst)
	dst = append(dst, make([]Entry, n)...)
	// Popping the max-heap yields entries worst first, so fill from
	// the back.
	for i := n - 1; i >= 0; i-- {
		dst[start+i] = s.pop()
	}
	return dst
}

func (s *Selector) pop() Entry {
	n := len(s.items)
	root := s.items[0]
	s.items[0] = s.items[n-1]
	s.items = s.items[:n-1]
	if n-1 > 0 {
		s.siftDown(0)
	}
	return root
}

// worse reports whether the entry at i should sit above the entry at j
// in the max-heap.
func (s *Selector) worse(i, j int) bool {
	return Less(s.items[j], s.items[i])
}

func (s *Selector) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !s.worse(i, p) {
			return
		}
		s.items[i], s.items[p] = s.items[p], s.items[i]
		i = p
	}
}

func (s *Selector) siftDown(i int) {
	n := len(s.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		r := l + 1
		if r < n && s.worse(r, l) {
			worst = r
		}
		if !s.worse(worst, i) {
			return
		}
		s.items[i], s.items[worst] = s.items[worst], s.items[i]
		i = worst
	}
}
