// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"fmt"
	"math"
	"unsafe"
)

// A Ref is a single item within the PackedRTree and represents a
// reference to an item stored outside the tree, for example a point in
// a caller-owned slice. Each Ref consists of its item's Index plus a
// Box representing the bounding box of the item.
type Ref struct {
	Box

	// Index is the referenced item's position in the caller's
	// original item list.
	Index int
}

// String returns a compact representation of the reference.
func (r Ref) String() string {
	return fmt.Sprintf("Ref{%s,Index:%d}", r.Box, r.Index)
}

// A node is a private version of Ref used to (hopefully) reduce
// confusion. A leaf node is exactly the same as a Ref and has the
// same meaning. A non-leaf node is subtly different: the Box is the
// extent of the entire subtree rooted at the non-leaf node; and the
// Index represents the node index of the node's first child node.
type node struct {
	Ref
}

const numNodeBytes = int(unsafe.Sizeof(node{}))

func validateParams(numRefs int, nodeSize uint16) {
	if numRefs < 1 {
		textPanic("empty tree not allowed (num refs must be > 0)")
	} else if nodeSize < 2 {
		textPanic("node size must be at least 2")
	}
}

// Size returns the memory size in bytes of the node array of a packed
// Hilbert R-Tree having a given reference count and node size. Panics
// if numRefs is less than 1 or nodeSize is less than 2, and returns an
// error if integer overflow occurs.
func Size(numRefs int, nodeSize uint16) (int64, error) {
	validateParams(numRefs, nodeSize)
	return size(numRefs, int(nodeSize))
}

// size returns the memory size in bytes of the node array of a packed
// Hilbert R-Tree having a given reference count and node size. Returns
// an error if integer overflow occurs.
func size(numRefs, nodeSize int) (int64, error) {
	if err := checkLevelMath(numRefs, nodeSize); err != nil {
		return 0, err
	}

	// Count total number of internal nodes in the tree.
	var numInternal int
	nodesThisLevel := numRefs
	for {
		nodesThisLevel = (nodesThisLevel + nodeSize - 1) / nodeSize
		numInternal += nodesThisLevel
		if nodesThisLevel == 1 {
			break
		}
	}

	// Calculate total number of nodes, ensuring it does not overflow
	// int.
	numNodes, err := totalNodes(numRefs, numInternal)
	if err != nil {
		return 0, err
	}

	// Ensure total tree size does not overflow int64.
	if int64(numNodes) > math.MaxInt64/int64(numNodeBytes) {
		return 0, textErr("index size overflows int64")
	}

	// Calculate and return total tree size.
	return int64(numNodes) * int64(numNodeBytes), nil
}

// checkLevelMath returns an error if rounding numRefs up to a multiple
// of nodeSize would overflow int.
func checkLevelMath(numRefs, nodeSize int) error {
	if numRefs > math.MaxInt-nodeSize {
		return textErr("total node count overflows int")
	}
	return nil
}

// totalNodes sums numRefs and numInternal, returning an error if
// integer overflow occurs.
func totalNodes(numRefs, numInternal int) (n int, err error) {
	if numInternal > math.MaxInt-numRefs {
		err = textErr("total node count overflows int")
	} else {
		n = numRefs + numInternal
	}
	return
}

// A levelRange represents the range of node indices that comprise a
// level. Each levelRange is a closed/open node index pair [start, end)
// where start is the index (into PackedRTree's nodes list) of the first
// node in the level and end is the index that is one past the last node
// in the level.
type levelRange struct {
	start, end int
}

// levelify creates the list of levelRange structures which
// deterministically results from a given leaf node count (numRefs) and
// child node count (nodeSize).
//
// For example, assume numRefs = 4, nodeSize = 2. The output of this
// function will be [[3, 7], [1, 3], [0, 1]], where first item in the
// list represents the leaf node level, and the last item in the list is
// the root level.
func levelify(numRefs, nodeSize int) ([]levelRange, error) {
	if err := checkLevelMath(numRefs, nodeSize); err != nil {
		return nil, err
	}

	// numInternal is the number of internal nodes in the tree, a number
	// strictly less than numRefs.
	var numInternal int

	// Generate a list of node counts per level, in the same order as
	// the final levelRange list, i.e. the leaf level 0 is first and the
	// root level is last.
	//
	// Keeping with the example numRefs = 4, nodeSize = 2, the result of
	// this logic is nodesPerLevel = [4, 2, 1].
	nodesThisLevel := numRefs
	nodesPerLevel := make([]int, 1, 16)
	nodesPerLevel[0] = nodesThisLevel
	for {
		nodesThisLevel = (nodesThisLevel + nodeSize - 1) / nodeSize
		nodesPerLevel = append(nodesPerLevel, nodesThisLevel)
		numInternal += nodesThisLevel
		if nodesThisLevel == 1 {
			break
		}
	}

	// Sum up the total number of nodes.
	numNodes, err := totalNodes(numRefs, numInternal)
	if err != nil {
		return nil, err
	}

	// Generate a list of node start indices per level, in the same
	// order as the final levelRange list.
	//
	// Keeping with the example numRefs = 4, nodeSize = 2, the result of
	// this logic is levelIndices = [3, 1, 0].
	levelIndices := make([]int, len(nodesPerLevel))
	nodesRemaining := numNodes
	for i := range nodesPerLevel {
		nodesRemaining -= nodesPerLevel[i]
		levelIndices[i] = nodesRemaining
	}

	// Generate and return the final list of levelRange structures.
	levels := make([]levelRange, len(levelIndices))
	for i := range levelIndices {
		levels[i].start = levelIndices[i]
		levels[i].end = levelIndices[i] + nodesPerLevel[i]
	}
	return levels, nil
}

// A ticket is a pending work item to be executed during a PackedRTree
// search loop.
type ticket struct {
	// nodeIndex is the index of the first node to search.
	nodeIndex int
	// level is the R-Tree level that nodeIndex belongs to. Recall that
	// level 0 contains the leaf nodes.
	level int
}

// A ticketStack is a LIFO collection of pending work items to be
// executed during a PackedRTree search loop.
type ticketStack []ticket

func (ts ticketStack) Len() int { return len(ts) }

func (ts *ticketStack) push(t ticket) {
	*ts = append(*ts, t)
}

func (ts *ticketStack) pop() ticket {
	old := *ts
	n := len(old)
	x := old[n-1]
	*ts = old[0 : n-1]
	return x
}

// PackedRTree is a packed Hilbert R-Tree. It is immutable once built
// and safe for concurrent searches.
type PackedRTree struct {
	// numRefs is the number of leaf nodes, i.e. Ref values, in the
	// tree.
	numRefs int
	// nodeSize is the number of child nodes per parent node.
	nodeSize int
	// levels is the list of levelRange boundaries. The leaf nodes are
	// at levelRange 0 and the root node is at len(levels)-1.
	levels []levelRange
	// nodes is the complete list of nodes in the tree, including
	// internal and leaf nodes.
	nodes []node
}

// New creates a new packed Hilbert R-Tree from a non-empty,
// Hilbert-sorted list of references and a given R-Tree node size.
// Panics if the reference list is empty or node size is less than 2.
//
// Use HilbertSort to sort the references. If the input slice is not
// Hilbert-sorted, the tree is still correct but searches may visit
// more nodes than necessary.
func New(refs []Ref, nodeSize uint16) (*PackedRTree, error) {
	validateParams(len(refs), nodeSize)

	levels, err := levelify(len(refs), int(nodeSize))
	if err != nil {
		return nil, err
	}

	prt := &PackedRTree{
		numRefs:  len(refs),
		nodeSize: int(nodeSize),
		levels:   levels,
		nodes:    make([]node, levels[0].end),
	}
	// Save copies of the leaf nodes.
	i := prt.levels[0].start
	for j := range refs {
		prt.nodes[i] = node{refs[j]}
		i++
	}
	// Generate the internal nodes.
	for i = 0; i < len(prt.levels)-1; i++ {
		level := prt.levels[i]
		nodeIndex := level.start
		parent := prt.levels[i+1].start
		for nodeIndex < level.end {
			p := &prt.nodes[parent]
			*p = node{Ref: Ref{EmptyBox, nodeIndex}}
			var j int
			for {
				p.Expand(&prt.nodes[nodeIndex].Box)
				j++
				nodeIndex++
				if j == prt.nodeSize || nodeIndex == level.end {
					break
				}
			}
			parent++
		}
	}
	return prt, nil
}

// Bounds returns the bounding box around all items referenced by the
// packed Hilbert R-Tree.
func (prt *PackedRTree) Bounds() Box {
	return prt.nodes[0].Box
}

// NumRefs returns the number of references stored in the packed
// Hilbert R-Tree.
func (prt *PackedRTree) NumRefs() int {
	return prt.numRefs
}

// NodeSize returns the child node count of the packed Hilbert R-Tree.
func (prt *PackedRTree) NodeSize() uint16 {
	return uint16(prt.nodeSize)
}

// String returns a summary description of the packed Hilbert R-Tree.
func (prt *PackedRTree) String() string {
	return fmt.Sprintf("PackedRTree{Bounds:%s,NumRefs:%d,NodeSize:%d}", prt.Bounds(), prt.numRefs, prt.nodeSize)
}

// Search walks the packed Hilbert R-Tree and calls visit with the
// Ref.Index of every reference whose box overlaps the open interior of
// b (see Box.OverlapsOpen). The order of visits is not defined. If
// visit returns false, the search stops early.
func (prt *PackedRTree) Search(b Box, visit func(index int) bool) {
	if visit == nil {
		textPanic("nil visit function")
	}

	q := make(ticketStack, 1, 2*len(prt.levels))
	q[0] = ticket{nodeIndex: 0, level: len(prt.levels) - 1}

	for len(q) > 0 {
		// Pop the next work ticket.
		t := q.pop()
		// Find the end node index to search this iteration and decide
		// if the target nodes to search are leaves.
		end := t.nodeIndex + prt.nodeSize
		if prt.levels[t.level].end < end {
			end = prt.levels[t.level].end
		}
		isLeafLevel := t.nodeIndex >= prt.levels[0].start
		// Search the nodes.
		for pos := t.nodeIndex; pos < end; pos++ {
			n := &prt.nodes[pos]
			if !n.OverlapsOpen(&b) {
				continue
			} else if isLeafLevel {
				if !visit(n.Index) {
					return
				}
			} else {
				q.push(ticket{nodeIndex: n.Index, level: t.level - 1})
			}
		}
	}
}
