// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []Strategy{Linear, PackedRTree}

func withEach(t *testing.T, points []Point, f func(t *testing.T, sc *SearchContext)) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			sc, err := Create(points, WithStrategy(s), WithNodeSize(2))
			require.NoError(t, err)
			defer sc.Destroy()

			f(t, sc)
		})
	}
}

// bruteForce is the reference answer: filter, stable sort by rank,
// truncate.
func bruteForce(points []Point, r Rect, maxCount int) []Point {
	var matches []Point
	for _, p := range points {
		if r.ContainsPoint(p) {
			matches = append(matches, p)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rank < matches[j].Rank
	})
	if len(matches) > maxCount {
		matches = matches[:maxCount]
	}
	return matches
}

func TestCreate(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		for _, points := range [][]Point{nil, {}} {
			sc, err := Create(points, WithStrategy(PackedRTree))

			require.NoError(t, err)
			assert.Equal(t, 0, sc.Len())
			assert.Equal(t, Linear, sc.Strategy())
			sc.Destroy()
		}
	})

	t.Run("AutoStrategy", func(t *testing.T) {
		points := make([]Point, 10)

		small, err := Create(points, WithIndexThreshold(11))
		require.NoError(t, err)
		assert.Equal(t, Linear, small.Strategy())

		large, err := Create(points, WithIndexThreshold(10))
		require.NoError(t, err)
		assert.Equal(t, PackedRTree, large.Strategy())
	})

	t.Run("CopiesInput", func(t *testing.T) {
		points := []Point{{X: 1, Y: 1, Rank: 1}, {X: 2, Y: 2, Rank: 2}}
		withEach(t, points, func(t *testing.T, sc *SearchContext) {
			saved := points[0]
			points[0] = Point{X: 100, Y: 100, Rank: -1}
			defer func() { points[0] = saved }()

			actual := sc.Find(Rect{0, 0, 10, 10}, 10)

			assert.Equal(t, []Point{{X: 1, Y: 1, Rank: 1}, {X: 2, Y: 2, Rank: 2}}, actual)
		})
	})

	t.Run("OutOfMemory", func(t *testing.T) {
		t.Run("MaxBytes", func(t *testing.T) {
			points := make([]Point, 3)

			sc, err := Create(points, WithStrategy(Linear), WithMaxBytes(3*numPointBytes-1))

			assert.Nil(t, sc)
			assert.ErrorIs(t, err, ErrOutOfMemory)
		})

		t.Run("MaxBytes.Fits", func(t *testing.T) {
			points := make([]Point, 3)

			sc, err := Create(points, WithStrategy(Linear), WithMaxBytes(3*numPointBytes))

			require.NoError(t, err)
			assert.Equal(t, 3, sc.Len())
		})

		t.Run("MaxBytes.Index", func(t *testing.T) {
			points := make([]Point, 3)

			_, err := Create(points, WithStrategy(Linear), WithMaxBytes(3*numPointBytes))
			require.NoError(t, err)
			_, err = Create(points, WithStrategy(PackedRTree), WithMaxBytes(3*numPointBytes))
			assert.ErrorIs(t, err, ErrOutOfMemory)
		})

		t.Run("TooManyPoints", func(t *testing.T) {
			n := int64(math.MaxInt32) + 1

			_, err := footprint(int(n), false, DefaultNodeSize, 0)

			assert.ErrorIs(t, err, ErrOutOfMemory)
			assert.EqualError(t, err, "pointsearch: 2147483648 points exceeds maximum of 2147483647: pointsearch: out of memory")
		})
	})
}

func TestFootprint(t *testing.T) {
	indexBytes, err := footprint(100, false, 16, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), indexBytes)

	indexBytes, err = footprint(100, true, 16, 0)
	require.NoError(t, err)
	assert.Greater(t, indexBytes, 100*numRefBytes)
}

func TestAllocate(t *testing.T) {
	t.Run("RuntimeError", func(t *testing.T) {
		n := -1

		err := allocate(func() {
			_ = make([]Point, n)
		})

		assert.ErrorIs(t, err, ErrOutOfMemory)
	})

	t.Run("OtherPanic", func(t *testing.T) {
		assert.PanicsWithValue(t, "foo", func() {
			_ = allocate(func() { panic("foo") })
		})
	})

	t.Run("NoPanic", func(t *testing.T) {
		assert.NoError(t, allocate(func() {}))
	})
}

func TestSearchContext_Search(t *testing.T) {
	t.Run("Examples", func(t *testing.T) {
		testCases := []struct {
			name     string
			points   []Point
			rect     Rect
			maxCount int
			expected []Point
		}{
			{
				name:     "Truncated",
				points:   []Point{{X: 0, Y: 0, Rank: 5}, {X: 5, Y: 5, Rank: 1}, {X: 2, Y: 2, Rank: 3}},
				rect:     Rect{-1, -1, 10, 10},
				maxCount: 2,
				expected: []Point{{X: 5, Y: 5, Rank: 1}, {X: 2, Y: 2, Rank: 3}},
			},
			{
				name:     "Corner",
				points:   []Point{{X: 1, Y: 1, Rank: 0}},
				rect:     Rect{1, 1, 5, 5},
				maxCount: 10,
				expected: []Point{},
			},
			{
				name:     "Empty",
				points:   nil,
				rect:     Rect{-1000, -1000, 1000, 1000},
				maxCount: 10,
				expected: []Point{},
			},
			{
				name:     "MaxCountExceedsMatches",
				points:   []Point{{X: 1, Y: 1, Rank: 2}, {X: 9, Y: 9, Rank: 1}, {X: 20, Y: 20, Rank: 0}},
				rect:     Rect{0, 0, 10, 10},
				maxCount: 5,
				expected: []Point{{X: 9, Y: 9, Rank: 1}, {X: 1, Y: 1, Rank: 2}},
			},
			{
				name:     "MaxCountZero",
				points:   []Point{{X: 1, Y: 1, Rank: 2}},
				rect:     Rect{0, 0, 10, 10},
				maxCount: 0,
				expected: []Point{},
			},
			{
				name:     "Inverted",
				points:   []Point{{X: 1, Y: 1, Rank: 2}},
				rect:     Rect{10, 10, 0, 0},
				maxCount: 1,
				expected: []Point{},
			},
			{
				name:     "Edges",
				points:   []Point{{X: 0, Y: 5, Rank: 0}, {X: 10, Y: 5, Rank: 1}, {X: 5, Y: 0, Rank: 2}, {X: 5, Y: 10, Rank: 3}, {X: 5, Y: 5, Rank: 4}},
				rect:     Rect{0, 0, 10, 10},
				maxCount: 5,
				expected: []Point{{X: 5, Y: 5, Rank: 4}},
			},
			{
				name:     "ExtremeRanks",
				points:   []Point{{X: 1, Y: 1, Rank: math.MaxInt32}, {X: 2, Y: 2, Rank: math.MinInt32}, {X: 3, Y: 3, Rank: 0}},
				rect:     Rect{0, 0, 10, 10},
				maxCount: 3,
				expected: []Point{{X: 2, Y: 2, Rank: math.MinInt32}, {X: 3, Y: 3, Rank: 0}, {X: 1, Y: 1, Rank: math.MaxInt32}},
			},
			{
				name:     "TiesInInputOrder",
				points:   []Point{{X: 1, Y: 1, Rank: 7}, {X: 2, Y: 2, Rank: 3}, {X: 3, Y: 3, Rank: 7}, {X: 4, Y: 4, Rank: 7}},
				rect:     Rect{0, 0, 10, 10},
				maxCount: 3,
				expected: []Point{{X: 2, Y: 2, Rank: 3}, {X: 1, Y: 1, Rank: 7}, {X: 3, Y: 3, Rank: 7}},
			},
			{
				name:     "NaNPoint",
				points:   []Point{{X: float32(math.NaN()), Y: 1, Rank: 0}, {X: 1, Y: 1, Rank: 1}},
				rect:     Rect{0, 0, 10, 10},
				maxCount: 2,
				expected: []Point{{X: 1, Y: 1, Rank: 1}},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				withEach(t, testCase.points, func(t *testing.T, sc *SearchContext) {
					out := make([]Point, testCase.maxCount+1)
					sentinel := Point{X: -99, Y: -99, Rank: -99}
					for i := range out {
						out[i] = sentinel
					}

					n := sc.Search(testCase.rect, testCase.maxCount, out)

					assert.Equal(t, testCase.expected, out[:n])
					for i := n; i < len(out); i++ {
						assert.Equal(t, sentinel, out[i], "out[%d] written", i)
					}
				})
			})
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		points := randomPoints(rand.New(rand.NewSource(1)), 500, 8)
		withEach(t, points, func(t *testing.T, sc *SearchContext) {
			r := Rect{-20, -20, 30, 30}

			first := sc.Find(r, 50)
			second := sc.Find(r, 50)

			assert.Equal(t, first, second)
		})
	})

	t.Run("Random", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for _, numPoints := range []int{1, 2, 17, 300, 2000} {
			points := randomPoints(rng, numPoints, 10)
			t.Run(strconv.Itoa(numPoints), func(t *testing.T) {
				withEach(t, points, func(t *testing.T, sc *SearchContext) {
					for i := 0; i < 50; i++ {
						r := randomRect(rng)
						maxCount := rng.Intn(numPoints + 5)

						actual := sc.Find(r, maxCount)

						expected := bruteForce(points, r, maxCount)
						if expected == nil {
							expected = []Point{}
						}
						require.Equal(t, expected, actual, "rect %s max count %d", r, maxCount)
					}
				})
			})
		}
	})

	t.Run("Panic", func(t *testing.T) {
		withEach(t, []Point{{X: 1, Y: 1}}, func(t *testing.T, sc *SearchContext) {
			assert.PanicsWithValue(t, "pointsearch: negative max count -1", func() {
				sc.Search(Rect{0, 0, 2, 2}, -1, nil)
			})
			assert.PanicsWithValue(t, "pointsearch: output buffer length 1 smaller than max count 2", func() {
				sc.Search(Rect{0, 0, 2, 2}, 2, make([]Point, 1))
			})
			assert.PanicsWithValue(t, "pointsearch: negative max count -3", func() {
				sc.Find(Rect{0, 0, 2, 2}, -3)
			})
		})
	})
}

func TestSearchContext_Find(t *testing.T) {
	points := []Point{{X: 1, Y: 1, Rank: 4}, {X: 2, Y: 2, Rank: 3}}
	withEach(t, points, func(t *testing.T, sc *SearchContext) {
		actual := sc.Find(Rect{0, 0, 10, 10}, math.MaxInt32)

		assert.Equal(t, []Point{{X: 2, Y: 2, Rank: 3}, {X: 1, Y: 1, Rank: 4}}, actual)
		assert.Equal(t, 2, cap(actual))
	})
}

func TestSearchContext_Destroy(t *testing.T) {
	newDestroyed := func(t *testing.T) *SearchContext {
		sc, err := Create([]Point{{X: 1, Y: 1}})
		require.NoError(t, err)
		sc.Destroy()
		return sc
	}

	testCases := []struct {
		name string
		call func(sc *SearchContext)
	}{
		{"Search", func(sc *SearchContext) { sc.Search(Rect{0, 0, 2, 2}, 0, nil) }},
		{"Find", func(sc *SearchContext) { sc.Find(Rect{0, 0, 2, 2}, 1) }},
		{"Len", func(sc *SearchContext) { sc.Len() }},
		{"Strategy", func(sc *SearchContext) { sc.Strategy() }},
		{"SearchBatch", func(sc *SearchContext) { _, _ = sc.SearchBatch(context.Background(), nil) }},
		{"Destroy", func(sc *SearchContext) { sc.Destroy() }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			sc := newDestroyed(t)

			assert.PanicsWithValue(t, "pointsearch: search context destroyed", func() {
				testCase.call(sc)
			})
		})
	}

	t.Run("ZeroValue", func(t *testing.T) {
		var sc SearchContext

		assert.PanicsWithValue(t, "pointsearch: invalid state 0x0 (use Create)", func() {
			sc.Len()
		})
	})

	t.Run("ReleasesStorage", func(t *testing.T) {
		sc, err := Create(make([]Point, 10), WithStrategy(PackedRTree))
		require.NoError(t, err)

		sc.Destroy()

		assert.Nil(t, sc.points)
		assert.Nil(t, sc.index)
	})
}

func TestSearchContext_String(t *testing.T) {
	sc, err := Create(make([]Point, 3), WithStrategy(Linear))
	require.NoError(t, err)

	assert.Equal(t, "SearchContext{Points:3,Strategy:linear}", sc.String())
	sc.Destroy()
	assert.Equal(t, "SearchContext{destroyed}", sc.String())
}

func randomPoints(rng *rand.Rand, n int, numRanks int32) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{
			X:    float32(rng.Intn(100) - 50),
			Y:    float32(rng.Intn(100) - 50),
			Rank: rng.Int31n(numRanks),
		}
	}
	return points
}

func randomRect(rng *rand.Rand) Rect {
	x := float32(rng.Intn(120) - 60)
	y := float32(rng.Intn(120) - 60)
	return Rect{
		LX: x,
		LY: y,
		HX: x + float32(rng.Intn(80)) - 5,
		HY: y + float32(rng.Intn(80)) - 5,
	}
}
