// Package geom provides axis-aligned integer boxes over the X, Y, Z, T and C
// axes of a multi-dimensional image.
package geom

import (
	"fmt"
	"math"
	"strings"
)

// MaxDims is the largest number of axes a Box can hold
const MaxDims = 5

const (
	// Infinite is the size of an axis that spans every position
	Infinite = math.MaxInt32

	// InfiniteMin is the origin of an infinite axis
	InfiniteMin = math.MinInt32
)

var axisNames = [MaxDims]string{"X", "Y", "Z", "T", "C"}

// Box is an axis-aligned integer box. Axes beyond Dims are ignored.
type Box struct {
	Dims int
	Min  [MaxDims]int
	Size [MaxDims]int
}

// NewBox builds a box from matching origin and size slices.
func NewBox(origin, size []int) Box {
	if len(origin) != len(size) || len(origin) > MaxDims {
		panic(fmt.Sprintf("geom: invalid box dimensions %d/%d", len(origin), len(size)))
	}
	b := Box{Dims: len(origin)}
	copy(b.Min[:], origin)
	copy(b.Size[:], size)
	return b
}

// Rect returns a 2D box
func Rect(x, y, w, h int) Box {
	return NewBox([]int{x, y}, []int{w, h})
}

// Empty returns the empty box with the given number of axes.
func Empty(dims int) Box {
	return Box{Dims: dims}
}

// BoundingBox returns the tightest box holding every point of a flat
// coordinate list with dims ints per point.
func BoundingBox(points []int, dims int) Box {
	b := Empty(dims)
	if len(points) < dims {
		return b
	}

	var lo, hi [MaxDims]int
	for a := 0; a < dims; a++ {
		lo[a], hi[a] = math.MaxInt, math.MinInt
	}
	for i := 0; i+dims <= len(points); i += dims {
		for a := 0; a < dims; a++ {
			v := points[i+a]
			lo[a] = min(lo[a], v)
			hi[a] = max(hi[a], v)
		}
	}
	for a := 0; a < dims; a++ {
		b.Min[a] = lo[a]
		b.Size[a] = hi[a] - lo[a] + 1
	}
	return b
}

// IsInfinite reports whether axis spans every position
func (b Box) IsInfinite(axis int) bool {
	return b.Size[axis] == Infinite
}

// IsEmpty reports whether the box holds no position
func (b Box) IsEmpty() bool {
	if b.Dims == 0 {
		return true
	}
	for a := 0; a < b.Dims; a++ {
		if b.Size[a] <= 0 {
			return true
		}
	}
	return false
}

// Max returns the exclusive end of axis.
func (b Box) Max(axis int) int {
	if b.IsInfinite(axis) {
		return math.MaxInt
	}
	return b.Min[axis] + b.Size[axis]
}

// Len returns the number of positions covered, saturating at math.MaxInt.
func (b Box) Len() int {
	if b.IsEmpty() {
		return 0
	}
	n := 1
	for a := 0; a < b.Dims; a++ {
		s := b.Size[a]
		if s != 0 && n > math.MaxInt/s {
			return math.MaxInt
		}
		n *= s
	}
	return n
}

// Contains reports whether the point, given inner axis first, lies in the box.
func (b Box) Contains(p []int) bool {
	if b.IsEmpty() || len(p) < b.Dims {
		return false
	}
	for a := 0; a < b.Dims; a++ {
		if b.IsInfinite(a) {
			continue
		}
		if p[a] < b.Min[a] || p[a] >= b.Min[a]+b.Size[a] {
			return false
		}
	}
	return true
}

// Union returns the smallest box covering b and o. An empty operand is
// ignored; an axis infinite in either operand is infinite in the result.
func (b Box) Union(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}

	r := Box{Dims: b.Dims}
	for a := 0; a < b.Dims; a++ {
		if b.IsInfinite(a) || o.IsInfinite(a) {
			r.Min[a], r.Size[a] = InfiniteMin, Infinite
			continue
		}
		lo := min(b.Min[a], o.Min[a])
		hi := max(b.Min[a]+b.Size[a], o.Min[a]+o.Size[a])
		r.Min[a], r.Size[a] = lo, hi-lo
	}
	return r
}

// Intersect returns the overlap of b and o. An axis is infinite in the result
// only when it is infinite in both operands.
func (b Box) Intersect(o Box) Box {
	r := Box{Dims: b.Dims}
	if b.IsEmpty() || o.IsEmpty() {
		return r
	}

	for a := 0; a < b.Dims; a++ {
		switch {
		case b.IsInfinite(a) && o.IsInfinite(a):
			r.Min[a], r.Size[a] = InfiniteMin, Infinite
		case b.IsInfinite(a):
			r.Min[a], r.Size[a] = o.Min[a], o.Size[a]
		case o.IsInfinite(a):
			r.Min[a], r.Size[a] = b.Min[a], b.Size[a]
		default:
			lo := max(b.Min[a], o.Min[a])
			hi := min(b.Min[a]+b.Size[a], o.Min[a]+o.Size[a])
			if hi <= lo {
				return Box{Dims: b.Dims}
			}
			r.Min[a], r.Size[a] = lo, hi-lo
		}
	}
	return r
}

// Outer returns the origin and size of the outermost axis.
func (b Box) Outer() (int, int) {
	return b.Min[b.Dims-1], b.Size[b.Dims-1]
}

// Inner returns the box without its outermost axis.
func (b Box) Inner() Box {
	r := b
	r.Dims--
	r.Min[r.Dims], r.Size[r.Dims] = 0, 0
	return r
}

// WithOuter extends inner with a new outermost axis.
func (b Box) WithOuter(origin, size int) Box {
	r := b
	r.Min[r.Dims], r.Size[r.Dims] = origin, size
	r.Dims++
	return r
}

// Equal reports whether both boxes cover the same axes identically.
// All empty boxes of the same dimensionality are equal.
func (b Box) Equal(o Box) bool {
	if b.Dims != o.Dims {
		return false
	}
	if b.IsEmpty() || o.IsEmpty() {
		return b.IsEmpty() && o.IsEmpty()
	}
	return b.Min == o.Min && b.Size == o.Size
}

func (b Box) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for a := 0; a < b.Dims; a++ {
		if a > 0 {
			sb.WriteString(", ")
		}
		if b.IsInfinite(a) {
			fmt.Fprintf(&sb, "%s=*", axisNames[a])
			continue
		}
		fmt.Fprintf(&sb, "%s=%d+%d", axisNames[a], b.Min[a], b.Size[a])
	}
	sb.WriteByte(']')
	return sb.String()
}
