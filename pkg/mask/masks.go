package mask

import "roimask/pkg/geom"

type (
	// Mask3D stacks 2D masks along Z
	Mask3D = Stack[*Mask2D]

	// Mask4D stacks 3D masks along T
	Mask4D = Stack[*Mask3D]

	// Mask5D stacks 4D masks along C
	Mask5D = Stack[*Mask4D]
)

// NewMask3D builds a 3D mask from one 2D slice per Z position of bounds.
// When Z is infinite only slices[0] is used. Nil and empty slices are
// skipped.
func NewMask3D(bounds geom.Box, slices []*Mask2D) (*Mask3D, error) {
	return newStack(3, bounds, slices)
}

// NewMask4D builds a 4D mask from one 3D mask per T position of bounds.
func NewMask4D(bounds geom.Box, slices []*Mask3D) (*Mask4D, error) {
	return newStack(4, bounds, slices)
}

// NewMask5D builds a 5D mask from one 4D mask per C position of bounds.
func NewMask5D(bounds geom.Box, slices []*Mask4D) (*Mask5D, error) {
	return newStack(5, bounds, slices)
}

// NewMask3DFromPoints builds the tightest 3D mask holding pts, given as
// (x, y, z) triples.
func NewMask3DFromPoints(pts []int) (*Mask3D, error) {
	var s *Mask3D
	return s.fromPoints(pts, 3)
}

// NewMask4DFromPoints builds the tightest 4D mask holding pts.
func NewMask4DFromPoints(pts []int) (*Mask4D, error) {
	var s *Mask4D
	return s.fromPoints(pts, 4)
}

// NewMask5DFromPoints builds the tightest 5D mask holding pts.
func NewMask5DFromPoints(pts []int) (*Mask5D, error) {
	var s *Mask5D
	return s.fromPoints(pts, 5)
}

// Mask2DAt returns the 2D mask of m at (z, t, c), or nil when that plane is
// empty.
func Mask2DAt(m *Mask5D, z, t, c int) *Mask2D {
	m4, ok := m.Slice(c)
	if !ok {
		return nil
	}
	m3, ok := m4.Slice(t)
	if !ok {
		return nil
	}
	m2, _ := m3.Slice(z)
	return m2
}

// Infinite extends m to every position of a new outer axis.
func Infinite[M Slice[M]](m M) *Stack[M] {
	inner := m.Bounds()
	s := newEmptyStack[M](inner.Dims + 1)
	if m.IsEmpty() {
		return s
	}
	s.bounds = inner.WithOuter(geom.InfiniteMin, geom.Infinite)
	s.slices.put(InfiniteKey, m.Clone())
	return s
}
