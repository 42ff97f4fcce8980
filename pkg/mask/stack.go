package mask

import (
	"fmt"

	"roimask/pkg/geom"
)

var axisNames = [geom.MaxDims]string{"X", "Y", "Z", "T", "C"}

// Stack is a sparse, ordered collection of lower dimensional masks along a
// new outer axis. A missing key means the slice at that position is empty.
type Stack[M Slice[M]] struct {
	bounds geom.Box
	slices index[M]
}

func newEmptyStack[M Slice[M]](dims int) *Stack[M] {
	return &Stack[M]{bounds: geom.Empty(dims)}
}

// newStack builds a stack over bounds from a copy of one child per outer
// position. An infinite outer axis uses only the first child.
func newStack[M Slice[M]](dims int, bounds geom.Box, children []M) (*Stack[M], error) {
	if bounds.Dims != dims {
		return nil, fmt.Errorf("%w: %dD mask needs %dD bounds, got %d axes", ErrInvalidData, dims, dims, bounds.Dims)
	}
	s := newEmptyStack[M](dims)
	if bounds.IsEmpty() {
		return s, nil
	}
	s.bounds = bounds

	origin, size := bounds.Outer()
	if size == geom.Infinite {
		if len(children) > 0 && !children[0].IsEmpty() {
			s.slices.put(InfiniteKey, children[0].Clone())
		}
		return s, nil
	}
	if len(children) < size {
		return nil, fmt.Errorf("%w: %v needs %d slices, got %d", ErrInvalidData, bounds, size, len(children))
	}
	for i := 0; i < size; i++ {
		if !children[i].IsEmpty() {
			s.slices.put(origin+i, children[i].Clone())
		}
	}
	return s, nil
}

func (s *Stack[M]) fromPoints(pts []int, dims int) (*Stack[M], error) {
	r := newEmptyStack[M](dims)
	bounds := geom.BoundingBox(pts, dims)
	if bounds.IsEmpty() {
		return r, nil
	}
	r.bounds = bounds

	groups := make(map[int][]int)
	var order []int
	for i := 0; i+dims <= len(pts); i += dims {
		k := pts[i+dims-1]
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], pts[i:i+dims-1]...)
	}

	var zero M
	for _, k := range order {
		child, err := zero.fromPoints(groups[k], dims-1)
		if err != nil {
			return nil, err
		}
		if !child.IsEmpty() {
			r.slices.put(k, child)
		}
	}
	return r, nil
}

func (s *Stack[M]) single(p []int) *Stack[M] {
	var zero M
	dims := len(p)
	r := &Stack[M]{bounds: geom.BoundingBox(p, dims)}
	r.slices.put(p[dims-1], zero.single(p[:dims-1]))
	return r
}

// Bounds returns the storage bounds
func (s *Stack[M]) Bounds() geom.Box {
	if s == nil {
		var zero M
		return geom.Empty(zero.Bounds().Dims + 1)
	}
	return s.bounds
}

// Dims returns the number of axes
func (s *Stack[M]) Dims() int {
	return s.Bounds().Dims
}

// IsInfinite reports whether the outer axis spans every position
func (s *Stack[M]) IsInfinite() bool {
	if s == nil || s.bounds.Dims == 0 {
		return false
	}
	return s.bounds.IsInfinite(s.bounds.Dims - 1)
}

func (s *Stack[M]) axisName() string {
	return axisNames[s.bounds.Dims-1]
}

// Slice returns the child mask at outer position k. A stack with an infinite
// outer axis returns its single child for any k.
func (s *Stack[M]) Slice(k int) (M, bool) {
	if s == nil {
		var zero M
		return zero, false
	}
	if s.IsInfinite() {
		_, m, ok := s.slices.first()
		return m, ok
	}
	return s.slices.get(k)
}

// Keys returns the outer positions holding a child, ascending.
func (s *Stack[M]) Keys() []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s.slices.keys...)
}

// FirstKey returns the lowest outer position holding a child.
func (s *Stack[M]) FirstKey() (int, bool) {
	if s == nil {
		return 0, false
	}
	k, _, ok := s.slices.first()
	return k, ok
}

// LastKey returns the highest outer position holding a child.
func (s *Stack[M]) LastKey() (int, bool) {
	if s == nil {
		return 0, false
	}
	k, _, ok := s.slices.last()
	return k, ok
}

// SubRange returns a copy of s restricted to the outer positions [lo, hi).
func (s *Stack[M]) SubRange(lo, hi int) (*Stack[M], error) {
	r := s.Clone()
	if r == nil {
		return nil, nil
	}
	if hi <= lo {
		return newEmptyStack[M](s.bounds.Dims), nil
	}
	if r.IsInfinite() {
		return r, r.MoveBounds(r.bounds.Inner().WithOuter(lo, hi-lo))
	}
	return r, r.MoveBounds(r.bounds.Intersect(r.bounds.Inner().WithOuter(lo, hi-lo)))
}

// IsEmpty reports whether the mask holds no point.
func (s *Stack[M]) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, k := range s.slices.keys {
		if m, _ := s.slices.get(k); !m.IsEmpty() {
			return false
		}
	}
	return true
}

// NumPoints returns the number of points in the region. An infinite outer
// axis is counted once.
func (s *Stack[M]) NumPoints() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, k := range s.slices.keys {
		m, _ := s.slices.get(k)
		n += m.NumPoints()
	}
	return n
}

// Clone returns a deep copy
func (s *Stack[M]) Clone() *Stack[M] {
	if s == nil {
		return nil
	}
	r := &Stack[M]{bounds: s.bounds}
	for _, k := range s.slices.keys {
		m, _ := s.slices.get(k)
		r.slices.put(k, m.Clone())
	}
	return r
}

// Contains reports whether the point, given as x, y, z, ... is in the region
func (s *Stack[M]) Contains(p ...int) bool {
	if s == nil || len(p) != s.bounds.Dims {
		return false
	}
	return s.containsPoint(p)
}

func (s *Stack[M]) containsPoint(p []int) bool {
	if !s.bounds.Contains(p) {
		return false
	}
	dims := s.bounds.Dims
	m, ok := s.Slice(p[dims-1])
	return ok && m.containsPoint(p[:dims-1])
}

// combineSlices applies op to two children, either of which may be missing.
func combineSlices[M Slice[M]](op Op, a M, hasA bool, b M, hasB bool) (M, bool, error) {
	var zero M
	switch {
	case !hasA && !hasB:
		return zero, false, nil
	case !hasB:
		if op == OpIntersection {
			return zero, false, nil
		}
		return a.Clone(), true, nil
	case !hasA:
		if op == OpUnion || op == OpExclusiveUnion {
			return b.Clone(), true, nil
		}
		return zero, false, nil
	}
	r, err := a.combine(op, b)
	if err != nil {
		return zero, false, err
	}
	return r, true, nil
}

func (s *Stack[M]) combine(op Op, o *Stack[M]) (*Stack[M], error) {
	dims := s.Bounds().Dims
	if dims == 0 {
		dims = o.Bounds().Dims
	}

	sEmpty, oEmpty := s.IsEmpty(), o.IsEmpty()
	switch {
	case sEmpty && oEmpty:
		return newEmptyStack[M](dims), nil
	case oEmpty:
		if op == OpIntersection {
			return newEmptyStack[M](dims), nil
		}
		return s.Clone(), nil
	case sEmpty:
		if op == OpUnion || op == OpExclusiveUnion {
			return o.Clone(), nil
		}
		return newEmptyStack[M](dims), nil
	}

	if s.IsInfinite() != o.IsInfinite() {
		return nil, fmt.Errorf("%w: cannot compute %s of an infinite %s dimension mask with a finite one",
			ErrDimensionMismatch, op, s.axisName())
	}

	r := newEmptyStack[M](dims)
	bounds := op.resultBounds(s.bounds, o.bounds)
	if bounds.IsEmpty() {
		return r, nil
	}
	r.bounds = bounds

	if s.IsInfinite() {
		_, a, hasA := s.slices.first()
		_, b, hasB := o.slices.first()
		m, ok, err := combineSlices(op, a, hasA, b, hasB)
		if err != nil {
			return nil, err
		}
		if ok && !m.IsEmpty() {
			r.slices.put(InfiniteKey, m)
		}
		return r, nil
	}

	var keys []int
	switch op {
	case OpUnion, OpExclusiveUnion:
		keys = unionKeys(s.slices.keys, o.slices.keys)
	case OpIntersection:
		keys = intersectKeys(s.slices.keys, o.slices.keys)
	default:
		keys = s.slices.keys
	}

	for _, k := range keys {
		a, hasA := s.slices.get(k)
		b, hasB := o.slices.get(k)
		m, ok, err := combineSlices(op, a, hasA, b, hasB)
		if err != nil {
			return nil, err
		}
		if ok && !m.IsEmpty() {
			r.slices.put(k, m)
		}
	}
	return r, nil
}

// ContainsMask reports whether every point of o is also in s.
func (s *Stack[M]) ContainsMask(o *Stack[M]) bool {
	if o.IsEmpty() {
		return true
	}
	if s.IsEmpty() {
		return false
	}

	if o.IsInfinite() {
		if !s.IsInfinite() {
			return false
		}
		_, a, _ := s.slices.first()
		_, b, _ := o.slices.first()
		return a.ContainsMask(b)
	}

	for _, k := range o.slices.keys {
		b, _ := o.slices.get(k)
		if b.IsEmpty() {
			continue
		}
		a, ok := s.Slice(k)
		if !ok || !a.ContainsMask(b) {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o share at least one point.
func (s *Stack[M]) Intersects(o *Stack[M]) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return false
	}

	if o.IsInfinite() || s.IsInfinite() {
		single, many := o, s
		if !o.IsInfinite() {
			single, many = s, o
		}
		_, b, _ := single.slices.first()
		for _, k := range many.slices.keys {
			a, _ := many.slices.get(k)
			if a.Intersects(b) {
				return true
			}
		}
		return false
	}

	for _, k := range intersectKeys(s.slices.keys, o.slices.keys) {
		a, _ := s.slices.get(k)
		b, _ := o.slices.get(k)
		if a.Intersects(b) {
			return true
		}
	}
	return false
}

// OptimizedBounds returns the tightest bounds holding every point, computing
// each child's optimized bounds first.
func (s *Stack[M]) OptimizedBounds() geom.Box {
	return s.optimizedBounds(true)
}

// optimizedBounds merges the child bounds. A single slice on an infinite
// outer axis keeps the axis infinite.
func (s *Stack[M]) optimizedBounds(computeChildren bool) geom.Box {
	dims := s.bounds.Dims
	inner := geom.Empty(dims - 1)
	found := false
	var minK, maxK int

	for _, k := range s.slices.keys {
		m, _ := s.slices.get(k)
		var b geom.Box
		if computeChildren {
			b = m.OptimizedBounds()
		} else {
			b = m.Bounds()
		}
		if b.IsEmpty() {
			continue
		}
		inner = inner.Union(b)
		if !found {
			minK, maxK, found = k, k, true
		} else {
			minK, maxK = min(minK, k), max(maxK, k)
		}
	}

	if !found {
		return geom.Empty(dims)
	}
	if minK == maxK && s.IsInfinite() {
		return inner.WithOuter(geom.InfiniteMin, geom.Infinite)
	}
	return inner.WithOuter(minK, maxK-minK+1)
}

// OptimizeBounds shrinks every child and then the stack to fit the points.
func (s *Stack[M]) OptimizeBounds() error {
	if s == nil {
		return errNilMask
	}
	for _, k := range s.Keys() {
		m, _ := s.slices.get(k)
		if err := m.OptimizeBounds(); err != nil {
			return err
		}
		if m.IsEmpty() {
			s.slices.remove(k)
		}
	}
	return s.MoveBounds(s.optimizedBounds(false))
}

// MoveBounds changes the bounds, keeping the data inside the new ones.
//
// Going from an infinite to a finite outer axis clones the single child to
// every new position. Going from finite to infinite keeps the child at the
// current outer origin, or the first child when that one is missing. Every
// kept child is moved to the inner part of value.
//
// An error from a child leaves the already moved children in place.
func (s *Stack[M]) MoveBounds(value geom.Box) error {
	if s == nil {
		return errNilMask
	}
	if s.bounds.Equal(value) {
		return nil
	}
	if value.IsEmpty() {
		s.bounds = geom.Empty(value.Dims)
		s.slices = index[M]{}
		return nil
	}

	inner := value.Inner()
	origin, size := value.Outer()
	var next index[M]

	switch {
	case s.IsInfinite():
		_, m, ok := s.slices.first()
		if ok {
			if err := m.MoveBounds(inner); err != nil {
				return err
			}
			if !m.IsEmpty() {
				if size == geom.Infinite {
					next.put(InfiniteKey, m)
				} else {
					for c := 0; c < size; c++ {
						next.put(origin+c, m.Clone())
					}
				}
			}
		}

	case size == geom.Infinite:
		m, ok := s.slices.get(s.bounds.Min[s.bounds.Dims-1])
		if !ok {
			_, m, ok = s.slices.first()
		}
		if ok {
			if err := m.MoveBounds(inner); err != nil {
				return err
			}
			if !m.IsEmpty() {
				next.put(InfiniteKey, m)
			}
		}

	default:
		for _, k := range s.slices.keys {
			if k < origin || k-origin >= size {
				continue
			}
			m, _ := s.slices.get(k)
			if err := m.MoveBounds(inner); err != nil {
				return err
			}
			if !m.IsEmpty() {
				next.put(k, m)
			}
		}
	}

	Logger().Debug("mask: moved bounds", "dims", value.Dims, "from", s.bounds.String(), "to", value.String())
	s.bounds = value
	s.slices = next
	return nil
}

// SetPoint sets or clears the point p = (x, y, z, ...). Setting a point
// outside the bounds grows them.
func (s *Stack[M]) SetPoint(v bool, p ...int) error {
	if s == nil {
		return errNilMask
	}
	dims := s.bounds.Dims
	if dims == 0 || len(p) != dims {
		return fmt.Errorf("%w: %dD point given to a %dD mask", ErrInvalidData, len(p), dims)
	}
	inner := p[:dims-1]

	m, ok := s.Slice(p[dims-1])
	if !v {
		if ok && s.bounds.Contains(p) {
			return m.SetPoint(false, inner...)
		}
		return nil
	}

	if ok {
		if err := m.SetPoint(true, inner...); err != nil {
			return err
		}
	} else {
		k := p[dims-1]
		if s.IsInfinite() {
			k = InfiniteKey
		}
		var zero M
		s.slices.put(k, zero.single(inner))
	}
	if !s.bounds.Contains(p) {
		s.bounds = s.bounds.Union(geom.BoundingBox(p, dims))
	}
	return nil
}

// exactContour reports whether contour points are computed exactly. Above
// three dimensions the outer axis uses the first/last slice approximation.
func (s *Stack[M]) exactContour() bool {
	return s.bounds.Dims <= 3
}

func (s *Stack[M]) onContour(p []int) bool {
	dims := s.bounds.Dims
	k := p[dims-1]
	inner := p[:dims-1]
	m, ok := s.Slice(k)
	if !ok || !m.containsPoint(inner) {
		return false
	}
	if s.exactContour() {
		if s.IsInfinite() {
			return m.onContour(inner)
		}
		if m.onContour(inner) {
			return true
		}
		q := append([]int(nil), p...)
		q[dims-1] = k - 1
		if !s.containsPoint(q) {
			return true
		}
		q[dims-1] = k + 1
		return !s.containsPoint(q)
	}

	// first and last slices contribute every point, the others their contour
	first, _, _ := s.slices.first()
	last, _, _ := s.slices.last()
	if s.slices.len() <= 2 || k == first || k == last {
		return true
	}
	return m.onContour(inner)
}

func (s *Stack[M]) appendPoints(dst, suffix []int) []int {
	if s == nil {
		return dst
	}
	for _, k := range s.slices.keys {
		m, _ := s.slices.get(k)
		dst = m.appendPoints(dst, append([]int{k}, suffix...))
	}
	return dst
}

// Points returns every point as consecutive coordinate tuples (x, y, z, ...)
// ordered by outer position first and then by the child's order.
func (s *Stack[M]) Points() []int {
	return s.appendPoints(nil, nil)
}

// ContourPoints returns the surface points in the same order as Points.
//
// For 3D masks a voxel is on the surface when it is a contour pixel of its
// slice or a Z neighbour is missing. Above three dimensions the result is an
// approximation: every point of the first and last outer slices plus the
// contour points of the slices in between.
func (s *Stack[M]) ContourPoints() []int {
	if s == nil {
		return nil
	}
	dims := s.bounds.Dims
	var dst []int

	if !s.exactContour() && s.slices.len() > 2 {
		firstKey, first, _ := s.slices.first()
		lastKey, last, _ := s.slices.last()

		dst = first.appendPoints(dst, []int{firstKey})
		for _, k := range s.slices.between(firstKey, lastKey) {
			m, _ := s.slices.get(k)
			dst = appendWithOuter(dst, m.ContourPoints(), dims-1, k)
		}
		return last.appendPoints(dst, []int{lastKey})
	}

	pts := s.Points()
	for i := 0; i+dims <= len(pts); i += dims {
		if s.onContour(pts[i : i+dims]) {
			dst = append(dst, pts[i:i+dims]...)
		}
	}
	return dst
}

// appendWithOuter appends each tuple of pts followed by k.
func appendWithOuter(dst, pts []int, dims, k int) []int {
	for i := 0; i+dims <= len(pts); i += dims {
		dst = append(dst, pts[i:i+dims]...)
		dst = append(dst, k)
	}
	return dst
}
