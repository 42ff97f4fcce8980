// Package mask implements boolean region algebra over up to five image axes
// (X, Y, Z, T, C).
//
// A Mask2D is a dense bitmap over a rectangle. Higher dimensions stack masks
// of the previous dimension along a new outer axis:
//
//	Mask3D = Stack[*Mask2D]   (Z)
//	Mask4D = Stack[*Mask3D]   (T)
//	Mask5D = Stack[*Mask4D]   (C)
//
// A stack whose outer axis has size geom.Infinite holds a single child keyed
// at InfiniteKey that applies to every position on that axis.
//
// Binary operations (Union, Intersection, ExclusiveUnion, Subtraction) always
// return a new mask and leave their inputs untouched. A nil mask reads as
// the empty mask. Mutating a nil mask returns ErrInvalidData.
package mask

import (
	"errors"
	"fmt"

	"roimask/pkg/geom"
)

// InfiniteKey is the slice key used by a stack with an infinite outer axis
const InfiniteKey = geom.InfiniteMin

var (
	// ErrDimensionMismatch is returned when a mask with an infinite outer
	// axis is combined with one that is finite on that axis.
	ErrDimensionMismatch = errors.New("mask: infinite and finite axis cannot be combined")

	// ErrBitmapTooLarge is returned when a bitmap allocation would exceed
	// MaxBitmapPixels. The mask keeps its previous bounds.
	ErrBitmapTooLarge = errors.New("mask: bitmap too large")

	// ErrInvalidData is returned when construction data does not match
	// the requested bounds.
	ErrInvalidData = errors.New("mask: data does not match bounds")

	errNilMask = fmt.Errorf("%w: nil mask", ErrInvalidData)
)

// Op is a boolean set operation
type Op int

const (
	OpUnion Op = iota
	OpIntersection
	OpExclusiveUnion
	OpSubtraction
)

func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpExclusiveUnion:
		return "xor"
	case OpSubtraction:
		return "subtraction"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// ParseOp parses an operation name as printed by Op.String.
func ParseOp(s string) (Op, error) {
	switch s {
	case "union", "or":
		return OpUnion, nil
	case "intersection", "and":
		return OpIntersection, nil
	case "xor", "exclusive-union":
		return OpExclusiveUnion, nil
	case "subtraction", "sub", "minus":
		return OpSubtraction, nil
	}
	return 0, fmt.Errorf("unknown mask operation: %q", s)
}

func (op Op) apply(a, b bool) bool {
	switch op {
	case OpUnion:
		return a || b
	case OpIntersection:
		return a && b
	case OpExclusiveUnion:
		return a != b
	default:
		return a && !b
	}
}

// resultBounds returns the storage bounds of a op b.
func (op Op) resultBounds(a, b geom.Box) geom.Box {
	switch op {
	case OpUnion, OpExclusiveUnion:
		return a.Union(b)
	case OpIntersection:
		return a.Intersect(b)
	default:
		return a
	}
}

// Slice is implemented by every mask level that can be stacked along a new
// outer axis. Only types of this package implement it.
type Slice[M any] interface {
	Bounds() geom.Box
	IsEmpty() bool
	NumPoints() int
	Clone() M
	ContainsMask(M) bool
	Intersects(M) bool
	OptimizedBounds() geom.Box
	OptimizeBounds() error
	MoveBounds(geom.Box) error
	Points() []int
	ContourPoints() []int
	SetPoint(v bool, p ...int) error

	combine(op Op, o M) (M, error)
	containsPoint(p []int) bool
	onContour(p []int) bool
	appendPoints(dst, suffix []int) []int
	single(p []int) M
	fromPoints(pts []int, dims int) (M, error)
}

// Combine applies op to a and b.
func Combine[M Slice[M]](op Op, a, b M) (M, error) {
	return a.combine(op, b)
}

// Union returns the points in a or b.
func Union[M Slice[M]](a, b M) (M, error) {
	return a.combine(OpUnion, b)
}

// Intersection returns the points in both a and b.
func Intersection[M Slice[M]](a, b M) (M, error) {
	return a.combine(OpIntersection, b)
}

// ExclusiveUnion returns the points in exactly one of a and b.
func ExclusiveUnion[M Slice[M]](a, b M) (M, error) {
	return a.combine(OpExclusiveUnion, b)
}

// Subtraction returns the points of a that are not in b.
func Subtraction[M Slice[M]](a, b M) (M, error) {
	return a.combine(OpSubtraction, b)
}

// allocBits allocates the bitmap for b, refusing anything over the
// configured cap.
func allocBits(b geom.Box) ([]bool, error) {
	n := b.Len()
	if limit := MaxBitmapPixels(); n > limit {
		Logger().Warn("mask: bitmap growth abandoned",
			"bounds", b.String(), "pixels", n, "limit", limit)
		return nil, fmt.Errorf("%w: %v needs %d pixels (limit %d)", ErrBitmapTooLarge, b, n, limit)
	}
	return make([]bool, n), nil
}
