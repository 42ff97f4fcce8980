// Package descriptor computes shape descriptors of mask regions: mass center,
// per-axis spread, principal axes and distance to the boundary.
package descriptor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"roimask/pkg/geom"
	"roimask/pkg/mask"
)

var (
	// ErrTooFewPoints is returned when a descriptor needs more points than
	// the region holds.
	ErrTooFewPoints = errors.New("descriptor: not enough points")

	// ErrNoBoundary is returned when a distance is asked from an empty
	// boundary.
	ErrNoBoundary = errors.New("descriptor: empty boundary")
)

// Axes holds the principal axes of a region, largest variance first.
// Vectors[i] is the unit direction matching Values[i].
type Axes struct {
	Values  []float64
	Vectors [][]float64
}

// Descriptor summarizes a mask region
type Descriptor struct {
	Dims          int
	Bounds        geom.Box
	NumPoints     int
	ContourPoints int
	MassCenter    []float64
	Spread        []float64
	Axes          *Axes
}

// columns splits a flat point list into one slice per axis
func columns(points []int, dims int) [][]float64 {
	n := len(points) / dims
	cols := make([][]float64, dims)
	for a := range cols {
		cols[a] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for a := 0; a < dims; a++ {
			cols[a][i] = float64(points[i*dims+a])
		}
	}
	return cols
}

// MassCenter returns the mean position of the points, one value per axis.
// It returns nil for an empty list.
func MassCenter(points []int, dims int) []float64 {
	if dims <= 0 || len(points) < dims {
		return nil
	}
	cols := columns(points, dims)
	center := make([]float64, dims)
	for a, col := range cols {
		center[a] = stat.Mean(col, nil)
	}
	return center
}

// Spread returns the sample standard deviation of the points along each axis.
// A single point has zero spread.
func Spread(points []int, dims int) []float64 {
	if dims <= 0 || len(points) < dims {
		return nil
	}
	spread := make([]float64, dims)
	if len(points) < 2*dims {
		return spread
	}
	for a, col := range columns(points, dims) {
		spread[a] = stat.StdDev(col, nil)
	}
	return spread
}

// PrincipalAxes eigen-decomposes the covariance of the points.
func PrincipalAxes(points []int, dims int) (*Axes, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: no axes", ErrTooFewPoints)
	}
	n := len(points) / dims
	if n < 2 {
		return nil, fmt.Errorf("%w: principal axes need 2 points, have %d", ErrTooFewPoints, n)
	}

	data := make([]float64, n*dims)
	for i := range data {
		data[i] = float64(points[i])
	}
	x := mat.NewDense(n, dims, data)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return nil, errors.New("descriptor: eigen decomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// EigenSym returns ascending values
	axes := &Axes{
		Values:  make([]float64, dims),
		Vectors: make([][]float64, dims),
	}
	for i := 0; i < dims; i++ {
		j := dims - 1 - i
		axes.Values[i] = math.Max(values[j], 0)
		axes.Vectors[i] = mat.Col(nil, j, &vectors)
	}
	return axes, nil
}

// Boundary answers nearest-boundary queries over a contour point list
type Boundary struct {
	dims int
	tree *kdtree.Tree
}

// NewBoundary indexes the contour points, dims ints per point.
func NewBoundary(contour []int, dims int) *Boundary {
	b := &Boundary{dims: dims}
	if pts := toPoints(contour, dims); len(pts) > 0 {
		b.tree = kdtree.New(pts, true)
	}
	return b
}

// Distance returns the Euclidean distance from p to the nearest boundary point.
func (b *Boundary) Distance(p ...float64) (float64, error) {
	if b.tree == nil {
		return 0, ErrNoBoundary
	}
	if len(p) != b.dims {
		return 0, fmt.Errorf("descriptor: %dD query on a %dD boundary", len(p), b.dims)
	}
	_, d := b.tree.Nearest(Point(p))
	return math.Sqrt(d), nil
}

// BoundaryDistance returns the distance from p to the nearest contour point.
func BoundaryDistance(contour []int, dims int, p []float64) (float64, error) {
	return NewBoundary(contour, dims).Distance(p...)
}

// Compute builds the descriptor of any mask level. Principal axes are left
// nil when the region has fewer than two points.
func Compute[M mask.Slice[M]](m M) (*Descriptor, error) {
	bounds := m.Bounds()
	dims := bounds.Dims
	points := m.Points()

	d := &Descriptor{
		Dims:          dims,
		Bounds:        m.OptimizedBounds(),
		NumPoints:     m.NumPoints(),
		ContourPoints: len(m.ContourPoints()) / max(dims, 1),
		MassCenter:    MassCenter(points, dims),
		Spread:        Spread(points, dims),
	}
	if d.NumPoints < 2 {
		return d, nil
	}

	axes, err := PrincipalAxes(points, dims)
	if err != nil {
		return nil, err
	}
	d.Axes = axes
	return d, nil
}
