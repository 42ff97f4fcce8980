package descriptor

import "gonum.org/v1/gonum/spatial/kdtree"

// Point is a position with one coordinate per mask axis
type Point []float64

// Compare implements the kdtree.Comparable interface
func (p Point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point)
	return p[d] - q[d]
}

// Dims returns the number of dimensions for the KD-tree
func (p Point) Dims() int { return len(p) }

// Distance returns the squared Euclidean distance between two points
func (p Point) Distance(c kdtree.Comparable) float64 {
	q := c.(Point)
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return sum
}

// Points is a collection of Point that satisfies kdtree.Interface
type Points []Point

func (p Points) Index(i int) kdtree.Comparable         { return p[i] }
func (p Points) Len() int                              { return len(p) }
func (p Points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p Points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{Points: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{Points: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for Points
type pointPlane struct {
	Points
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	return p.Points[i][p.Dim] < p.Points[j][p.Dim]
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{Points: p.Points[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.Points[i], p.Points[j] = p.Points[j], p.Points[i]
}

// toPoints splits a flat coordinate list into dims-sized points.
func toPoints(flat []int, dims int) Points {
	if dims <= 0 {
		return nil
	}
	pts := make(Points, 0, len(flat)/dims)
	for i := 0; i+dims <= len(flat); i += dims {
		p := make(Point, dims)
		for a := 0; a < dims; a++ {
			p[a] = float64(flat[i+a])
		}
		pts = append(pts, p)
	}
	return pts
}
