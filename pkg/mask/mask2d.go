package mask

import (
	"fmt"

	"roimask/pkg/geom"
)

// Mask2D is a dense boolean bitmap over a rectangle. The bit for pixel (x, y)
// is at (x - bounds.x) + (y - bounds.y) * bounds.width.
type Mask2D struct {
	bounds geom.Box
	bits   []bool
}

// NewMask2D builds a mask over bounds from a copy of bits, which must hold
// exactly width*height values.
func NewMask2D(bounds geom.Box, bits []bool) (*Mask2D, error) {
	if bounds.Dims != 2 {
		return nil, fmt.Errorf("%w: 2D mask needs 2D bounds, got %d axes", ErrInvalidData, bounds.Dims)
	}
	if bounds.IsEmpty() {
		return &Mask2D{bounds: geom.Empty(2)}, nil
	}
	if n := bounds.Len(); n != len(bits) {
		return nil, fmt.Errorf("%w: %v needs %d bits, got %d", ErrInvalidData, bounds, n, len(bits))
	}
	return &Mask2D{bounds: bounds, bits: append([]bool(nil), bits...)}, nil
}

// NewMask2DFromPoints builds the tightest mask holding the given points,
// two ints (x, y) per point.
func NewMask2DFromPoints(pts []int) (*Mask2D, error) {
	var m *Mask2D
	return m.fromPoints(pts, 2)
}

func (m *Mask2D) fromPoints(pts []int, _ int) (*Mask2D, error) {
	bounds := geom.BoundingBox(pts, 2)
	if bounds.IsEmpty() {
		return &Mask2D{bounds: geom.Empty(2)}, nil
	}
	bits, err := allocBits(bounds)
	if err != nil {
		return nil, err
	}
	r := &Mask2D{bounds: bounds, bits: bits}
	for i := 0; i+1 < len(pts); i += 2 {
		r.bits[r.offset(pts[i], pts[i+1])] = true
	}
	return r, nil
}

func (m *Mask2D) single(p []int) *Mask2D {
	return &Mask2D{bounds: geom.Rect(p[0], p[1], 1, 1), bits: []bool{true}}
}

// Bounds returns the storage bounds
func (m *Mask2D) Bounds() geom.Box {
	if m == nil {
		return geom.Empty(2)
	}
	return m.bounds
}

func (m *Mask2D) offset(x, y int) int {
	return (x - m.bounds.Min[0]) + (y-m.bounds.Min[1])*m.bounds.Size[0]
}

func (m *Mask2D) get(x, y int) bool {
	if m == nil || m.bounds.IsEmpty() {
		return false
	}
	b := m.bounds
	if x < b.Min[0] || y < b.Min[1] || x >= b.Min[0]+b.Size[0] || y >= b.Min[1]+b.Size[1] {
		return false
	}
	return m.bits[m.offset(x, y)]
}

// Contains reports whether pixel (x, y) is in the region
func (m *Mask2D) Contains(x, y int) bool {
	return m.get(x, y)
}

func (m *Mask2D) containsPoint(p []int) bool {
	return m.get(p[0], p[1])
}

// IsEmpty reports whether the mask holds no pixel.
func (m *Mask2D) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, b := range m.bits {
		if b {
			return false
		}
	}
	return true
}

// NumPoints returns the number of pixels in the region
func (m *Mask2D) NumPoints() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy
func (m *Mask2D) Clone() *Mask2D {
	if m == nil {
		return nil
	}
	return &Mask2D{bounds: m.bounds, bits: append([]bool(nil), m.bits...)}
}

func (m *Mask2D) combine(op Op, o *Mask2D) (*Mask2D, error) {
	bounds := op.resultBounds(m.Bounds(), o.Bounds())
	if bounds.IsEmpty() {
		return &Mask2D{bounds: geom.Empty(2)}, nil
	}

	bits, err := allocBits(bounds)
	if err != nil {
		return nil, err
	}

	r := &Mask2D{bounds: bounds, bits: bits}
	x0, y0 := bounds.Min[0], bounds.Min[1]
	w, h := bounds.Size[0], bounds.Size[1]
	i := 0
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			r.bits[i] = op.apply(m.get(x, y), o.get(x, y))
			i++
		}
	}
	return r, nil
}

// ContainsMask reports whether every pixel of o is also in m.
func (m *Mask2D) ContainsMask(o *Mask2D) bool {
	if o == nil {
		return true
	}
	b := o.bounds
	i := 0
	for y := b.Min[1]; y < b.Min[1]+b.Size[1]; y++ {
		for x := b.Min[0]; x < b.Min[0]+b.Size[0]; x++ {
			if o.bits[i] && !m.get(x, y) {
				return false
			}
			i++
		}
	}
	return true
}

// Intersects reports whether m and o share at least one pixel.
func (m *Mask2D) Intersects(o *Mask2D) bool {
	inter := m.Bounds().Intersect(o.Bounds())
	if inter.IsEmpty() {
		return false
	}
	for y := inter.Min[1]; y < inter.Min[1]+inter.Size[1]; y++ {
		for x := inter.Min[0]; x < inter.Min[0]+inter.Size[0]; x++ {
			if m.get(x, y) && o.get(x, y) {
				return true
			}
		}
	}
	return false
}

// OptimizedBounds returns the tightest bounds holding every pixel, or an
// empty box when there is none.
func (m *Mask2D) OptimizedBounds() geom.Box {
	if m == nil || m.bounds.IsEmpty() {
		return geom.Empty(2)
	}

	b := m.bounds
	minX, minY := b.Min[0]+b.Size[0], b.Min[1]+b.Size[1]
	maxX, maxY := b.Min[0]-1, b.Min[1]-1
	i := 0
	for y := b.Min[1]; y < b.Min[1]+b.Size[1]; y++ {
		for x := b.Min[0]; x < b.Min[0]+b.Size[0]; x++ {
			if m.bits[i] {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
			i++
		}
	}
	if maxX < minX {
		return geom.Empty(2)
	}
	return geom.Rect(minX, minY, maxX-minX+1, maxY-minY+1)
}

// OptimizeBounds shrinks the bounds to fit the pixels.
func (m *Mask2D) OptimizeBounds() error {
	if m == nil {
		return errNilMask
	}
	return m.MoveBounds(m.OptimizedBounds())
}

// MoveBounds reallocates the bitmap over value, keeping the pixels that lie
// in both the old and the new bounds. When the new bitmap would be too large
// the mask is left unchanged and ErrBitmapTooLarge is returned.
func (m *Mask2D) MoveBounds(value geom.Box) error {
	if m == nil {
		return errNilMask
	}
	if m.bounds.Equal(value) {
		return nil
	}
	if value.IsEmpty() {
		m.bounds = geom.Empty(2)
		m.bits = nil
		return nil
	}

	bits, err := allocBits(value)
	if err != nil {
		return err
	}

	inter := m.bounds.Intersect(value)
	if !inter.IsEmpty() {
		w := value.Size[0]
		for y := inter.Min[1]; y < inter.Min[1]+inter.Size[1]; y++ {
			src := m.offset(inter.Min[0], y)
			dst := (inter.Min[0] - value.Min[0]) + (y-value.Min[1])*w
			copy(bits[dst:dst+inter.Size[0]], m.bits[src:src+inter.Size[0]])
		}
	}

	Logger().Debug("mask: moved 2D bounds", "from", m.bounds.String(), "to", value.String())
	m.bounds = value
	m.bits = bits
	return nil
}

// SetPoint sets or clears pixel p = (x, y). Setting a pixel outside the
// bounds grows them; clearing one outside is a no-op.
func (m *Mask2D) SetPoint(v bool, p ...int) error {
	if m == nil {
		return errNilMask
	}
	if len(p) != 2 {
		return fmt.Errorf("%w: 2D point needs 2 coordinates, got %d", ErrInvalidData, len(p))
	}
	x, y := p[0], p[1]
	if !m.bounds.Contains(p) {
		if !v {
			return nil
		}
		if err := m.MoveBounds(m.bounds.Union(geom.Rect(x, y, 1, 1))); err != nil {
			return err
		}
	}
	m.bits[m.offset(x, y)] = v
	return nil
}

func (m *Mask2D) onContour(p []int) bool {
	x, y := p[0], p[1]
	if !m.get(x, y) {
		return false
	}
	return !m.get(x-1, y) || !m.get(x+1, y) || !m.get(x, y-1) || !m.get(x, y+1)
}

func (m *Mask2D) appendPoints(dst, suffix []int) []int {
	if m == nil || m.bounds.IsEmpty() {
		return dst
	}
	b := m.bounds
	i := 0
	for y := b.Min[1]; y < b.Min[1]+b.Size[1]; y++ {
		for x := b.Min[0]; x < b.Min[0]+b.Size[0]; x++ {
			if m.bits[i] {
				dst = append(dst, x, y)
				dst = append(dst, suffix...)
			}
			i++
		}
	}
	return dst
}

// Points returns every pixel as (x, y) pairs in ascending row-major order.
func (m *Mask2D) Points() []int {
	return m.appendPoints(nil, nil)
}

// ContourPoints returns the pixels with at least one 4-neighbour outside the
// region, in ascending row-major order.
func (m *Mask2D) ContourPoints() []int {
	var dst []int
	for i, pts := 0, m.Points(); i+1 < len(pts); i += 2 {
		if m.onContour(pts[i : i+2]) {
			dst = append(dst, pts[i], pts[i+1])
		}
	}
	return dst
}
