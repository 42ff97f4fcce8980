// Package volume decodes raw scalar volumes and turns intensity ranges into
// 3D masks.
package volume

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"roimask/pkg/arrayconv"
	"roimask/pkg/geom"
	"roimask/pkg/mask"
)

// ErrShortVolume is returned when raw data holds fewer voxels than the
// requested dimensions.
var ErrShortVolume = errors.New("volume: not enough voxels")

// Volume is a 3D scalar field stored in row-major order, X fastest.
// Intensities are normalized to [0, 1].
type Volume struct {
	Data []float64

	Width  int
	Height int
	Depth  int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize struct {
		X, Y, Z float64
	}
}

// Plane is a 2D cut through a volume
type Plane struct {
	Width, Height int
	Data          []float64
}

// New wraps normalized voxel data.
func New(data []float64, width, height, depth int) (*Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("volume: invalid dimensions %dx%dx%d", width, height, depth)
	}
	if n := width * height * depth; len(data) < n {
		return nil, fmt.Errorf("%w: %dx%dx%d needs %d, have %d", ErrShortVolume, width, height, depth, n, len(data))
	}
	v := &Volume{Data: data, Width: width, Height: height, Depth: depth}
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = 1, 1, 1
	return v, nil
}

// Decode reads width*height*depth voxels of type dt from raw and rescales
// them to [0, 1]. A constant volume decodes to zeros.
func Decode(raw []byte, dt arrayconv.DataType, width, height, depth int, little bool) (*Volume, error) {
	if dt.Size() == 0 {
		return nil, fmt.Errorf("volume: unsupported data type %v", dt)
	}
	n := width * height * depth
	if n <= 0 {
		return nil, fmt.Errorf("volume: invalid dimensions %dx%dx%d", width, height, depth)
	}
	if len(raw) < n*dt.Size() {
		return nil, fmt.Errorf("%w: %dx%dx%d %v needs %d bytes, have %d",
			ErrShortVolume, width, height, depth, dt, n*dt.Size(), len(raw))
	}

	l := arrayconv.Contiguous(little)
	l.ByteLength = n * dt.Size()
	typed, err := arrayconv.BytesToType(raw, dt, l)
	if err != nil {
		return nil, fmt.Errorf("volume: decoding voxels: %w", err)
	}

	data := arrayconv.ToFloat64(typed)
	normalize(data)
	return New(data, width, height, depth)
}

func normalize(data []float64) {
	if len(data) == 0 {
		return
	}
	lo, hi := floats.Min(data), floats.Max(data)
	if hi == lo {
		for i := range data {
			data[i] = 0
		}
		return
	}
	floats.AddConst(-lo, data)
	floats.Scale(1/(hi-lo), data)
}

func (v *Volume) at(x, y, z int) float64 {
	return v.Data[z*v.Width*v.Height+y*v.Width+x]
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis.
// An X slice is laid out (Z, Y), a Y slice (X, Z) and a Z slice (X, Y).
func (v *Volume) ExtractSlice(axis string, position int) (*Plane, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var p *Plane
	switch axis {
	case "x", "X":
		if position >= v.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, v.Width)
		}
		p = &Plane{Width: v.Depth, Height: v.Height, Data: make([]float64, v.Depth*v.Height)}
		for y := 0; y < v.Height; y++ {
			for z := 0; z < v.Depth; z++ {
				p.Data[y*v.Depth+z] = v.at(position, y, z)
			}
		}

	case "y", "Y":
		if position >= v.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, v.Height)
		}
		p = &Plane{Width: v.Width, Height: v.Depth, Data: make([]float64, v.Width*v.Depth)}
		for z := 0; z < v.Depth; z++ {
			for x := 0; x < v.Width; x++ {
				p.Data[z*v.Width+x] = v.at(x, position, z)
			}
		}

	case "z", "Z":
		if position >= v.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, v.Depth)
		}
		p = &Plane{Width: v.Width, Height: v.Height}
		start := position * v.Width * v.Height
		p.Data = append([]float64(nil), v.Data[start:start+v.Width*v.Height]...)

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
	return p, nil
}

// Image converts the plane to a 16-bit grayscale image
func (p *Plane) Image() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			value := uint16(math.Max(0, math.Min(65535, p.Data[y*p.Width+x]*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// Threshold returns the mask of the pixels whose value is in [lo, hi].
func (p *Plane) Threshold(lo, hi float64) (*mask.Mask2D, error) {
	bits := make([]bool, len(p.Data))
	for i, v := range p.Data {
		bits[i] = v >= lo && v <= hi
	}
	m, err := mask.NewMask2D(geom.Rect(0, 0, p.Width, p.Height), bits)
	if err != nil {
		return nil, err
	}
	return m, m.OptimizeBounds()
}

// Threshold returns the mask of the voxels whose normalized value is in
// [lo, hi]. Z slices are split among numCores goroutines; values below 1 use
// a single one.
func (v *Volume) Threshold(lo, hi float64, numCores int) (*mask.Mask3D, error) {
	numCores = max(1, min(numCores, v.Depth))
	slices := make([]*mask.Mask2D, v.Depth)
	errs := make([]error, v.Depth)

	var wg sync.WaitGroup
	slicesPerCore := (v.Depth + numCores - 1) / numCores
	for c := 0; c < numCores; c++ {
		wg.Add(1)

		go func(coreID int) {
			defer wg.Done()

			startSlice := coreID * slicesPerCore
			endSlice := min((coreID+1)*slicesPerCore, v.Depth)
			for z := startSlice; z < endSlice; z++ {
				p, err := v.ExtractSlice("z", z)
				if err != nil {
					errs[z] = err
					continue
				}
				slices[z], errs[z] = p.Threshold(lo, hi)
			}
		}(c)
	}
	wg.Wait()

	for z, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("volume: thresholding slice %d: %w", z, err)
		}
	}

	bounds := geom.NewBox([]int{0, 0, 0}, []int{v.Width, v.Height, v.Depth})
	m, err := mask.NewMask3D(bounds, slices)
	if err != nil {
		return nil, err
	}
	return m, m.OptimizeBounds()
}

// Stats holds intensity statistics over a masked region
type Stats struct {
	Count    int
	Mean     float64
	Variance float64
	Min, Max float64
}

// MaskedStats computes intensity statistics over the voxels of m that lie
// inside the volume. An infinite Z axis covers every slice.
func (v *Volume) MaskedStats(m *mask.Mask3D) Stats {
	var values []float64
	pts := m.Points()
	for i := 0; i+3 <= len(pts); i += 3 {
		x, y, z := pts[i], pts[i+1], pts[i+2]
		if x < 0 || y < 0 || x >= v.Width || y >= v.Height {
			continue
		}
		if m.IsInfinite() {
			for zz := 0; zz < v.Depth; zz++ {
				values = append(values, v.at(x, y, zz))
			}
			continue
		}
		if z >= 0 && z < v.Depth {
			values = append(values, v.at(x, y, z))
		}
	}

	s := Stats{Count: len(values)}
	if s.Count == 0 {
		return s
	}
	s.Min, s.Max = floats.Min(values), floats.Max(values)
	if s.Count == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.Variance = stat.MeanVariance(values, nil)
	return s
}
