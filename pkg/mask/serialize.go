package mask

import (
	"fmt"
	"math"

	"roimask/pkg/arrayconv"
)

// EncodePoints writes a flat point list as consecutive int32 values.
func EncodePoints(points []int, little bool) ([]byte, error) {
	vals := make([]int32, len(points))
	for i, p := range points {
		if p < math.MinInt32 || p > math.MaxInt32 {
			return nil, fmt.Errorf("%w: coordinate %d does not fit in int32", ErrInvalidData, p)
		}
		vals[i] = int32(p)
	}
	return arrayconv.Int32ToBytes(vals, nil, arrayconv.Contiguous(little))
}

// DecodePoints reads a flat point list written by EncodePoints.
func DecodePoints(b []byte, little bool) ([]int, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of int32 values", ErrInvalidData, len(b))
	}
	vals, err := arrayconv.BytesToInt32(b, nil, arrayconv.Contiguous(little))
	if err != nil {
		return nil, fmt.Errorf("decoding points: %w", err)
	}
	points := make([]int, len(vals))
	for i, v := range vals {
		points[i] = int(v)
	}
	return points, nil
}

// MarshalPoints encodes the points of any mask level.
func MarshalPoints[M Slice[M]](m M, little bool) ([]byte, error) {
	return EncodePoints(m.Points(), little)
}

// NewMask5DFromBytes decodes a 5D point list (X, Y, Z, T, C per point) into
// the tightest mask holding it.
func NewMask5DFromBytes(b []byte, little bool) (*Mask5D, error) {
	points, err := DecodePoints(b, little)
	if err != nil {
		return nil, err
	}
	if len(points)%5 != 0 {
		return nil, fmt.Errorf("%w: %d values is not a whole number of 5D points", ErrInvalidData, len(points))
	}
	return NewMask5DFromPoints(points)
}
