package arrayconv

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// numeric is the set of element types with a fixed-width byte form.
type numeric interface {
	constraints.Signed | constraints.Float
}

type endian struct {
	order  binary.ByteOrder
	little bool
}

func (l Layout) endian() endian {
	return endian{order: l.order(), little: l.Little}
}

// load64 assembles a 64-bit value from two 32-bit halves. Each half follows
// the byte order, and the halves are combined low/high for little endian and
// high/low for big endian.
func load64(b []byte, e endian) uint64 {
	first := uint64(e.order.Uint32(b[0:4]))
	second := uint64(e.order.Uint32(b[4:8]))
	if e.little {
		return first | second<<32
	}
	return first<<32 | second
}

// store64 is the inverse of load64.
func store64(b []byte, v uint64, e endian) {
	lo, hi := uint32(v), uint32(v>>32)
	if e.little {
		e.order.PutUint32(b[0:4], lo)
		e.order.PutUint32(b[4:8], hi)
		return
	}
	e.order.PutUint32(b[0:4], hi)
	e.order.PutUint32(b[4:8], lo)
}

func decode[T numeric](in []byte, out []T, l Layout, size int, get func([]byte, endian) T) ([]T, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	step := l.InStride * size
	n := elementCount(len(in), l.InOffset, step, len(out), l.OutOffset, l.OutStride, size, true, out == nil, l.ByteLength)
	if need := span(l.InOffset, step, size, n); need > len(in) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, need, len(in))
	}

	result := out
	if result == nil {
		result = make([]T, l.OutOffset+n*l.OutStride)
	} else if need := span(l.OutOffset, l.OutStride, 1, n); need > len(result) {
		return nil, fmt.Errorf("%w: need %d elements, have %d", ErrCapacity, need, len(result))
	}

	e := l.endian()
	inOff, outOff := l.InOffset, l.OutOffset
	for i := 0; i < n; i++ {
		result[outOff] = get(in[inOff:inOff+size], e)
		inOff += step
		outOff += l.OutStride
	}
	return result, nil
}

func encode[T numeric](in []T, out []byte, l Layout, size int, put func([]byte, T, endian)) ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	step := l.OutStride * size
	n := elementCount(len(out), l.OutOffset, step, len(in), l.InOffset, l.InStride, size, false, out == nil, l.ByteLength)
	if need := span(l.InOffset, l.InStride, 1, n); need > len(in) {
		return nil, fmt.Errorf("%w: need %d elements, have %d", ErrShortBuffer, need, len(in))
	}

	result := out
	if result == nil {
		result = make([]byte, l.OutOffset+n*step)
	} else if need := span(l.OutOffset, step, size, n); need > len(result) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrCapacity, need, len(result))
	}

	e := l.endian()
	inOff, outOff := l.InOffset, l.OutOffset
	for i := 0; i < n; i++ {
		put(result[outOff:outOff+size], in[inOff], e)
		inOff += l.InStride
		outOff += step
	}
	return result, nil
}

// BytesToBytes copies bytes from in to out honoring offsets and strides.
// A nil out is allocated.
func BytesToBytes(in, out []byte, l Layout) ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	n := elementCount(len(in), l.InOffset, l.InStride, len(out), l.OutOffset, l.OutStride, 1, true, out == nil, l.ByteLength)
	if need := span(l.InOffset, l.InStride, 1, n); need > len(in) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, need, len(in))
	}

	result := out
	if result == nil {
		result = make([]byte, l.OutOffset+n*l.OutStride)
	} else if need := span(l.OutOffset, l.OutStride, 1, n); need > len(result) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrCapacity, need, len(result))
	}

	if l.InStride == 1 && l.OutStride == 1 {
		copy(result[l.OutOffset:l.OutOffset+n], in[l.InOffset:l.InOffset+n])
		return result, nil
	}

	inOff, outOff := l.InOffset, l.OutOffset
	for i := 0; i < n; i++ {
		result[outOff] = in[inOff]
		inOff += l.InStride
		outOff += l.OutStride
	}
	return result, nil
}

// BytesToInt16 reinterprets in as 16-bit integers.
func BytesToInt16(in []byte, out []int16, l Layout) ([]int16, error) {
	return decode(in, out, l, 2, func(b []byte, e endian) int16 {
		return int16(e.order.Uint16(b))
	})
}

// BytesToInt32 reinterprets in as 32-bit integers.
func BytesToInt32(in []byte, out []int32, l Layout) ([]int32, error) {
	return decode(in, out, l, 4, func(b []byte, e endian) int32 {
		return int32(e.order.Uint32(b))
	})
}

// BytesToInt64 reinterprets in as 64-bit integers.
func BytesToInt64(in []byte, out []int64, l Layout) ([]int64, error) {
	return decode(in, out, l, 8, func(b []byte, e endian) int64 {
		return int64(load64(b, e))
	})
}

// BytesToFloat32 reinterprets in as IEEE 754 single precision values.
func BytesToFloat32(in []byte, out []float32, l Layout) ([]float32, error) {
	return decode(in, out, l, 4, func(b []byte, e endian) float32 {
		return math.Float32frombits(e.order.Uint32(b))
	})
}

// BytesToFloat64 reinterprets in as IEEE 754 double precision values.
func BytesToFloat64(in []byte, out []float64, l Layout) ([]float64, error) {
	return decode(in, out, l, 8, func(b []byte, e endian) float64 {
		return math.Float64frombits(load64(b, e))
	})
}

// Int16ToBytes writes each value as 2 bytes.
func Int16ToBytes(in []int16, out []byte, l Layout) ([]byte, error) {
	return encode(in, out, l, 2, func(b []byte, v int16, e endian) {
		e.order.PutUint16(b, uint16(v))
	})
}

// Int32ToBytes writes each value as 4 bytes.
func Int32ToBytes(in []int32, out []byte, l Layout) ([]byte, error) {
	return encode(in, out, l, 4, func(b []byte, v int32, e endian) {
		e.order.PutUint32(b, uint32(v))
	})
}

// Int64ToBytes writes each value as 8 bytes.
func Int64ToBytes(in []int64, out []byte, l Layout) ([]byte, error) {
	return encode(in, out, l, 8, func(b []byte, v int64, e endian) {
		store64(b, uint64(v), e)
	})
}

// Float32ToBytes writes the raw bits of each value as 4 bytes.
func Float32ToBytes(in []float32, out []byte, l Layout) ([]byte, error) {
	return encode(in, out, l, 4, func(b []byte, v float32, e endian) {
		e.order.PutUint32(b, math.Float32bits(v))
	})
}

// Float64ToBytes writes the raw bits of each value as 8 bytes.
func Float64ToBytes(in []float64, out []byte, l Layout) ([]byte, error) {
	return encode(in, out, l, 8, func(b []byte, v float64, e endian) {
		store64(b, math.Float64bits(v), e)
	})
}
