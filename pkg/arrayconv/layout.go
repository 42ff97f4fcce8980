package arrayconv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrCapacity is returned when a caller supplied output is too small
	// for the requested offset and length.
	ErrCapacity = errors.New("arrayconv: output buffer too small")

	// ErrShortBuffer is returned when an explicit byte length reads past
	// the end of the input.
	ErrShortBuffer = errors.New("arrayconv: input buffer too short")

	// ErrInvalidLayout is returned for negative offsets or non-positive strides.
	ErrInvalidLayout = errors.New("arrayconv: invalid layout")
)

// Layout describes where a conversion reads from and writes to.
//
// Strides are expressed in elements of the typed side, so a stride of 2 on
// the byte side of an int32 conversion skips 8 bytes. ByteLength is the
// number of bytes to convert; -1 derives the largest length both buffers allow.
type Layout struct {
	InOffset   int
	InStride   int
	OutOffset  int
	OutStride  int
	ByteLength int
	Little     bool
}

// Contiguous returns a layout that converts whole buffers with no gaps.
func Contiguous(little bool) Layout {
	return Layout{InStride: 1, OutStride: 1, ByteLength: -1, Little: little}
}

func (l Layout) validate() error {
	if l.InOffset < 0 || l.OutOffset < 0 {
		return fmt.Errorf("%w: negative offset (in=%d, out=%d)", ErrInvalidLayout, l.InOffset, l.OutOffset)
	}
	if l.InStride <= 0 || l.OutStride <= 0 {
		return fmt.Errorf("%w: stride must be positive (in=%d, out=%d)", ErrInvalidLayout, l.InStride, l.OutStride)
	}
	return nil
}

func (l Layout) order() binary.ByteOrder {
	if l.Little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// copyLength returns the number of steps that can be taken through the
// available units.
//
// ex: available = 8 (10 units at offset 2), step = 3
// units 2, 5 and 8 can be copied but 8 / 3 gives 2, so a leading partial
// step is counted when 0 < offset < step.
func copyLength(available, offset, step int) int {
	if available <= 0 {
		return 0
	}
	if offset > 0 && offset < step {
		return available/step + 1
	}
	return available / step
}

// fitCount returns how many elements of width bytes fit in a buffer of
// length n when the first starts at offset and each next one step later.
func fitCount(n, offset, step, width int) int {
	if n-offset < width {
		return 0
	}
	return (n-offset-width)/step + 1
}

// span returns the buffer length needed to hold count elements.
func span(offset, step, width, count int) int {
	if count <= 0 {
		return offset
	}
	return offset + (count-1)*step + width
}

// elementCount resolves how many elements a conversion moves.
//
// The byte side is measured in bytes with a stride of stride*size, the typed
// side in elements. When out is nil only the input limits the count.
func elementCount(byteLen, byteOffset, byteStride, typedLen, typedOffset, typedStride, size int, typedIsOut, outNil bool, byteLength int) int {
	if byteLength >= 0 {
		return byteLength / size
	}

	bytesN := min(copyLength(byteLen-byteOffset, byteOffset, byteStride), fitCount(byteLen, byteOffset, byteStride, size))
	typedN := min(copyLength(typedLen-typedOffset, typedOffset, typedStride), fitCount(typedLen, typedOffset, typedStride, 1))

	if outNil {
		if typedIsOut {
			return bytesN
		}
		return typedN
	}
	return min(bytesN, typedN)
}
