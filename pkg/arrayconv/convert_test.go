package arrayconv

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"
)

// TestInt32ToBytesByteOrder checks the byte order of a single encoded value
func TestInt32ToBytesByteOrder(t *testing.T) {
	little, err := Int32ToBytes([]int32{0x01020304}, nil, Contiguous(true))
	if err != nil {
		t.Fatalf("Int32ToBytes little: %v", err)
	}
	if want := []byte{0x04, 0x03, 0x02, 0x01}; !bytes.Equal(little, want) {
		t.Errorf("little endian = % x, want % x", little, want)
	}

	big, err := Int32ToBytes([]int32{0x01020304}, nil, Contiguous(false))
	if err != nil {
		t.Fatalf("Int32ToBytes big: %v", err)
	}
	if want := []byte{0x01, 0x02, 0x03, 0x04}; !bytes.Equal(big, want) {
		t.Errorf("big endian = % x, want % x", big, want)
	}
}

func TestBytesToInt16(t *testing.T) {
	in := []byte{0x01, 0x02, 0xff, 0xfe}

	got, err := BytesToInt16(in, nil, Contiguous(true))
	if err != nil {
		t.Fatalf("BytesToInt16: %v", err)
	}
	if want := []int16{0x0201, -257}; !reflect.DeepEqual(got, want) {
		t.Errorf("little = %v, want %v", got, want)
	}

	got, err = BytesToInt16(in, nil, Contiguous(false))
	if err != nil {
		t.Fatalf("BytesToInt16: %v", err)
	}
	if want := []int16{0x0102, -2}; !reflect.DeepEqual(got, want) {
		t.Errorf("big = %v, want %v", got, want)
	}
}

// TestInt64Halves verifies 64-bit values are laid out as two 32-bit halves
// in the same order as a plain 64-bit encoding
func TestInt64Halves(t *testing.T) {
	v := int64(0x0102030405060708)

	little, err := Int64ToBytes([]int64{v}, nil, Contiguous(true))
	if err != nil {
		t.Fatalf("Int64ToBytes: %v", err)
	}
	if want := []byte{8, 7, 6, 5, 4, 3, 2, 1}; !bytes.Equal(little, want) {
		t.Errorf("little = % x, want % x", little, want)
	}

	big, err := Int64ToBytes([]int64{v}, nil, Contiguous(false))
	if err != nil {
		t.Fatalf("Int64ToBytes: %v", err)
	}
	if want := []byte{1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(big, want) {
		t.Errorf("big = % x, want % x", big, want)
	}
}

func TestRoundTrip(t *testing.T) {
	shorts := []int16{0, 1, -1, math.MaxInt16, math.MinInt16, 1234}
	ints := []int32{0, 1, -1, math.MaxInt32, math.MinInt32, 0x01020304}
	longs := []int64{0, -1, math.MaxInt64, math.MinInt64, 0x0102030405060708}
	floats := []float32{0, -1.5, math.MaxFloat32, float32(math.Inf(1)), 3.25}
	doubles := []float64{0, -1.5, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Pi}

	for _, little := range []bool{true, false} {
		l := Contiguous(little)

		b, err := Int16ToBytes(shorts, nil, l)
		if err != nil {
			t.Fatal(err)
		}
		gotShorts, err := BytesToInt16(b, nil, l)
		if err != nil || !reflect.DeepEqual(gotShorts, shorts) {
			t.Errorf("int16 round trip (little=%v) = %v, %v", little, gotShorts, err)
		}

		b, err = Int32ToBytes(ints, nil, l)
		if err != nil {
			t.Fatal(err)
		}
		gotInts, err := BytesToInt32(b, nil, l)
		if err != nil || !reflect.DeepEqual(gotInts, ints) {
			t.Errorf("int32 round trip (little=%v) = %v, %v", little, gotInts, err)
		}

		b, err = Int64ToBytes(longs, nil, l)
		if err != nil {
			t.Fatal(err)
		}
		gotLongs, err := BytesToInt64(b, nil, l)
		if err != nil || !reflect.DeepEqual(gotLongs, longs) {
			t.Errorf("int64 round trip (little=%v) = %v, %v", little, gotLongs, err)
		}

		b, err = Float32ToBytes(floats, nil, l)
		if err != nil {
			t.Fatal(err)
		}
		gotFloats, err := BytesToFloat32(b, nil, l)
		if err != nil || !reflect.DeepEqual(gotFloats, floats) {
			t.Errorf("float32 round trip (little=%v) = %v, %v", little, gotFloats, err)
		}

		b, err = Float64ToBytes(doubles, nil, l)
		if err != nil {
			t.Fatal(err)
		}
		gotDoubles, err := BytesToFloat64(b, nil, l)
		if err != nil || !reflect.DeepEqual(gotDoubles, doubles) {
			t.Errorf("float64 round trip (little=%v) = %v, %v", little, gotDoubles, err)
		}
	}
}

// TestStridedRoundTrip interleaves two int32 channels into one byte buffer
// and reads them back separately
func TestStridedRoundTrip(t *testing.T) {
	red := []int32{1, 2, 3}
	green := []int32{-1, -2, -3}
	buf := make([]byte, 24)

	l := Layout{InStride: 1, OutStride: 2, ByteLength: -1, Little: true}
	if _, err := Int32ToBytes(red, buf, l); err != nil {
		t.Fatalf("encode red: %v", err)
	}
	l.OutOffset = 4
	if _, err := Int32ToBytes(green, buf, l); err != nil {
		t.Fatalf("encode green: %v", err)
	}

	gotRed, err := BytesToInt32(buf, nil, Layout{InStride: 2, OutStride: 1, ByteLength: -1, Little: true})
	if err != nil {
		t.Fatalf("decode red: %v", err)
	}
	if !reflect.DeepEqual(gotRed, red) {
		t.Errorf("red = %v, want %v", gotRed, red)
	}

	gotGreen, err := BytesToInt32(buf, nil, Layout{InOffset: 4, InStride: 2, OutStride: 1, ByteLength: -1, Little: true})
	if err != nil {
		t.Fatalf("decode green: %v", err)
	}
	if !reflect.DeepEqual(gotGreen, green) {
		t.Errorf("green = %v, want %v", gotGreen, green)
	}
}

func TestOutputOffset(t *testing.T) {
	in := []byte{0, 0, 0x80, 0x3f} // 1.0f little endian
	out := make([]float32, 3)

	got, err := BytesToFloat32(in, out, Layout{InStride: 1, OutOffset: 2, OutStride: 1, ByteLength: -1, Little: true})
	if err != nil {
		t.Fatalf("BytesToFloat32: %v", err)
	}
	if want := []float32{0, 0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if &got[0] != &out[0] {
		t.Error("expected the supplied output to be reused")
	}
}

func TestBytesToBytesStride(t *testing.T) {
	in := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	// 10 bytes at offset 2, step 3: bytes 2, 5 and 8
	got, err := BytesToBytes(in, nil, Layout{InOffset: 2, InStride: 3, OutStride: 1, ByteLength: -1})
	if err != nil {
		t.Fatalf("BytesToBytes: %v", err)
	}
	if want := []byte{2, 5, 8}; !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = BytesToBytes(in, nil, Contiguous(true))
	if err != nil {
		t.Fatalf("BytesToBytes: %v", err)
	}
	if !bytes.Equal(got, in) {
		t.Errorf("contiguous copy = %v, want %v", got, in)
	}
}

func TestCopyLength(t *testing.T) {
	tests := []struct {
		available, offset, step int
		want                    int
	}{
		{available: 10, offset: 0, step: 1, want: 10},
		{available: 10, offset: 0, step: 3, want: 3},
		{available: 8, offset: 2, step: 3, want: 3},
		{available: 8, offset: 4, step: 3, want: 2},
		{available: 0, offset: 1, step: 3, want: 0},
	}
	for _, tc := range tests {
		if got := copyLength(tc.available, tc.offset, tc.step); got != tc.want {
			t.Errorf("copyLength(%d, %d, %d) = %d, want %d", tc.available, tc.offset, tc.step, got, tc.want)
		}
	}
}

// TestCopyLengthCapped checks the leading-step correction never reads past
// the end of the input
func TestCopyLengthCapped(t *testing.T) {
	in := make([]byte, 10)
	got, err := BytesToInt32(in, nil, Layout{InOffset: 2, InStride: 1, OutStride: 1, ByteLength: -1, Little: true})
	if err != nil {
		t.Fatalf("BytesToInt32: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("decoded %d values, want 2", len(got))
	}
}

func TestCapacityError(t *testing.T) {
	out := make([]byte, 4)
	_, err := Int32ToBytes([]int32{1, 2}, out, Layout{InStride: 1, OutStride: 1, ByteLength: 8, Little: true})
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}

	_, err = BytesToInt16([]byte{1, 2, 3, 4}, make([]int16, 1), Layout{InStride: 1, OutStride: 1, ByteLength: 4})
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestShortBufferError(t *testing.T) {
	_, err := BytesToInt32([]byte{1, 2, 3, 4}, nil, Layout{InStride: 1, OutStride: 1, ByteLength: 8})
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
}

func TestInvalidLayout(t *testing.T) {
	_, err := BytesToInt32([]byte{1, 2, 3, 4}, nil, Layout{ByteLength: -1})
	if !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("expected ErrInvalidLayout for zero strides, got %v", err)
	}
}

func TestOutputLimitsDerivedLength(t *testing.T) {
	in := []byte{1, 0, 2, 0, 3, 0}
	out := make([]int16, 2)

	got, err := BytesToInt16(in, out, Contiguous(true))
	if err != nil {
		t.Fatalf("BytesToInt16: %v", err)
	}
	if want := []int16{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
