package mask

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestPointsRoundTrip(t *testing.T) {
	pts := []int{
		-3, 0, 0, 0, 0,
		7, 2, 1, 0, 0,
		1, 1, 1, 5, 2,
	}
	m, err := NewMask5DFromPoints(pts)
	if err != nil {
		t.Fatalf("NewMask5DFromPoints: %v", err)
	}

	for _, little := range []bool{true, false} {
		b, err := MarshalPoints(m, little)
		if err != nil {
			t.Fatalf("MarshalPoints(little=%v): %v", little, err)
		}
		if len(b) != len(pts)*4 {
			t.Errorf("encoded %d bytes, want %d", len(b), len(pts)*4)
		}

		back, err := NewMask5DFromBytes(b, little)
		if err != nil {
			t.Fatalf("NewMask5DFromBytes(little=%v): %v", little, err)
		}
		if !reflect.DeepEqual(back.Points(), m.Points()) {
			t.Errorf("round trip (little=%v) = %v, want %v", little, back.Points(), m.Points())
		}
	}
}

func TestEncodePointsByteOrder(t *testing.T) {
	b, err := EncodePoints([]int{1}, false)
	if err != nil {
		t.Fatalf("EncodePoints: %v", err)
	}
	if want := []byte{0, 0, 0, 1}; !reflect.DeepEqual(b, want) {
		t.Errorf("big endian = % x, want % x", b, want)
	}
}

func TestPointsErrors(t *testing.T) {
	if _, err := EncodePoints([]int{math.MaxInt32 + 1}, true); !errors.Is(err, ErrInvalidData) {
		t.Errorf("overflowing coordinate: got %v, want ErrInvalidData", err)
	}
	if _, err := DecodePoints([]byte{1, 2, 3}, true); !errors.Is(err, ErrInvalidData) {
		t.Errorf("partial int32: got %v, want ErrInvalidData", err)
	}
	b, err := EncodePoints([]int{1, 2, 3, 4}, true)
	if err != nil {
		t.Fatalf("EncodePoints: %v", err)
	}
	if _, err := NewMask5DFromBytes(b, true); !errors.Is(err, ErrInvalidData) {
		t.Errorf("four values: got %v, want ErrInvalidData", err)
	}
}
