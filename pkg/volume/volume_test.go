package volume

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"roimask/pkg/arrayconv"
	"roimask/pkg/geom"
	"roimask/pkg/mask"
)

// createTestVolume encodes a 4x4x3 int16 volume whose value is x + y*4 + z*16
func createTestVolume(t *testing.T, little bool) []byte {
	t.Helper()
	vals := make([]int16, 4*4*3)
	for i := range vals {
		vals[i] = int16(i)
	}
	raw, err := arrayconv.Int16ToBytes(vals, nil, arrayconv.Contiguous(little))
	if err != nil {
		t.Fatalf("Int16ToBytes: %v", err)
	}
	return raw
}

func TestDecode(t *testing.T) {
	for _, little := range []bool{true, false} {
		v, err := Decode(createTestVolume(t, little), arrayconv.Short, 4, 4, 3, little)
		if err != nil {
			t.Fatalf("Decode(little=%v): %v", little, err)
		}
		if v.Data[0] != 0 || v.Data[len(v.Data)-1] != 1 {
			t.Errorf("normalized range = [%v, %v], want [0, 1]", v.Data[0], v.Data[len(v.Data)-1])
		}
		if want := 17.0 / 47; math.Abs(v.Data[17]-want) > 1e-12 {
			t.Errorf("voxel 17 = %v, want %v", v.Data[17], want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	raw := createTestVolume(t, true)
	if _, err := Decode(raw, arrayconv.Short, 4, 4, 4, true); !errors.Is(err, ErrShortVolume) {
		t.Errorf("too many voxels: got %v, want ErrShortVolume", err)
	}
	if _, err := Decode(raw, arrayconv.Undefined, 4, 4, 3, true); err == nil {
		t.Error("undefined data type should fail")
	}
	if _, err := Decode(raw, arrayconv.Short, 0, 4, 3, true); err == nil {
		t.Error("zero width should fail")
	}
}

func TestDecodeConstant(t *testing.T) {
	raw := make([]byte, 8)
	for i := range raw {
		raw[i] = 7
	}
	v, err := Decode(raw, arrayconv.Byte, 2, 2, 2, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, d := range v.Data {
		if d != 0 {
			t.Fatalf("voxel %d = %v, want 0", i, d)
		}
	}
}

func TestExtractSlice(t *testing.T) {
	data := make([]float64, 4*3*2)
	for i := range data {
		data[i] = float64(i)
	}
	v, err := New(data, 4, 3, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		axis   string
		pos    int
		w, h   int
		sample func(p *Plane) (got, want float64)
	}{
		{"z", 1, 4, 3, func(p *Plane) (float64, float64) { return p.Data[5], data[12+5] }},
		{"y", 2, 4, 2, func(p *Plane) (float64, float64) { return p.Data[1*4+3], data[12+2*4+3] }},
		{"X", 3, 2, 3, func(p *Plane) (float64, float64) { return p.Data[1*2+1], data[12+1*4+3] }},
	}
	for _, tt := range tests {
		p, err := v.ExtractSlice(tt.axis, tt.pos)
		if err != nil {
			t.Fatalf("ExtractSlice(%s, %d): %v", tt.axis, tt.pos, err)
		}
		if p.Width != tt.w || p.Height != tt.h {
			t.Errorf("%s slice is %dx%d, want %dx%d", tt.axis, p.Width, p.Height, tt.w, tt.h)
		}
		if got, want := tt.sample(p); got != want {
			t.Errorf("%s slice sample = %v, want %v", tt.axis, got, want)
		}
	}

	if _, err := v.ExtractSlice("z", 2); err == nil {
		t.Error("position past depth should fail")
	}
	if _, err := v.ExtractSlice("w", 0); err == nil {
		t.Error("unknown axis should fail")
	}
}

func TestPlaneImage(t *testing.T) {
	p := &Plane{Width: 2, Height: 1, Data: []float64{0, 1}}
	img := p.Image()
	if got := img.Gray16At(1, 0).Y; got != 65535 {
		t.Errorf("white pixel = %d, want 65535", got)
	}
	if got := img.Gray16At(0, 0).Y; got != 0 {
		t.Errorf("black pixel = %d, want 0", got)
	}
}

func TestThresholdAndStats(t *testing.T) {
	// a bright 2x2x2 cube inside a dark 5x5x4 volume
	data := make([]float64, 5*5*4)
	for z := 1; z < 3; z++ {
		for y := 2; y < 4; y++ {
			for x := 1; x < 3; x++ {
				data[z*25+y*5+x] = 0.9
			}
		}
	}
	v, err := New(data, 5, 5, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m, err := v.Threshold(0.5, 1, 3)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	if m.NumPoints() != 8 {
		t.Errorf("mask has %d points, want 8", m.NumPoints())
	}
	if want := geom.NewBox([]int{1, 2, 1}, []int{2, 2, 2}); !m.Bounds().Equal(want) {
		t.Errorf("bounds = %v, want %v", m.Bounds(), want)
	}

	s := v.MaskedStats(m)
	if s.Count != 8 || math.Abs(s.Mean-0.9) > 1e-12 || s.Variance > 1e-12 {
		t.Errorf("stats = %+v, want 8 voxels of 0.9", s)
	}

	column := mask.Infinite(mustMask2D(t, []int{1, 2}))
	s = v.MaskedStats(column)
	if s.Count != 4 || s.Max != 0.9 || s.Min != 0 {
		t.Errorf("column stats = %+v, want 4 voxels in [0, 0.9]", s)
	}

	empty, err := v.Threshold(2, 3, 0)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	if !empty.IsEmpty() || v.MaskedStats(empty).Count != 0 {
		t.Error("out of range threshold should give an empty mask")
	}
}

func mustMask2D(t *testing.T, pts []int) *mask.Mask2D {
	t.Helper()
	m, err := mask.NewMask2DFromPoints(pts)
	if err != nil {
		t.Fatalf("NewMask2DFromPoints: %v", err)
	}
	return m
}

func TestExportPlanes(t *testing.T) {
	data := make([]float64, 3*3*2)
	for i := range data {
		data[i] = 1
	}
	v, err := New(data, 3, 3, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := mask.NewMask3DFromPoints([]int{1, 1, 0, 2, 1, 0})
	if err != nil {
		t.Fatalf("NewMask3DFromPoints: %v", err)
	}

	img, err := v.MaskedPlane(m, 0)
	if err != nil {
		t.Fatalf("MaskedPlane: %v", err)
	}
	if img.Gray16At(1, 1).Y != 65535 || img.Gray16At(0, 0).Y != 0 {
		t.Error("masked plane does not follow the mask")
	}

	dir := filepath.Join(t.TempDir(), "planes")
	if err := v.ExportPlanes(m, dir); err != nil {
		t.Fatalf("ExportPlanes: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "plane_000.tif"))
	if err != nil {
		t.Fatalf("Failed to open exported plane: %v", err)
	}
	defer f.Close()
	decoded, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("tiff.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 3 || b.Dy() != 3 {
		t.Errorf("exported plane is %dx%d, want 3x3", b.Dx(), b.Dy())
	}
	if _, err := os.Stat(filepath.Join(dir, "plane_001.tif")); err != nil {
		t.Errorf("second plane missing: %v", err)
	}
}
