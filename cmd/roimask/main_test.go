package main

import (
	"os"
	"path/filepath"
	"testing"

	"roimask/pkg/arrayconv"
	"roimask/pkg/config"
	"roimask/pkg/mask"
)

func TestThresholdVolume(t *testing.T) {
	// 3x3x2 bytes, the center column is bright
	raw := make([]byte, 18)
	raw[4], raw[13] = 200, 200
	path := filepath.Join(t.TempDir(), "volume.raw")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write volume: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Codec.DataType = arrayconv.Byte
	cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth = 3, 3, 2

	vol, m, err := thresholdVolume(path, cfg)
	if err != nil {
		t.Fatalf("thresholdVolume: %v", err)
	}
	want := []int{1, 1, 0, 0, 0, 1, 1, 1, 0, 0}
	got := m.Points()
	if len(got) != len(want) {
		t.Fatalf("points = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("points = %v, want %v", got, want)
		}
	}

	s := intensity(vol, volumePart(m))
	if s.Count != 2 || s.Mean != 1 {
		t.Errorf("intensity = %+v, want two voxels of 1", s)
	}
}

func TestReadMask(t *testing.T) {
	m, err := mask.NewMask5DFromPoints([]int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("NewMask5DFromPoints: %v", err)
	}
	data, err := mask.MarshalPoints(m, false)
	if err != nil {
		t.Fatalf("MarshalPoints: %v", err)
	}
	path := filepath.Join(t.TempDir(), "a.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write mask: %v", err)
	}

	back, err := readMask(path, false)
	if err != nil {
		t.Fatalf("readMask: %v", err)
	}
	if !back.Contains(1, 2, 3, 4, 5) || back.NumPoints() != 1 {
		t.Errorf("read mask points = %v", back.Points())
	}
	if volumePart(back).NumPoints() != 0 {
		t.Error("T = 4, C = 5 point should not be in the volume part")
	}
}
