package volume

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"roimask/pkg/mask"
)

// MaskedPlane returns the Z plane at position with every voxel outside m
// set to zero.
func (v *Volume) MaskedPlane(m *mask.Mask3D, position int) (*image.Gray16, error) {
	p, err := v.ExtractSlice("z", position)
	if err != nil {
		return nil, err
	}
	img := image.NewGray16(image.Rect(0, 0, p.Width, p.Height))
	plane, ok := m.Slice(position)
	if !ok {
		return img, nil
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if !plane.Contains(x, y) {
				continue
			}
			value := uint16(math.Max(0, math.Min(65535, p.Data[y*p.Width+x]*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img, nil
}

// SavePlane saves an image as a deflate compressed TIFF
func SavePlane(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
}

// ExportPlanes writes every masked Z plane to outputDir as plane_NNN.tif.
func (v *Volume) ExportPlanes(m *mask.Mask3D, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for z := 0; z < v.Depth; z++ {
		img, err := v.MaskedPlane(m, z)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("plane_%03d.tif", z))
		if err := SavePlane(img, filename); err != nil {
			return fmt.Errorf("volume: saving plane %d: %w", z, err)
		}
	}
	return nil
}
