package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"

	"roimask/internal/models"
	"roimask/pkg/arrayconv"
	"roimask/pkg/config"
	"roimask/pkg/descriptor"
	"roimask/pkg/geom"
	"roimask/pkg/mask"
	"roimask/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "roimask.yaml", "YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	inputA := flag.String("a", "", "First point-list file (X, Y, Z, T, C int32 per point)")
	inputB := flag.String("b", "", "Second point-list file")
	volumePath := flag.String("volume", "", "Raw volume to threshold into the first mask")
	opName := flag.String("op", "", "Operation: union, intersection, xor or subtraction")
	output := flag.String("output", "", "Write the resulting point list to this file")
	planesDir := flag.String("planes-dir", "", "Save the masked volume Z planes to this directory (needs -volume)")
	dataType := flag.String("type", "", "Raw volume element type (byte, short, int, long, float, double)")
	width := flag.Int("width", 0, "Raw volume width")
	height := flag.Int("height", 0, "Raw volume height")
	depth := flag.Int("depth", 0, "Raw volume depth")
	lo := flag.Float64("lo", 0, "Lowest normalized intensity kept by the threshold")
	hi := flag.Float64("hi", 0, "Highest normalized intensity kept by the threshold")
	bigEndian := flag.Bool("big-endian", false, "Read and write big endian data")
	numCores := flag.Int("cores", runtime.NumCPU(), "Number of CPU cores used to threshold a volume")
	verbose := flag.Bool("verbose", false, "Log mask operations")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "op":
			cfg.Mask.Operation = *opName
		case "type":
			t, err := arrayconv.ParseDataType(*dataType)
			if err != nil {
				log.Fatalf("Invalid -type: %v", err)
			}
			cfg.Codec.DataType = t
		case "width":
			cfg.Volume.Width = *width
		case "height":
			cfg.Volume.Height = *height
		case "depth":
			cfg.Volume.Depth = *depth
		case "lo":
			cfg.Volume.Lo = *lo
		case "hi":
			cfg.Volume.Hi = *hi
		case "big-endian":
			cfg.Codec.LittleEndian = !*bigEndian
		case "cores":
			cfg.Volume.NumCores = *numCores
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *inputA == "" && *volumePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if cfg.Output.Verbose {
		mask.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	mask.SetMaxBitmapPixels(cfg.Mask.MaxBitmapPixels)
	little := cfg.Codec.LittleEndian

	report := &models.Report{}
	startTime := time.Now()

	var vol *volume.Volume
	var result *mask.Mask5D
	var name string
	if *volumePath != "" {
		vol, result, err = thresholdVolume(*volumePath, cfg)
		if err != nil {
			log.Fatalf("Thresholding failed: %v", err)
		}
		name = *volumePath
	} else {
		if result, err = readMask(*inputA, little); err != nil {
			log.Fatalf("Failed to read %s: %v", *inputA, err)
		}
		name = *inputA
	}
	report.Inputs = append(report.Inputs, summarize(name, result))

	// A volume and -a together make -a the second operand
	second := *inputB
	if *volumePath != "" && *inputA != "" {
		second = *inputA
	}
	if second != "" {
		op, err := mask.ParseOp(cfg.Mask.Operation)
		if err != nil {
			log.Fatalf("Invalid operation: %v", err)
		}
		other, err := readMask(second, little)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", second, err)
		}
		report.Inputs = append(report.Inputs, summarize(second, other))

		if result, err = mask.Combine(op, result, other); err != nil {
			log.Fatalf("Mask %s failed: %v", op, err)
		}
		report.Operation = op.String()
	}
	report.Elapsed = time.Since(startTime)
	report.Result = summarize("result", result)

	if cfg.Output.Descriptors && !result.IsEmpty() {
		d, err := descriptor.Compute(result)
		if err != nil {
			log.Fatalf("Descriptors failed: %v", err)
		}
		report.Shape = shape(d)
	}
	if vol != nil {
		m3 := volumePart(result)
		report.Intensity = intensity(vol, m3)
		if *planesDir != "" {
			if err := vol.ExportPlanes(m3, *planesDir); err != nil {
				log.Printf("Warning: Failed to save planes: %v", err)
			}
		}
	}

	if *output != "" {
		data, err := mask.MarshalPoints(result, little)
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		if err := os.WriteFile(*output, data, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", *output, err)
		}
	}

	printReport(report)
	if *output != "" {
		fmt.Printf("Result point list saved to: %s\n", *output)
	}
	if vol != nil && *planesDir != "" {
		fmt.Printf("Masked planes saved to: %s\n", *planesDir)
	}
}

func readMask(path string, little bool) (*mask.Mask5D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return mask.NewMask5DFromBytes(data, little)
}

// thresholdVolume decodes the raw volume and returns its thresholded mask
// lifted to 5D at T = 0, C = 0.
func thresholdVolume(path string, cfg *config.Config) (*volume.Volume, *mask.Mask5D, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	vol, err := volume.Decode(raw, cfg.Codec.DataType, cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth, cfg.Codec.LittleEndian)
	if err != nil {
		return nil, nil, err
	}
	m3, err := vol.Threshold(cfg.Volume.Lo, cfg.Volume.Hi, cfg.Volume.NumCores)
	if err != nil {
		return nil, nil, err
	}

	pts := m3.Points()
	lifted := make([]int, 0, len(pts)/3*5)
	for i := 0; i+3 <= len(pts); i += 3 {
		lifted = append(lifted, pts[i], pts[i+1], pts[i+2], 0, 0)
	}
	m5, err := mask.NewMask5DFromPoints(lifted)
	return vol, m5, err
}

func summarize(name string, m *mask.Mask5D) models.MaskSummary {
	return models.MaskSummary{
		Name:          name,
		Bounds:        m.OptimizedBounds().String(),
		NumPoints:     m.NumPoints(),
		ContourPoints: len(m.ContourPoints()) / 5,
	}
}

func shape(d *descriptor.Descriptor) *models.Shape {
	s := &models.Shape{MassCenter: d.MassCenter, Spread: d.Spread}
	if d.Axes != nil {
		for _, v := range d.Axes.Values {
			s.AxisLengths = append(s.AxisLengths, math.Sqrt(v))
		}
	}
	return s
}

// volumePart returns the T = 0, C = 0 part of m, the part a thresholded
// volume lives in.
func volumePart(m *mask.Mask5D) *mask.Mask3D {
	if m4, ok := m.Slice(0); ok {
		if m3, ok := m4.Slice(0); ok {
			return m3
		}
	}
	empty, _ := mask.NewMask3D(geom.Empty(3), nil)
	return empty
}

func intensity(vol *volume.Volume, m *mask.Mask3D) *models.Intensity {
	s := vol.MaskedStats(m)
	return &models.Intensity{Count: s.Count, Mean: s.Mean, Variance: s.Variance, Min: s.Min, Max: s.Max}
}

func printReport(r *models.Report) {
	fmt.Println("================================")
	fmt.Println("ROI MASK REPORT")
	fmt.Println("================================")

	for _, in := range r.Inputs {
		fmt.Printf("Input %s: %d points (%d on contour), bounds %s\n", in.Name, in.NumPoints, in.ContourPoints, in.Bounds)
	}
	if r.Operation != "" {
		fmt.Printf("Operation: %s (%.3f ms)\n", r.Operation, float64(r.Elapsed.Microseconds())/1000)
	}
	fmt.Printf("\nResult: %d points (%d on contour)\n", r.Result.NumPoints, r.Result.ContourPoints)
	fmt.Printf("Bounds: %s\n", r.Result.Bounds)

	if r.Shape != nil {
		fmt.Println("\nShape descriptors:")
		fmt.Printf("- Mass center: %s\n", formatVector(r.Shape.MassCenter))
		fmt.Printf("- Spread: %s\n", formatVector(r.Shape.Spread))
		if len(r.Shape.AxisLengths) > 0 {
			fmt.Printf("- Principal axis lengths: %s\n", formatVector(r.Shape.AxisLengths))
		}
	}

	if r.Intensity != nil {
		fmt.Println("\nIntensity inside the mask:")
		fmt.Printf("- Voxels: %d\n", r.Intensity.Count)
		fmt.Printf("- Mean: %.4f\n", r.Intensity.Mean)
		fmt.Printf("- Variance: %.6f\n", r.Intensity.Variance)
		fmt.Printf("- Range: [%.4f, %.4f]\n", r.Intensity.Min, r.Intensity.Max)
	}
}

func formatVector(v []float64) string {
	s := "("
	for i, x := range v {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%.3f", x)
	}
	return s + ")"
}
