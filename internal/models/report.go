package models

import "time"

// MaskSummary describes one mask taking part in a run
type MaskSummary struct {
	// Name is the file or source the mask came from
	Name string

	// Bounds is the printed tight bounding box
	Bounds string

	// NumPoints is the number of points in the region
	NumPoints int

	// ContourPoints is the number of points on the region surface
	ContourPoints int
}

// Shape holds the geometric descriptors of the result
type Shape struct {
	// MassCenter is the mean position per axis
	MassCenter []float64

	// Spread is the standard deviation per axis
	Spread []float64

	// AxisLengths are the square roots of the principal variances, largest first
	AxisLengths []float64
}

// Intensity holds volume statistics inside the result mask
type Intensity struct {
	Count    int
	Mean     float64
	Variance float64
	Min, Max float64
}

// Report is everything the CLI prints after a run
type Report struct {
	// Operation is the name of the applied operation, empty for a single input
	Operation string

	Inputs []MaskSummary
	Result MaskSummary

	// Shape is nil when descriptors are disabled
	Shape *Shape

	// Intensity is nil when no volume was given
	Intensity *Intensity

	// Elapsed is the wall time of the mask computation
	Elapsed time.Duration
}
