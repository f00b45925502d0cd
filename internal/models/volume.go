package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Volume is a radar datacube held in memory.
//
// Data keeps the file's row-major [Z][Y][X] order; At exposes the
// [X, Y, Z] indexing that matches the physical axis semantics.
type Volume struct {
	// Data holds the samples, X varying fastest
	Data []float32

	// XSize, YSize, ZSize are the dimensions of the volume in samples
	XSize int
	YSize int
	ZSize int
}

// NewVolume allocates a zero-filled volume
func NewVolume(xSize, ySize, zSize int) *Volume {
	return &Volume{
		Data:  make([]float32, xSize*ySize*zSize),
		XSize: xSize,
		YSize: ySize,
		ZSize: zSize,
	}
}

// Index returns the position of sample (x, y, z) in Data
func (v *Volume) Index(x, y, z int) int {
	return z*v.XSize*v.YSize + y*v.XSize + x
}

// At returns sample (x, y, z)
func (v *Volume) At(x, y, z int) float32 {
	return v.Data[v.Index(x, y, z)]
}

// Set stores sample (x, y, z)
func (v *Volume) Set(x, y, z int, value float32) {
	v.Data[v.Index(x, y, z)] = value
}

// Size returns the number of samples along axis a
func (v *Volume) Size(a Axis) int {
	switch a {
	case AxisX:
		return v.XSize
	case AxisY:
		return v.YSize
	case AxisZ:
		return v.ZSize
	}
	return 0
}

// Shape returns the dimensions in [X, Y, Z] order
func (v *Volume) Shape() [3]int {
	return [3]int{v.XSize, v.YSize, v.ZSize}
}

func (v *Volume) String() string {
	return fmt.Sprintf("volume %dx%dx%d (X x Y x Z)", v.XSize, v.YSize, v.ZSize)
}

// Plane is a 2-D cut through a volume. Columns run along the canonically
// earlier of the two ranged axes, rows along the later one.
type Plane struct {
	// Values holds the samples, one matrix row per Rows index
	Values *mat.Dense

	// Columns is the axis running horizontally
	Columns Axis

	// Rows is the axis running vertically
	Rows Axis

	// Sliced is the collapsed axis
	Sliced Axis
}

// Dims returns the number of rows and columns of the plane
func (p *Plane) Dims() (rows, cols int) {
	return p.Values.Dims()
}

// AxisLabel is the annotation of one ranged plane axis
type AxisLabel struct {
	// Axis is the labelled axis
	Axis Axis

	// Text is "{name} ({unit})"
	Text string

	// Lower and Upper are the physical coordinates of the first and last index
	Lower float64
	Upper float64
}

// LabelBundle carries everything a renderer needs to annotate a plane
type LabelBundle struct {
	Horizontal AxisLabel
	Vertical   AxisLabel

	// SlicedAxis is the collapsed axis
	SlicedAxis Axis

	// SlicedName is the display name of the collapsed axis
	SlicedName string

	// SlicedCoordinate is the file coordinate the plane was cut at
	SlicedCoordinate int

	// SlicedPhysical is the physical coordinate the plane was cut at
	SlicedPhysical float64
}
