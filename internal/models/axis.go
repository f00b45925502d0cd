package models

import (
	"fmt"
)

// Axis identifies one of the three physical axes of a radar volume.
// The numeric order X < Y < Z is the canonical axis order used for
// plane orientation and labelling.
type Axis int

const (
	// AxisX is the "line" axis, stored fastest-varying in the file
	AxisX Axis = iota

	// AxisY is the "sample" axis
	AxisY

	// AxisZ is the time-like "band" axis, stored slowest-varying in the file
	AxisZ
)

// Axes lists all axes in canonical order
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// String returns the short axis name ("X", "Y" or "Z")
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Valid reports whether a is one of AxisX, AxisY, AxisZ
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// AxisDescriptor maps between the three coordinate spaces of one axis:
// file coordinates (as written in the product label), zero-based array
// indices, and physical coordinates used for annotation.
type AxisDescriptor struct {
	// Axis is the axis this descriptor belongs to
	Axis Axis

	// Name is the display name of the axis, e.g. "X"
	Name string

	// Unit is the physical unit of the axis, e.g. "m" or "us"
	Unit string

	// FirstPixel is the file coordinate of array index 0
	FirstPixel int

	// Start is the physical coordinate of array index 0
	Start float64

	// Interval is the physical distance between consecutive indices
	Interval float64

	// Size is the number of samples along the axis
	Size int
}

// ToPixelIndex converts a file coordinate to a zero-based array index.
// The result is not bounds checked.
func (d AxisDescriptor) ToPixelIndex(coord int) int {
	return coord - d.FirstPixel
}

// ToFileCoordinate converts a zero-based array index to a file coordinate
func (d AxisDescriptor) ToFileCoordinate(index int) int {
	return index + d.FirstPixel
}

// PhysicalCoordinate converts a zero-based array index to a physical coordinate
func (d AxisDescriptor) PhysicalCoordinate(index int) float64 {
	return d.Start + d.Interval*float64(index)
}

// InBounds reports whether index addresses a sample of this axis
func (d AxisDescriptor) InBounds(index int) bool {
	return index >= 0 && index < d.Size
}

// Label returns the "{name} ({unit})" annotation of the axis
func (d AxisDescriptor) Label() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Unit)
}
