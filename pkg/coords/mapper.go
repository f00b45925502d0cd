// Package coords translates slice requests given in file coordinates into
// array index ranges and validates them against the volume geometry.
package coords

import (
	"errors"
	"fmt"

	"sharadslice/internal/models"
)

var (
	// ErrAmbiguousSlice is returned unless exactly one axis is fixed to a single coordinate
	ErrAmbiguousSlice = errors.New("ambiguous slice")

	// ErrOutOfBounds is returned when a requested coordinate lies outside the volume
	ErrOutOfBounds = errors.New("out of bounds")
)

// BoundsError reports a coordinate outside the extent of one axis
type BoundsError struct {
	// Axis is the offending axis
	Axis models.Axis

	// Name is the display name of the axis
	Name string

	// File is the requested file coordinate range
	File models.Range

	// Pixel is the corresponding array index range
	Pixel models.Range

	// FirstPixel and Size describe the valid extent of the axis
	FirstPixel int
	Size       int
}

func (e *BoundsError) Error() string {
	lo := e.FirstPixel
	hi := e.FirstPixel + e.Size - 1
	if e.File.Len() == 1 {
		return fmt.Sprintf("specified %s value %d is out of bounds for this volume (valid %d..%d)",
			e.Name, e.File.Start, lo, hi)
	}
	return fmt.Sprintf("specified %s range %d..%d is out of bounds for this volume (valid %d..%d)",
		e.Name, e.File.Min(), e.File.Max(), lo, hi)
}

// Is makes BoundsError match ErrOutOfBounds
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// CheckRequest verifies that every single-valued axis of req is at or
// above the axis' first pixel. It runs when the request is read, before
// any geometry is mapped.
func CheckRequest(req models.SliceRequest, axes [3]models.AxisDescriptor) error {
	for _, a := range models.Axes {
		coord, ok := req.Spec(a).Coordinate()
		if !ok {
			continue
		}
		d := axes[a]
		if coord < d.FirstPixel {
			return &BoundsError{
				Axis:       a,
				Name:       d.Name,
				File:       models.Range{Start: coord, Stop: coord + 1},
				Pixel:      models.Range{Start: d.ToPixelIndex(coord), Stop: d.ToPixelIndex(coord) + 1},
				FirstPixel: d.FirstPixel,
				Size:       d.Size,
			}
		}
	}
	return nil
}

// CheckSingleton verifies that exactly one axis of req is single-valued
func CheckSingleton(req models.SliceRequest) error {
	switch n := len(req.Singletons()); {
	case n == 0:
		return fmt.Errorf("%w: one axis must be an integer, got %s", ErrAmbiguousSlice, req)
	case n > 1:
		return fmt.Errorf("%w: only one axis can be an integer, the other two must be %q, got %s",
			ErrAmbiguousSlice, models.AllKeyword, req)
	}
	return nil
}

// MapAxis resolves one axis of a request. A full-range spec selects
// [FirstPixel, FirstPixel+Size); a single spec selects one coordinate.
// The index range is validated against [0, Size).
func MapAxis(spec models.SliceSpec, d models.AxisDescriptor) (models.AxisMapping, error) {
	m := models.AxisMapping{Descriptor: d, Spec: spec}

	if coord, ok := spec.Coordinate(); ok {
		m.File = models.Range{Start: coord, Stop: coord + 1}
	} else {
		m.File = models.Range{Start: d.FirstPixel, Stop: d.FirstPixel + d.Size}
	}
	m.Pixel = m.File.Shift(-d.FirstPixel)

	if m.Pixel.Len() == 0 || !d.InBounds(m.Pixel.Min()) || !d.InBounds(m.Pixel.Max()) {
		return m, &BoundsError{
			Axis:       d.Axis,
			Name:       d.Name,
			File:       m.File,
			Pixel:      m.Pixel,
			FirstPixel: d.FirstPixel,
			Size:       d.Size,
		}
	}
	return m, nil
}

// Map resolves all three axes of req. It fails with ErrAmbiguousSlice
// unless exactly one axis is single-valued, and with a *BoundsError naming
// the first axis whose indices fall outside the volume.
func Map(req models.SliceRequest, axes [3]models.AxisDescriptor) (models.Mapping, error) {
	var m models.Mapping

	if err := CheckSingleton(req); err != nil {
		return m, err
	}

	for _, a := range models.Axes {
		am, err := MapAxis(req.Spec(a), axes[a])
		if err != nil {
			return m, err
		}
		m[a] = am
	}
	return m, nil
}
