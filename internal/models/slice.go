package models

import (
	"fmt"
	"strconv"
	"strings"
)

// AllKeyword is the request value selecting the full range of an axis
const AllKeyword = "all"

// SliceSpec is the per-axis part of a slice request: either a single
// file coordinate or the full axis range. The zero value selects the
// full range.
type SliceSpec struct {
	single bool
	coord  int
}

// All returns a SliceSpec selecting the full range of an axis
func All() SliceSpec {
	return SliceSpec{}
}

// Single returns a SliceSpec fixing an axis to one file coordinate
func Single(coord int) SliceSpec {
	return SliceSpec{single: true, coord: coord}
}

// IsAll reports whether the spec selects the full range
func (s SliceSpec) IsAll() bool {
	return !s.single
}

// Coordinate returns the file coordinate of a single-valued spec.
// ok is false for a full-range spec.
func (s SliceSpec) Coordinate() (coord int, ok bool) {
	return s.coord, s.single
}

func (s SliceSpec) String() string {
	if !s.single {
		return AllKeyword
	}
	return strconv.Itoa(s.coord)
}

// ParseSliceSpec parses an integer file coordinate or the keyword "all"
func ParseSliceSpec(value string) (SliceSpec, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, AllKeyword) {
		return All(), nil
	}
	coord, err := strconv.Atoi(value)
	if err != nil {
		return SliceSpec{}, fmt.Errorf("slice value %q must be an integer or %q", value, AllKeyword)
	}
	return Single(coord), nil
}

// SliceRequest holds one SliceSpec per axis. A valid request fixes
// exactly one axis and selects the full range of the other two.
type SliceRequest struct {
	X SliceSpec
	Y SliceSpec
	Z SliceSpec
}

// Spec returns the SliceSpec for the given axis
func (r SliceRequest) Spec(a Axis) SliceSpec {
	switch a {
	case AxisX:
		return r.X
	case AxisY:
		return r.Y
	case AxisZ:
		return r.Z
	}
	panic(fmt.Sprintf("models: invalid axis %d", int(a)))
}

// Singletons returns the single-valued axes in canonical order
func (r SliceRequest) Singletons() []Axis {
	var axes []Axis
	for _, a := range Axes {
		if !r.Spec(a).IsAll() {
			axes = append(axes, a)
		}
	}
	return axes
}

func (r SliceRequest) String() string {
	return fmt.Sprintf("X=%s Y=%s Z=%s", r.X, r.Y, r.Z)
}

// Range is a half-open interval [Start, Stop) of integer coordinates
type Range struct {
	Start int
	Stop  int
}

// Len returns the number of coordinates in the range
func (r Range) Len() int {
	if r.Stop < r.Start {
		return 0
	}
	return r.Stop - r.Start
}

// Min returns the first coordinate of the range
func (r Range) Min() int {
	return r.Start
}

// Max returns the last coordinate of the range
func (r Range) Max() int {
	return r.Stop - 1
}

// Shift returns the range moved by delta
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, Stop: r.Stop + delta}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.Stop)
}

// AxisMapping is the resolved form of one axis of a slice request
type AxisMapping struct {
	// Descriptor is the axis the mapping belongs to
	Descriptor AxisDescriptor

	// Spec is the request value the mapping was derived from
	Spec SliceSpec

	// File holds the selected file coordinates
	File Range

	// Pixel holds the selected zero-based array indices
	Pixel Range
}

// Singleton reports whether the axis was fixed to a single coordinate
func (m AxisMapping) Singleton() bool {
	return !m.Spec.IsAll()
}

// Mapping holds the resolved mappings of all three axes, indexed by Axis
type Mapping [3]AxisMapping

// SingletonAxes returns the axes fixed to a single coordinate, in canonical order
func (m Mapping) SingletonAxes() []Axis {
	var axes []Axis
	for _, a := range Axes {
		if m[a].Singleton() {
			axes = append(axes, a)
		}
	}
	return axes
}
