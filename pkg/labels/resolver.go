// Package labels derives plot annotations for an extracted plane: axis
// names and units, physical coordinate bounds, and the plot title.
package labels

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"sharadslice/internal/models"
)

// ErrLabelingInconsistency is returned when a mapping does not have exactly
// one sliced axis and two ranged axes.
var ErrLabelingInconsistency = errors.New("labeling inconsistency")

// Resolve walks the axes in canonical order. The first single-valued axis
// names the plane; the first and second ranged axes become the horizontal
// and vertical labels. Bounds are physical coordinates of the smallest and
// largest pixel index of each ranged axis.
func Resolve(m models.Mapping) (models.LabelBundle, error) {
	var (
		b      models.LabelBundle
		sliced bool
		ranged int
	)

	for _, a := range models.Axes {
		am := m[a]
		d := am.Descriptor

		if am.Singleton() {
			if sliced {
				return b, fmt.Errorf("%w: axes %s and %s both have a single value",
					ErrLabelingInconsistency, b.SlicedAxis, a)
			}
			sliced = true
			b.SlicedAxis = a
			b.SlicedName = d.Name
			b.SlicedCoordinate = am.File.Start
			b.SlicedPhysical = d.PhysicalCoordinate(am.Pixel.Start)
			continue
		}

		ranged++
		switch ranged {
		case 1:
			b.Horizontal = axisLabel(am)
		case 2:
			b.Vertical = axisLabel(am)
		}
	}

	if !sliced {
		return b, fmt.Errorf("%w: at least one dimension must have only one value specified in order to plot as a plane",
			ErrLabelingInconsistency)
	}
	return b, nil
}

func axisLabel(am models.AxisMapping) models.AxisLabel {
	d := am.Descriptor
	l := models.AxisLabel{Axis: d.Axis, Text: d.Label()}
	if am.Pixel.Len() == 0 {
		return l
	}
	l.Lower = d.PhysicalCoordinate(am.Pixel.Min())
	l.Upper = d.PhysicalCoordinate(am.Pixel.Max())
	return l
}

// Title composes "{base filename}_{sliced axis name}{sliced coordinate}"
func Title(volumePath string, b models.LabelBundle) string {
	return filepath.Base(volumePath) + "_" + b.SlicedName + strconv.Itoa(b.SlicedCoordinate)
}

// FormatCoordinate renders a physical coordinate without trailing zeros
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
