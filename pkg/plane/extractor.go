// Package plane cuts axis-aligned 2-D planes out of a radar volume.
package plane

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"sharadslice/internal/models"
)

// ErrNoSingleton is returned when the mapping does not name exactly one
// collapsed axis. Validated mappings never produce it.
var ErrNoSingleton = errors.New("no unique singleton axis to collapse")

// Extract collapses v along the singleton axis of m.
//
// The two ranged axes keep canonical order in the raw cut (earlier axis as
// rows), and the cut is then transposed so the earlier axis runs along the
// columns of the returned plane and the later axis along its rows.
func Extract(v *models.Volume, m models.Mapping, singleton models.Axis) (*models.Plane, error) {
	if !singleton.Valid() || !m[singleton].Singleton() {
		return nil, fmt.Errorf("%w: axis %s is not single-valued", ErrNoSingleton, singleton)
	}

	ranged := make([]models.Axis, 0, 2)
	for _, a := range models.Axes {
		if a == singleton {
			continue
		}
		if m[a].Singleton() {
			return nil, fmt.Errorf("%w: axes %s and %s are both single-valued", ErrNoSingleton, singleton, a)
		}
		ranged = append(ranged, a)
	}

	for _, a := range models.Axes {
		p := m[a].Pixel
		if p.Len() == 0 || p.Min() < 0 || p.Max() >= v.Size(a) {
			return nil, fmt.Errorf("index range %v of axis %s exceeds volume size %d", p, a, v.Size(a))
		}
	}

	first, second := m[ranged[0]].Pixel, m[ranged[1]].Pixel
	raw := mat.NewDense(first.Len(), second.Len(), nil)

	var idx [3]int
	idx[singleton] = m[singleton].Pixel.Start
	for i := 0; i < first.Len(); i++ {
		idx[ranged[0]] = first.Start + i
		for j := 0; j < second.Len(); j++ {
			idx[ranged[1]] = second.Start + j
			raw.Set(i, j, float64(v.At(idx[0], idx[1], idx[2])))
		}
	}

	var values mat.Dense
	values.CloneFrom(raw.T())

	return &models.Plane{
		Values:  &values,
		Columns: ranged[0],
		Rows:    ranged[1],
		Sliced:  singleton,
	}, nil
}

// FromMapping extracts the plane described by m, locating the singleton
// axis itself.
func FromMapping(v *models.Volume, m models.Mapping) (*models.Plane, error) {
	singles := m.SingletonAxes()
	if len(singles) != 1 {
		return nil, fmt.Errorf("%w: %d single-valued axes", ErrNoSingleton, len(singles))
	}
	return Extract(v, m, singles[0])
}

// Summary holds basic statistics of the finite values of a plane.
// NaN and ±Inf samples are only counted.
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64

	// NonFinite is the number of NaN or infinite samples
	NonFinite int
}

// Finite reports whether the plane has at least one finite sample
func (s Summary) Finite() bool {
	return s.Min <= s.Max
}

// Stats computes summary statistics of the plane values
func Stats(p *models.Plane) Summary {
	rows, cols := p.Dims()
	data := make([]float64, 0, rows*cols)
	var s Summary
	for r := 0; r < rows; r++ {
		for _, v := range p.Values.RawRowView(r) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				s.NonFinite++
				continue
			}
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		s.Min, s.Max = math.Inf(1), math.Inf(-1)
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	s.Min = floats.Min(data)
	s.Max = floats.Max(data)
	return s
}
