package config

import (
	"errors"
	"fmt"

	"sharadslice/internal/models"
	"sharadslice/pkg/pds"
)

// Label keywords describing the volume geometry, per axis
var labelKeywords = map[models.Axis]struct {
	size       string
	firstPixel string
}{
	models.AxisX: {size: "LINES", firstPixel: "LINE_FIRST_PIXEL"},
	models.AxisY: {size: "LINE_SAMPLES", firstPixel: "SAMPLE_FIRST_PIXEL"},
	models.AxisZ: {size: "BANDS", firstPixel: "BAND_FIRST_PIXEL"},
}

// ApplyLabel overrides volume shape and first-pixel offsets with the values
// found in a PDS label. Keywords missing from the label leave the current
// settings untouched. Labels describing anything other than little-endian
// 32-bit real samples are rejected.
func (c *Config) ApplyLabel(l *pds.Label) error {
	if v, ok := l.Find("SAMPLE_TYPE"); ok && v != "PC_REAL" {
		return fmt.Errorf("%w: unsupported SAMPLE_TYPE %s (want PC_REAL)", ErrInvalidConfig, v)
	}
	if _, ok := l.Find("SAMPLE_BITS"); ok {
		bits, err := l.Int("SAMPLE_BITS")
		if err != nil {
			return err
		}
		if bits != 32 {
			return fmt.Errorf("%w: unsupported SAMPLE_BITS %d (want 32)", ErrInvalidConfig, bits)
		}
	}

	for _, a := range models.Axes {
		kw := labelKeywords[a]

		size, err := optionalInt(l, kw.size)
		if err != nil {
			return err
		}
		if size != nil {
			c.SetAxisSize(a, *size)
		}

		first, err := optionalInt(l, kw.firstPixel)
		if err != nil {
			return err
		}
		if first != nil {
			c.Axis(a).FirstPixel = *first
		}
	}
	return nil
}

// LoadLabel reads the PDS label at path and applies it to c
func (c *Config) LoadLabel(path string) error {
	l, err := pds.ReadLabel(path)
	if err != nil {
		return fmt.Errorf("error reading label file: %w", err)
	}
	return c.ApplyLabel(l)
}

func optionalInt(l *pds.Label, keyword string) (*int, error) {
	n, err := l.Int(keyword)
	if errors.Is(err, pds.ErrMissingKeyword) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
