package plane

import (
	"errors"
	"math"
	"testing"

	"sharadslice/internal/models"
	"sharadslice/pkg/coords"
)

// rampVolume fills a volume with value x + 1000*y + 1000000*z
func rampVolume(xs, ys, zs int) *models.Volume {
	v := models.NewVolume(xs, ys, zs)
	for z := 0; z < zs; z++ {
		for y := 0; y < ys; y++ {
			for x := 0; x < xs; x++ {
				v.Set(x, y, z, float32(x+1000*y+1000000*z))
			}
		}
	}
	return v
}

func axesFor(v *models.Volume) [3]models.AxisDescriptor {
	return [3]models.AxisDescriptor{
		{Axis: models.AxisX, Name: "X", Unit: "m", FirstPixel: 3101, Start: 189762, Interval: 475, Size: v.XSize},
		{Axis: models.AxisY, Name: "Y", Unit: "m", FirstPixel: 1651, Start: -498988, Interval: 475, Size: v.YSize},
		{Axis: models.AxisZ, Name: "Z", Unit: "us", FirstPixel: 0, Start: 107.4, Interval: 0.0375, Size: v.ZSize},
	}
}

func mustMap(t *testing.T, v *models.Volume, req models.SliceRequest) models.Mapping {
	t.Helper()
	m, err := coords.Map(req, axesFor(v))
	if err != nil {
		t.Fatalf("Failed to map %s: %v", req, err)
	}
	return m
}

// TestExtractOrientation verifies rows and columns for each collapsed axis
func TestExtractOrientation(t *testing.T) {
	xs, ys, zs := 6, 5, 4
	v := rampVolume(xs, ys, zs)

	tests := []struct {
		name       string
		req        models.SliceRequest
		rows, cols int
		colAxis    models.Axis
		rowAxis    models.Axis
		value      func(r, c int) float64
	}{
		{
			name: "X cut",
			req:  models.SliceRequest{X: models.Single(3101 + 2)},
			rows: zs, cols: ys,
			colAxis: models.AxisY, rowAxis: models.AxisZ,
			value: func(r, c int) float64 { return float64(2 + 1000*c + 1000000*r) },
		},
		{
			name: "Y cut",
			req:  models.SliceRequest{Y: models.Single(1651 + 3)},
			rows: zs, cols: xs,
			colAxis: models.AxisX, rowAxis: models.AxisZ,
			value: func(r, c int) float64 { return float64(c + 1000*3 + 1000000*r) },
		},
		{
			name: "Z cut",
			req:  models.SliceRequest{Z: models.Single(1)},
			rows: ys, cols: xs,
			colAxis: models.AxisX, rowAxis: models.AxisY,
			value: func(r, c int) float64 { return float64(c + 1000*r + 1000000*1) },
		},
	}

	for _, tt := range tests {
		p, err := FromMapping(v, mustMap(t, v, tt.req))
		if err != nil {
			t.Fatalf("%s: failed to extract: %v", tt.name, err)
		}

		rows, cols := p.Dims()
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("%s: expected %dx%d, got %dx%d", tt.name, tt.rows, tt.cols, rows, cols)
		}
		if p.Columns != tt.colAxis || p.Rows != tt.rowAxis {
			t.Errorf("%s: expected columns %s rows %s, got %s %s",
				tt.name, tt.colAxis, tt.rowAxis, p.Columns, p.Rows)
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if got, want := p.Values.At(r, c), tt.value(r, c); got != want {
					t.Fatalf("%s: at (%d,%d) expected %f, got %f", tt.name, r, c, want, got)
				}
			}
		}
	}
}

// TestExtractDefaultGeometry verifies the full-size X cut of a 937x300x300 volume
func TestExtractDefaultGeometry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping full-size volume in short mode")
	}

	v := models.NewVolume(300, 300, 937)
	for i := range v.Data {
		v.Data[i] = float32(i % 65536)
	}

	req := models.SliceRequest{X: models.Single(3101), Y: models.All(), Z: models.All()}
	p, err := FromMapping(v, mustMap(t, v, req))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	rows, cols := p.Dims()
	if rows != 937 || cols != 300 {
		t.Errorf("Expected 937x300 (Z rows, Y columns), got %dx%d", rows, cols)
	}
	if p.Sliced != models.AxisX {
		t.Errorf("Expected sliced axis X, got %s", p.Sliced)
	}
	if got, want := p.Values.At(936, 299), float64(v.At(0, 299, 936)); got != want {
		t.Errorf("Expected corner %f, got %f", want, got)
	}
}

// TestExtractIdempotent verifies that repeated extraction is bit-identical
func TestExtractIdempotent(t *testing.T) {
	v := rampVolume(7, 6, 5)
	for i := range v.Data {
		v.Data[i] = float32(math.Sin(float64(i))) * 1e3
	}
	m := mustMap(t, v, models.SliceRequest{Y: models.Single(1653)})

	a, err := FromMapping(v, m)
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}
	b, err := FromMapping(v, m)
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	rows, cols := a.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if math.Float64bits(a.Values.At(r, c)) != math.Float64bits(b.Values.At(r, c)) {
				t.Fatalf("Planes differ at (%d,%d)", r, c)
			}
		}
	}
}

// TestExtractNoSingleton verifies that a mapping without a unique singleton fails loudly
func TestExtractNoSingleton(t *testing.T) {
	v := rampVolume(3, 3, 3)
	axes := axesFor(v)

	var m models.Mapping
	for _, a := range models.Axes {
		am, err := coords.MapAxis(models.All(), axes[a])
		if err != nil {
			t.Fatalf("Failed to map axis %s: %v", a, err)
		}
		m[a] = am
	}

	if _, err := FromMapping(v, m); !errors.Is(err, ErrNoSingleton) {
		t.Errorf("Expected ErrNoSingleton for all-range mapping, got %v", err)
	}
	if _, err := Extract(v, m, models.AxisY); !errors.Is(err, ErrNoSingleton) {
		t.Errorf("Expected ErrNoSingleton for ranged axis, got %v", err)
	}

	// Two singletons
	m[models.AxisX], _ = coords.MapAxis(models.Single(3101), axes[models.AxisX])
	m[models.AxisZ], _ = coords.MapAxis(models.Single(0), axes[models.AxisZ])
	if _, err := Extract(v, m, models.AxisX); !errors.Is(err, ErrNoSingleton) {
		t.Errorf("Expected ErrNoSingleton for two singletons, got %v", err)
	}
	if _, err := Extract(v, m, models.Axis(7)); !errors.Is(err, ErrNoSingleton) {
		t.Errorf("Expected ErrNoSingleton for invalid axis, got %v", err)
	}
}

// TestExtractRangeExceedsVolume verifies that a mapping built for a larger volume is rejected
func TestExtractRangeExceedsVolume(t *testing.T) {
	big := rampVolume(4, 4, 4)
	small := rampVolume(4, 3, 4)

	m := mustMap(t, big, models.SliceRequest{X: models.Single(3101)})
	if _, err := FromMapping(small, m); err == nil {
		t.Error("Expected error for index range beyond volume")
	}
}

// TestStats verifies plane statistics
func TestStats(t *testing.T) {
	v := models.NewVolume(2, 2, 1)
	copy(v.Data, []float32{1, 2, 3, 4})

	p, err := FromMapping(v, mustMap(t, v, models.SliceRequest{Z: models.Single(0)}))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	s := Stats(p)
	if s.Min != 1 || s.Max != 4 || s.Mean != 2.5 {
		t.Errorf("Expected min 1 max 4 mean 2.5, got %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("Expected sample std-dev %f, got %f", math.Sqrt(5.0/3.0), s.StdDev)
	}
}

// TestStatsNonFinite verifies that NaN and infinite samples are counted, not summarised
func TestStatsNonFinite(t *testing.T) {
	v := models.NewVolume(3, 2, 1)
	copy(v.Data, []float32{float32(math.Inf(-1)), 1, 2, float32(math.NaN()), 4, float32(math.Inf(1))})

	p, err := FromMapping(v, mustMap(t, v, models.SliceRequest{Z: models.Single(0)}))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	s := Stats(p)
	if !s.Finite() {
		t.Fatalf("Expected finite summary, got %+v", s)
	}
	if s.Min != 1 || s.Max != 4 || math.Abs(s.Mean-7.0/3.0) > 1e-12 {
		t.Errorf("Expected min 1 max 4 mean 7/3, got %+v", s)
	}
	if s.NonFinite != 3 {
		t.Errorf("Expected 3 non-finite samples, got %d", s.NonFinite)
	}

	for i := range v.Data {
		v.Data[i] = float32(math.Inf(-1))
	}
	p, err = FromMapping(v, mustMap(t, v, models.SliceRequest{Z: models.Single(0)}))
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}
	if s := Stats(p); s.Finite() || s.NonFinite != 6 {
		t.Errorf("Expected no finite samples and 6 non-finite, got %+v", s)
	}
}

// BenchmarkExtract measures a full-height X cut
func BenchmarkExtract(b *testing.B) {
	v := rampVolume(64, 64, 256)
	m, err := coords.Map(models.SliceRequest{X: models.Single(3101 + 10)}, axesFor(v))
	if err != nil {
		b.Fatalf("Failed to map: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FromMapping(v, m); err != nil {
			b.Fatal(err)
		}
	}
}
