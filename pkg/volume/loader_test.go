package volume

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"sharadslice/internal/models"
)

// rampVolume fills a volume with a value encoding each sample's position
func rampVolume(x, y, z int) *models.Volume {
	v := models.NewVolume(x, y, z)
	for k := 0; k < z; k++ {
		for j := 0; j < y; j++ {
			for i := 0; i < x; i++ {
				v.Set(i, j, k, float32(i+100*j+10000*k))
			}
		}
	}
	return v
}

// writeRaw writes values as little-endian float32 without a header
func writeRaw(t *testing.T, path string, values []float32) {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, values); err != nil {
		t.Fatalf("Failed to encode values: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write volume: %v", err)
	}
}

// TestLoad verifies that file order [Z, Y, X] is exposed as [X, Y, Z]
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.dat")

	// X fastest: value = x + 100*y + 10000*z
	xs, ys, zs := 4, 3, 2
	values := make([]float32, 0, xs*ys*zs)
	for z := 0; z < zs; z++ {
		for y := 0; y < ys; y++ {
			for x := 0; x < xs; x++ {
				values = append(values, float32(x+100*y+10000*z))
			}
		}
	}
	writeRaw(t, path, values)

	v, err := Load(path, Shape{zs, ys, xs})
	if err != nil {
		t.Fatalf("Failed to load volume: %v", err)
	}

	if v.XSize != xs || v.YSize != ys || v.ZSize != zs {
		t.Fatalf("Expected %dx%dx%d, got %v", xs, ys, zs, v)
	}
	for z := 0; z < zs; z++ {
		for y := 0; y < ys; y++ {
			for x := 0; x < xs; x++ {
				want := float32(x + 100*y + 10000*z)
				if got := v.At(x, y, z); got != want {
					t.Fatalf("At(%d,%d,%d): expected %f, got %f", x, y, z, want, got)
				}
			}
		}
	}
}

// TestLoadSpecialValues verifies bit-exact decoding of float32 samples
func TestLoadSpecialValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.dat")
	values := []float32{-0.5, float32(math.Inf(1)), math.MaxFloat32, math.SmallestNonzeroFloat32}
	writeRaw(t, path, values)

	v, err := Load(path, Shape{1, 1, 4})
	if err != nil {
		t.Fatalf("Failed to load volume: %v", err)
	}
	for i, want := range values {
		if math.Float32bits(v.Data[i]) != math.Float32bits(want) {
			t.Errorf("Sample %d: expected %g, got %g", i, want, v.Data[i])
		}
	}
}

// TestLoadFileNotFound verifies the missing-file error
func TestLoadFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.dat"), Shape{1, 1, 1})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

// TestLoadShapeMismatch verifies that files not matching the shape are rejected
func TestLoadShapeMismatch(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "short.dat")
	writeRaw(t, path, make([]float32, 23))
	if _, err := Load(path, Shape{2, 3, 4}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for short file, got %v", err)
	}

	path = filepath.Join(dir, "long.dat")
	writeRaw(t, path, make([]float32, 25))
	if _, err := Load(path, Shape{2, 3, 4}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for long file, got %v", err)
	}

	// Not a whole number of samples
	path = filepath.Join(dir, "ragged.dat")
	if err := os.WriteFile(path, make([]byte, 4*24+2), 0644); err != nil {
		t.Fatalf("Failed to write volume: %v", err)
	}
	if _, err := Load(path, Shape{2, 3, 4}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for ragged file, got %v", err)
	}
}

// TestRead verifies stream decoding and its size checks
func TestRead(t *testing.T) {
	src := rampVolume(3, 2, 2)
	buf := new(bytes.Buffer)
	if err := Write(buf, src); err != nil {
		t.Fatalf("Failed to write volume: %v", err)
	}
	data := buf.Bytes()

	v, err := Read(bytes.NewReader(data), Shape{2, 2, 3})
	if err != nil {
		t.Fatalf("Failed to read volume: %v", err)
	}
	if v.At(2, 1, 1) != src.At(2, 1, 1) {
		t.Errorf("Expected %f, got %f", src.At(2, 1, 1), v.At(2, 1, 1))
	}

	if _, err := Read(bytes.NewReader(data[:len(data)-4]), Shape{2, 2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for truncated stream, got %v", err)
	}
	if _, err := Read(bytes.NewReader(append(data, 0)), Shape{2, 2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for trailing bytes, got %v", err)
	}
	if _, err := Read(bytes.NewReader(data), Shape{0, 2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for zero dimension, got %v", err)
	}
}

// TestSaveLoad verifies that Save output is readable by Load
func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramp.dat")
	src := rampVolume(5, 4, 3)

	if err := Save(path, src); err != nil {
		t.Fatalf("Failed to save volume: %v", err)
	}

	v, err := Load(path, ShapeOf(src))
	if err != nil {
		t.Fatalf("Failed to load volume: %v", err)
	}
	for i := range src.Data {
		if v.Data[i] != src.Data[i] {
			t.Fatalf("Sample %d: expected %f, got %f", i, src.Data[i], v.Data[i])
		}
	}

	if ShapeOf(src) != (Shape{3, 4, 5}) {
		t.Errorf("Expected file-order shape [3 4 5], got %v", ShapeOf(src))
	}
}
