// Package volume reads radar datacubes stored as flat little-endian
// float32 arrays with no header.
package volume

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"sharadslice/internal/models"
)

var (
	// ErrFileNotFound is returned when the volume path does not exist
	ErrFileNotFound = errors.New("radar volume not found")

	// ErrShapeMismatch is returned when the file size disagrees with the declared shape
	ErrShapeMismatch = errors.New("volume size does not match shape")
)

const sampleBytes = 4

// Shape is a stored volume shape in file order [Z, Y, X]
type Shape [3]int

// Elements returns the number of samples described by the shape
func (s Shape) Elements() int {
	return s[0] * s[1] * s[2]
}

// Bytes returns the file size described by the shape
func (s Shape) Bytes() int64 {
	return int64(s.Elements()) * sampleBytes
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d %d %d]", s[0], s[1], s[2])
}

// Load reads the volume at path. shape is given in file order [Z, Y, X];
// the returned volume is indexed [X, Y, Z].
func Load(path string, shape Shape) (*models.Volume, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open volume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat volume: %w", err)
	}
	if info.Size() != shape.Bytes() {
		return nil, fmt.Errorf("%w: %s holds %d bytes, shape %v needs %d",
			ErrShapeMismatch, path, info.Size(), shape, shape.Bytes())
	}

	v, err := Read(f, shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Read decodes a volume of the given shape from r. r must hold exactly
// shape.Elements() samples.
func Read(r io.Reader, shape Shape) (*models.Volume, error) {
	for i, n := range shape {
		if n <= 0 {
			return nil, fmt.Errorf("%w: dimension %d of %v is not positive", ErrShapeMismatch, i, shape)
		}
	}

	v := models.NewVolume(shape[2], shape[1], shape[0])
	br := bufio.NewReaderSize(r, 1<<20)
	buf := make([]byte, sampleBytes*shape[2])

	// One X row at a time
	for row := 0; row < shape[0]*shape[1]; row++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: data ends after %d of %d samples",
					ErrShapeMismatch, row*shape[2], shape.Elements())
			}
			return nil, fmt.Errorf("failed to read volume: %w", err)
		}
		dst := v.Data[row*shape[2] : (row+1)*shape[2]]
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*sampleBytes:]))
		}
	}

	// Trailing bytes mean the shape is too small
	var probe [1]byte
	if n, _ := br.Read(probe[:]); n > 0 {
		return nil, fmt.Errorf("%w: data continues past %d samples", ErrShapeMismatch, shape.Elements())
	}

	return v, nil
}

// Write encodes v in the flat [Z, Y, X] little-endian float32 layout
func Write(w io.Writer, v *models.Volume) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	var buf [sampleBytes]byte
	for _, s := range v.Data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(s))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("failed to write volume: %w", err)
		}
	}
	return bw.Flush()
}

// Save writes v to path
func Save(path string, v *models.Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ShapeOf returns the file-order shape of v
func ShapeOf(v *models.Volume) Shape {
	return Shape{v.ZSize, v.YSize, v.XSize}
}
