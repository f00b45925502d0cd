package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"sharadslice/internal/models"
	"sharadslice/pkg/plane"
)

// Options controls the rendered figure
type Options struct {
	// Width and Height size the whole figure
	Width  vg.Length
	Height vg.Length

	// ColorbarWidth is the horizontal space reserved for the colorbar
	ColorbarWidth vg.Length

	// ColorbarLabel annotates the colorbar
	ColorbarLabel string

	// Colors is the number of grey levels used by the heat map
	Colors int
}

// DefaultOptions returns an 8x6 inch figure with a "dB" colorbar
func DefaultOptions() Options {
	return Options{
		Width:         8 * vg.Inch,
		Height:        6 * vg.Inch,
		ColorbarWidth: 1.2 * vg.Inch,
		ColorbarLabel: "dB",
		Colors:        256,
	}
}

// Viewer renders extracted planes
type Viewer struct {
	opts Options
}

// NewViewer creates a viewer with the given options
func NewViewer(opts Options) *Viewer {
	if opts.Colors <= 1 {
		opts.Colors = 256
	}
	return &Viewer{opts: opts}
}

// planeGrid adapts a plane to plotter.GridXYZ using physical coordinates
type planeGrid struct {
	p      *models.Plane
	labels models.LabelBundle
}

func (g planeGrid) Dims() (c, r int) {
	r, c = g.p.Dims()
	return c, r
}

func (g planeGrid) Z(c, r int) float64 {
	return g.p.Values.At(r, c)
}

func (g planeGrid) X(c int) float64 {
	_, cols := g.p.Dims()
	return coordinate(g.labels.Horizontal, c, cols)
}

func (g planeGrid) Y(r int) float64 {
	rows, _ := g.p.Dims()
	return coordinate(g.labels.Vertical, r, rows)
}

// coordinate interpolates the physical coordinate of index i of n
func coordinate(l models.AxisLabel, i, n int) float64 {
	if n <= 1 {
		return l.Lower + float64(i)
	}
	return l.Lower + (l.Upper-l.Lower)*float64(i)/float64(n-1)
}

// grayMap returns a black-to-white colormap spanning [min, max]
func grayMap(min, max float64) (palette.ColorMap, error) {
	cm, err := moreland.NewLuminance([]color.Color{color.Black, color.White})
	if err != nil {
		return nil, err
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return cm, nil
}

// grayPalette returns n grey levels. The map spans [0, n-1] so that every
// palette step lands exactly on an integer.
func grayPalette(n int) (palette.Palette, error) {
	cm, err := grayMap(0, float64(n-1))
	if err != nil {
		return nil, err
	}
	p, ok := cm.(interface{ Palette(int) palette.Palette })
	if !ok {
		return nil, fmt.Errorf("colormap %T does not provide a palette", cm)
	}
	return p.Palette(n), nil
}

// Plots builds the heat map plot and its colorbar plot. The grey scale
// spans the finite samples; -Inf and +Inf are drawn black and white, NaN
// is left transparent.
func (v *Viewer) Plots(p *models.Plane, b models.LabelBundle, title string) (*plot.Plot, *plot.Plot, error) {
	rows, cols := p.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, fmt.Errorf("cannot render empty plane")
	}

	s := plane.Stats(p)
	lo, hi := s.Min, s.Max
	if !s.Finite() {
		lo, hi = 0, 0
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	cm, err := grayMap(lo, hi)
	if err != nil {
		return nil, nil, err
	}
	pal, err := grayPalette(v.opts.Colors)
	if err != nil {
		return nil, nil, err
	}

	hm := plotter.NewHeatMap(planeGrid{p: p, labels: b}, pal)
	hm.Min, hm.Max = lo, hi
	hm.Underflow = color.Black
	hm.Overflow = color.White
	hm.NaN = color.Transparent
	hm.Rasterized = true

	heat := plot.New()
	heat.Title.Text = title
	heat.X.Label.Text = b.Horizontal.Text
	heat.Y.Label.Text = b.Vertical.Text
	// Row 0 at the top, as in an image display
	heat.Y.Scale = plot.InvertedScale{Normalizer: heat.Y.Scale}
	heat.Add(hm)

	bar := plot.New()
	bar.HideX()
	bar.Y.Label.Text = v.opts.ColorbarLabel
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: v.opts.Colors})

	return heat, bar, nil
}

// Render draws the plane with labels, title and colorbar as a PNG to w
func (v *Viewer) Render(w io.Writer, p *models.Plane, b models.LabelBundle, title string) error {
	heat, bar, err := v.Plots(p, b, title)
	if err != nil {
		return err
	}

	img := vgimg.New(v.opts.Width, v.opts.Height)
	dc := draw.New(img)

	heat.Draw(draw.Crop(dc, 0, -v.opts.ColorbarWidth, 0, 0))
	bar.Draw(draw.Crop(dc, v.opts.Width-v.opts.ColorbarWidth, 0, 0, 0))

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode plot: %w", err)
	}
	return nil
}

// SavePlot renders the plane to a PNG file
func (v *Viewer) SavePlot(p *models.Plane, b models.LabelBundle, title, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := v.Render(file, p, b, title); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// PlaneImage converts a plane to a 16-bit grey image, stretching the
// finite value range to full scale. -Inf and NaN are black, +Inf is white.
// Row 0 is the top of the image.
func PlaneImage(p *models.Plane) *image.Gray16 {
	rows, cols := p.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))

	s := plane.Stats(p)
	lo, span := s.Min, s.Max-s.Min
	if !s.Finite() {
		lo, span = 0, 1
	}
	if span == 0 {
		span = 1
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			n := (p.Values.At(y, x) - lo) / span
			if math.IsNaN(n) {
				n = 0
			}
			value := uint16(math.Max(0, math.Min(65535, n*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// SaveSlice saves the bare plane as a grey image; the format follows the
// file extension (.png, otherwise JPEG)
func (v *Viewer) SaveSlice(p *models.Plane, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	img := PlaneImage(p)
	if strings.EqualFold(filepath.Ext(filename), ".png") {
		return png.Encode(file, img)
	}
	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}
