// Package pipeline runs one plane request end to end: load the volume,
// map the request to array indices, extract the plane and resolve its
// labels.
package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"sharadslice/internal/models"
	"sharadslice/pkg/config"
	"sharadslice/pkg/coords"
	"sharadslice/pkg/labels"
	"sharadslice/pkg/plane"
	"sharadslice/pkg/volume"
)

// Result is everything a renderer needs for one request
type Result struct {
	// Plane is the extracted 2-D cut
	Plane *models.Plane

	// Labels annotates the plane axes and names the cut
	Labels models.LabelBundle

	// Title is "{base filename}_{sliced axis}{coordinate}"
	Title string

	// Mapping is the resolved per-axis request
	Mapping models.Mapping

	// Summary holds statistics of the plane values
	Summary plane.Summary
}

// Pipeline holds the immutable geometry a request is resolved against.
// It keeps no state between runs.
type Pipeline struct {
	// shape is the stored volume shape, [Z, Y, X]
	shape volume.Shape

	// axes are the descriptors, indexed by models.Axis
	axes [3]models.AxisDescriptor

	log logrus.FieldLogger
}

// New creates a pipeline from cfg. A nil logger discards output.
func New(cfg *config.Config, log logrus.FieldLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pipeline{
		shape: volume.Shape(cfg.Volume.Shape),
		axes:  cfg.Descriptors(),
		log:   log,
	}, nil
}

// Axes returns the axis descriptors the pipeline resolves requests against
func (p *Pipeline) Axes() [3]models.AxisDescriptor {
	return p.axes
}

// Shape returns the configured volume shape in file order
func (p *Pipeline) Shape() volume.Shape {
	return p.shape
}

// Check validates a request without touching the volume file
func (p *Pipeline) Check(req models.SliceRequest) error {
	if err := coords.CheckRequest(req, p.axes); err != nil {
		return err
	}
	return coords.CheckSingleton(req)
}

// Run loads the volume at path and resolves req against it
func (p *Pipeline) Run(path string, req models.SliceRequest) (*Result, error) {
	p.log.WithFields(logrus.Fields{
		"path":  path,
		"shape": p.shape.String(),
	}).Info("Radar volume")
	for _, a := range models.Axes {
		p.log.WithField("axis", a.String()).Infof("%s-Values: %s", a, req.Spec(a))
	}

	// Reject bad requests before reading a large file
	if err := p.Check(req); err != nil {
		return nil, err
	}

	v, err := p.Load(path)
	if err != nil {
		return nil, err
	}

	return p.Slice(v, path, req)
}

// Load reads the configured volume shape from path
func (p *Pipeline) Load(path string) (*models.Volume, error) {
	if info, err := os.Stat(path); err == nil {
		p.log.WithFields(logrus.Fields{
			"path":  path,
			"bytes": humanize.Bytes(uint64(info.Size())),
		}).Debug("Reading radar volume")
	}

	v, err := volume.Load(path, p.shape)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"samples": humanize.Comma(int64(len(v.Data))),
		"bytes":   humanize.Bytes(uint64(p.shape.Bytes())),
	}).Infof("Loaded %s", v)
	return v, nil
}

// Slice resolves req against an already loaded volume. path only names
// the plot title.
func (p *Pipeline) Slice(v *models.Volume, path string, req models.SliceRequest) (*Result, error) {
	if got := volume.ShapeOf(v); got != p.shape {
		return nil, fmt.Errorf("%w: volume is %v, pipeline expects %v", volume.ErrShapeMismatch, got, p.shape)
	}

	m, err := coords.Map(req, p.axes)
	if err != nil {
		return nil, err
	}
	for _, a := range models.Axes {
		p.log.WithFields(logrus.Fields{
			"axis":  a.String(),
			"file":  m[a].File.String(),
			"pixel": m[a].Pixel.String(),
		}).Debugf("%s: %d samples selected", a, m[a].Pixel.Len())
	}

	pl, err := plane.FromMapping(v, m)
	if err != nil {
		return nil, err
	}

	b, err := labels.Resolve(m)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Plane:   pl,
		Labels:  b,
		Title:   labels.Title(path, b),
		Mapping: m,
		Summary: plane.Stats(pl),
	}

	rows, cols := pl.Dims()
	p.log.WithFields(logrus.Fields{
		"rows":       rows,
		"cols":       cols,
		"horizontal": b.Horizontal.Text,
		"vertical":   b.Vertical.Text,
	}).Infof("Extracted plane %s", res.Title)
	p.log.WithFields(logrus.Fields{
		"min":       res.Summary.Min,
		"max":       res.Summary.Max,
		"mean":      res.Summary.Mean,
		"stddev":    res.Summary.StdDev,
		"nonfinite": res.Summary.NonFinite,
	}).Debug("Plane statistics")

	return res, nil
}
