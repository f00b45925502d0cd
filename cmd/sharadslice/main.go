package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"

	"sharadslice/internal/models"
	"sharadslice/pkg/config"
	"sharadslice/pkg/labels"
	"sharadslice/pkg/pipeline"
	"sharadslice/pkg/visualization"
)

const (
	prog = "SHARAD 3D Plane Viewer"
	vers = "1.0"
)

type opts struct {
	configPath string
	labelPath  string
	volumePath string
	x, y, z    string
	output     string
	raw        string
	verbose    bool

	writeConfig string
}

func parseopts() opts {
	help := getopt.BoolLong("help", 'h', "print this help text")

	o := opts{
		configPath: "sharadslice.yaml",
		x:          models.AllKeyword,
		y:          models.AllKeyword,
		z:          models.AllKeyword,
	}

	getopt.FlagLong(&o.configPath, "config", 'c', "YAML configuration file. Defaults apply when it does not exist", "file")
	getopt.FlagLong(&o.labelPath, "label", 'l', "PDS label overriding volume shape and first pixels", "file")
	getopt.FlagLong(&o.volumePath, "rvp", 0, "Path to the radar volume", "path")
	getopt.FlagLong(&o.x, "xv", 0, "X-value slice. Integer or all", "value")
	getopt.FlagLong(&o.y, "yv", 0, "Y-value slice. Integer or all", "value")
	getopt.FlagLong(&o.z, "zv", 0, "Z-value slice. Integer or all", "value")
	getopt.FlagLong(&o.output, "output", 'o', "Rendered PNG. Defaults to <title>.png", "file")
	getopt.FlagLong(&o.raw, "raw", 0, "Also save the bare plane as a grey .png or .jpg", "file")
	getopt.FlagLong(&o.verbose, "verbose", 'v', "Verbose logging")
	getopt.FlagLong(&o.writeConfig, "write-config", 0, "Write the default configuration to file and exit", "file")

	getopt.SetParameters("")
	getopt.Parse()

	if *help {
		getopt.Usage()
		os.Exit(0)
	}
	return o
}

func parseRequest(o opts) (models.SliceRequest, error) {
	var req models.SliceRequest
	var err error
	if req.X, err = models.ParseSliceSpec(o.x); err != nil {
		return req, err
	}
	if req.Y, err = models.ParseSliceSpec(o.y); err != nil {
		return req, err
	}
	if req.Z, err = models.ParseSliceSpec(o.z); err != nil {
		return req, err
	}
	return req, nil
}

func main() {
	o := parseopts()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if o.writeConfig != "" {
		if err := config.CreateDefaultConfigFile(o.writeConfig); err != nil {
			log.WithError(err).Fatal("Failed to write configuration")
		}
		log.WithField("file", o.writeConfig).Info("Default configuration written")
		return
	}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if o.verbose || cfg.Output.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	log.Infof("%s %s", prog, vers)

	labelPath := cfg.Volume.Label
	if o.labelPath != "" {
		labelPath = o.labelPath
	}
	if labelPath != "" {
		if err := cfg.LoadLabel(labelPath); err != nil {
			log.WithError(err).Fatal("Failed to apply label")
		}
		log.WithField("label", labelPath).Info("Volume geometry read from label")
	}

	volumePath := cfg.Volume.Path
	if o.volumePath != "" {
		volumePath = o.volumePath
	}

	req, err := parseRequest(o)
	if err != nil {
		log.WithError(err).Fatal("Invalid slice value")
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	if err := p.Check(req); err != nil {
		log.WithError(err).Fatal("Invalid plane request")
	}
	if _, err := os.Stat(volumePath); errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", volumePath).Fatal("Radar volume not found. Please check your path.")
	}

	res, err := p.Run(volumePath, req)
	if err != nil {
		log.WithError(err).Fatal("Plane extraction failed")
	}
	log.WithFields(logrus.Fields{
		"axis":     res.Labels.SlicedName,
		"physical": labels.FormatCoordinate(res.Labels.SlicedPhysical),
	}).Infof("Sliced at %s", res.Title)

	output := cfg.Output.File
	if o.output != "" {
		output = o.output
	}
	if output == "" {
		output = res.Title + ".png"
	}

	viewOpts := visualization.DefaultOptions()
	viewOpts.Width = vg.Length(cfg.Output.WidthInches) * vg.Inch
	viewOpts.Height = vg.Length(cfg.Output.HeightInches) * vg.Inch
	viewOpts.ColorbarLabel = cfg.Output.ColorbarLabel
	viewer := visualization.NewViewer(viewOpts)

	if err := viewer.SavePlot(res.Plane, res.Labels, res.Title, output); err != nil {
		log.WithError(err).Fatal("Failed to render plane")
	}
	log.WithField("file", output).Info("Plot saved")

	raw := cfg.Output.RawFile
	if o.raw != "" {
		raw = o.raw
	}
	if raw != "" {
		if err := viewer.SaveSlice(res.Plane, raw); err != nil {
			log.WithError(err).Fatal("Failed to save plane image")
		}
		log.WithField("file", raw).Info("Plane image saved")
	}
}
