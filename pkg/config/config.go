// Package config provides configuration loading and management for sharadslice.
// It handles loading configuration from YAML files and provides the default
// SHARAD 3D product geometry.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sharadslice/internal/models"
)

// ErrInvalidConfig is returned by Validate for unusable settings
var ErrInvalidConfig = errors.New("invalid configuration")

// AxisConfig describes one axis of the radar volume
type AxisConfig struct {
	// Name is the display name used in plot labels
	Name string `yaml:"name"`

	// Unit is the physical unit of the axis
	Unit string `yaml:"unit"`

	// FirstPixel is the file coordinate of the first sample (LINE_FIRST_PIXEL etc.)
	FirstPixel int `yaml:"firstPixel"`

	// Start is the physical coordinate of the first sample
	Start float64 `yaml:"start"`

	// Interval is the physical spacing between samples
	Interval float64 `yaml:"interval"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Volume parameters
	Volume struct {
		// Path is the default radar volume path
		Path string `yaml:"path"`

		// Shape is the stored volume shape as [Z, Y, X]
		Shape [3]int `yaml:"shape"`

		// Label is an optional PDS label overriding shape and first pixels
		Label string `yaml:"label"`
	} `yaml:"volume"`

	// Axis metadata
	Axes struct {
		X AxisConfig `yaml:"x"`
		Y AxisConfig `yaml:"y"`
		Z AxisConfig `yaml:"z"`
	} `yaml:"axes"`

	// Output parameters
	Output struct {
		// File is the rendered plot path; empty derives it from the plot title
		File string `yaml:"file"`

		// RawFile optionally receives the bare plane as a grey image
		RawFile string `yaml:"rawFile"`

		// WidthInches and HeightInches size the rendered plot
		WidthInches  float64 `yaml:"widthInches"`
		HeightInches float64 `yaml:"heightInches"`

		// ColorbarLabel annotates the colorbar
		ColorbarLabel string `yaml:"colorbarLabel"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// PLANUM_BOREUM 3D product geometry
	cfg.Volume.Path = "./PLANUM_BOREUM_3D_TIME.DAT"
	cfg.Volume.Shape = [3]int{937, 300, 300}

	cfg.Axes.X = AxisConfig{Name: "X", Unit: "m", FirstPixel: 3101, Start: 189762, Interval: 475}
	cfg.Axes.Y = AxisConfig{Name: "Y", Unit: "m", FirstPixel: 1651, Start: -498988, Interval: 475}
	cfg.Axes.Z = AxisConfig{Name: "Z", Unit: "us", FirstPixel: 0, Start: 107.400, Interval: 0.0375}

	cfg.Output.WidthInches = 8
	cfg.Output.HeightInches = 6
	cfg.Output.ColorbarLabel = "dB"
	cfg.Output.Verbose = false

	return cfg
}

// Axis returns the configuration of axis a
func (c *Config) Axis(a models.Axis) *AxisConfig {
	switch a {
	case models.AxisX:
		return &c.Axes.X
	case models.AxisY:
		return &c.Axes.Y
	case models.AxisZ:
		return &c.Axes.Z
	}
	return nil
}

// AxisSize returns the number of samples along axis a
func (c *Config) AxisSize(a models.Axis) int {
	// Shape is stored slowest axis first
	return c.Volume.Shape[2-int(a)]
}

// SetAxisSize updates the stored shape for axis a
func (c *Config) SetAxisSize(a models.Axis, size int) {
	c.Volume.Shape[2-int(a)] = size
}

// Descriptors returns the axis descriptors indexed by models.Axis.
// The returned array is a copy; later changes to c do not affect it.
func (c *Config) Descriptors() [3]models.AxisDescriptor {
	var out [3]models.AxisDescriptor
	for _, a := range models.Axes {
		ac := c.Axis(a)
		out[a] = models.AxisDescriptor{
			Axis:       a,
			Name:       ac.Name,
			Unit:       ac.Unit,
			FirstPixel: ac.FirstPixel,
			Start:      ac.Start,
			Interval:   ac.Interval,
			Size:       c.AxisSize(a),
		}
	}
	return out
}

// Validate checks that the configuration fully describes a volume
func (c *Config) Validate() error {
	for i, n := range c.Volume.Shape {
		if n <= 0 {
			return fmt.Errorf("%w: volume shape[%d] must be positive, got %d", ErrInvalidConfig, i, n)
		}
	}
	for _, a := range models.Axes {
		ac := c.Axis(a)
		if ac.Name == "" {
			return fmt.Errorf("%w: axis %s has no name", ErrInvalidConfig, a)
		}
		if ac.FirstPixel < 0 {
			return fmt.Errorf("%w: axis %s first pixel must be non-negative, got %d", ErrInvalidConfig, a, ac.FirstPixel)
		}
	}
	if c.Output.WidthInches <= 0 || c.Output.HeightInches <= 0 {
		return fmt.Errorf("%w: output size must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
