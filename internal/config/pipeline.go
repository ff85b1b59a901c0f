// Package config loads and validates the downscaling pipeline configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/airgrid-data/downscale/internal/downscale"
)

// DefaultConfigPath is the path to the canonical pipeline defaults file,
// the single source of truth for default control values.
const DefaultConfigPath = "config/pipeline.defaults.json"

// PipelineConfig represents the user-facing pipeline controls. The schema
// matches the /api/pipeline/params endpoint so the same JSON serves both
// startup configuration and runtime updates. All fields are pointers so a
// partial file merges over defaults.
type PipelineConfig struct {
	// Preprocessing
	Sigma       *float64 `json:"sigma,omitempty"`
	AddNoise    *bool    `json:"add_noise,omitempty"`
	NoiseStdDev *float64 `json:"noise_std_dev,omitempty"`

	// Resampling
	Factor *int    `json:"factor,omitempty"`
	Method *string `json:"method,omitempty"`

	// Display and export
	VMin          *float64 `json:"vmin,omitempty"`
	VMax          *float64 `json:"vmax,omitempty"`
	Palette       *string  `json:"palette,omitempty"`
	HistogramBins *int     `json:"histogram_bins,omitempty"`
}

// EmptyPipelineConfig returns a config with every field unset; the Get*
// accessors then supply defaults.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The path must
// have a .json extension and the file must be under 1MB. Fields omitted from
// the file keep their defaults, so partial configs are safe.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every field that is set.
func (c *PipelineConfig) Validate() error {
	if c.Sigma != nil && *c.Sigma < 0 {
		return fmt.Errorf("sigma must be non-negative, got %f", *c.Sigma)
	}
	if c.NoiseStdDev != nil && *c.NoiseStdDev < 0 {
		return fmt.Errorf("noise_std_dev must be non-negative, got %f", *c.NoiseStdDev)
	}
	if c.Factor != nil {
		if *c.Factor < downscale.MinFactor || *c.Factor > downscale.MaxFactor {
			return fmt.Errorf("factor must be in [%d, %d], got %d",
				downscale.MinFactor, downscale.MaxFactor, *c.Factor)
		}
	}
	if c.Method != nil {
		if _, err := downscale.ParseMethod(*c.Method); err != nil {
			return err
		}
	}
	if c.VMin != nil && c.VMax != nil && *c.VMin >= *c.VMax {
		return fmt.Errorf("vmin (%f) must be less than vmax (%f)", *c.VMin, *c.VMax)
	}
	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be at least 1, got %d", *c.HistogramBins)
	}
	return nil
}

// Merge overlays every set field of other onto a copy of c.
func (c *PipelineConfig) Merge(other *PipelineConfig) *PipelineConfig {
	out := *c
	if other == nil {
		return &out
	}
	if other.Sigma != nil {
		out.Sigma = other.Sigma
	}
	if other.AddNoise != nil {
		out.AddNoise = other.AddNoise
	}
	if other.NoiseStdDev != nil {
		out.NoiseStdDev = other.NoiseStdDev
	}
	if other.Factor != nil {
		out.Factor = other.Factor
	}
	if other.Method != nil {
		out.Method = other.Method
	}
	if other.VMin != nil {
		out.VMin = other.VMin
	}
	if other.VMax != nil {
		out.VMax = other.VMax
	}
	if other.Palette != nil {
		out.Palette = other.Palette
	}
	if other.HistogramBins != nil {
		out.HistogramBins = other.HistogramBins
	}
	return &out
}

// GetSigma returns the smoothing sigma or the default.
func (c *PipelineConfig) GetSigma() float64 {
	if c.Sigma == nil {
		return 1.0
	}
	return *c.Sigma
}

// GetAddNoise returns whether synthetic noise is added, default false.
func (c *PipelineConfig) GetAddNoise() bool {
	if c.AddNoise == nil {
		return false
	}
	return *c.AddNoise
}

// GetNoiseStdDev returns the noise standard deviation or the default.
func (c *PipelineConfig) GetNoiseStdDev() float64 {
	if c.NoiseStdDev == nil {
		return 0.05
	}
	return *c.NoiseStdDev
}

// GetFactor returns the magnification factor or the default.
func (c *PipelineConfig) GetFactor() int {
	if c.Factor == nil {
		return 4
	}
	return *c.Factor
}

// GetMethod returns the parsed resampling method, defaulting to bilinear.
func (c *PipelineConfig) GetMethod() downscale.Method {
	if c.Method == nil {
		return downscale.MethodBilinear
	}
	m, err := downscale.ParseMethod(*c.Method)
	if err != nil {
		return downscale.MethodBilinear
	}
	return m
}

// GetVMin returns the display range minimum or the default.
func (c *PipelineConfig) GetVMin() float64 {
	if c.VMin == nil {
		return 0.0
	}
	return *c.VMin
}

// GetVMax returns the display range maximum or the default.
func (c *PipelineConfig) GetVMax() float64 {
	if c.VMax == nil {
		return 1.0
	}
	return *c.VMax
}

// GetPalette returns the palette name or the default.
func (c *PipelineConfig) GetPalette() string {
	if c.Palette == nil {
		return "heat"
	}
	return *c.Palette
}

// GetHistogramBins returns the histogram bin count or the default.
func (c *PipelineConfig) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return 50
	}
	return *c.HistogramBins
}

// Params converts the config to the explicit parameter struct the pipeline
// consumes.
func (c *PipelineConfig) Params() downscale.Params {
	return downscale.Params{
		Sigma:  c.GetSigma(),
		Factor: c.GetFactor(),
		Method: c.GetMethod(),
	}
}
