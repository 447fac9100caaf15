// Package config provides configuration types and defaults for vpsnr.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/five82/vpsnr/internal/aggregate"
)

// Default constants
const (
	// DefaultWidth is the comparison width frames are resized to.
	DefaultWidth = 256

	// DefaultHeight is the comparison height frames are resized to.
	DefaultHeight = 256

	// DefaultMetricMode pools per-frame PSNR with the arithmetic mean.
	DefaultMetricMode = "mean"

	// DefaultFFmpegPath is the ffmpeg binary used for decoding.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultFFprobePath is the ffprobe binary used for stream probing.
	DefaultFFprobePath = "ffprobe"

	// MaxDimension bounds the comparison resolution.
	MaxDimension = 16384
)

// Config holds all configuration for a comparison run.
type Config struct {
	// Inputs and output
	GTVideo    string
	PredVideo  string
	OutputFile string // Optional JSON result path

	// Comparison settings
	Width      int
	Height     int
	MetricMode string

	// External tools
	FFmpegPath  string
	FFprobePath string

	// Output options
	Verbose    bool
	LogFile    string
	NoProgress bool
	EventsFile string // Optional NDJSON events path
}

// Environment holds settings read from VPSNR_* variables. Unset variables
// leave their field at the zero value, which ApplyEnvironment skips.
type Environment struct {
	FFmpegPath  string `env:"VPSNR_FFMPEG"`
	FFprobePath string `env:"VPSNR_FFPROBE"`
	Width       int    `env:"VPSNR_WIDTH"`
	Height      int    `env:"VPSNR_HEIGHT"`
	MetricMode  string `env:"VPSNR_METRIC_MODE"`
	LogFile     string `env:"VPSNR_LOG_FILE"`
}

// LoadEnvironment parses VPSNR_* variables from the process environment.
func LoadEnvironment() (Environment, error) {
	return loadEnvironment(env.Options{}, os.LookupEnv)
}

// LoadEnvironmentFrom parses VPSNR_* variables from the given map.
func LoadEnvironmentFrom(vars map[string]string) (Environment, error) {
	return loadEnvironment(env.Options{Environment: vars}, func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
}

func loadEnvironment(opts env.Options, lookup func(string) (string, bool)) (Environment, error) {
	var e Environment
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Environment{}, fmt.Errorf("%w: %v", ErrInvalidEnvironment, err)
	}

	// A dimension that is set must be usable; zero only means "unset".
	for _, d := range []struct {
		key   string
		value int
	}{
		{"VPSNR_WIDTH", e.Width},
		{"VPSNR_HEIGHT", e.Height},
	} {
		if raw, ok := lookup(d.key); ok && raw != "" && d.value <= 0 {
			return Environment{}, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidEnvironment, d.key, d.value)
		}
	}
	return e, nil
}

// NewConfig creates a new Config with default values.
func NewConfig(gtVideo, predVideo string) *Config {
	return &Config{
		GTVideo:     gtVideo,
		PredVideo:   predVideo,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		MetricMode:  DefaultMetricMode,
		FFmpegPath:  DefaultFFmpegPath,
		FFprobePath: DefaultFFprobePath,
	}
}

// ApplyEnvironment copies environment settings onto the config.
func (c *Config) ApplyEnvironment(e Environment) {
	if e.FFmpegPath != "" {
		c.FFmpegPath = e.FFmpegPath
	}
	if e.FFprobePath != "" {
		c.FFprobePath = e.FFprobePath
	}
	if e.Width > 0 {
		c.Width = e.Width
	}
	if e.Height > 0 {
		c.Height = e.Height
	}
	if e.MetricMode != "" {
		c.MetricMode = e.MetricMode
	}
	if e.LogFile != "" {
		c.LogFile = e.LogFile
	}
}

// Mode returns the parsed aggregation mode.
func (c *Config) Mode() (aggregate.Mode, error) {
	m, err := aggregate.ParseMode(c.MetricMode)
	if err != nil {
		return aggregate.Mode{}, fmt.Errorf("%w: %v", ErrInvalidMetricMode, err)
	}
	return m, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GTVideo == "" {
		return fmt.Errorf("%w: --gt_video", ErrMissingPath)
	}

	if c.PredVideo == "" {
		return fmt.Errorf("%w: --pred_video", ErrMissingPath)
	}

	if c.Width <= 0 || c.Width > MaxDimension || c.Height <= 0 || c.Height > MaxDimension {
		return fmt.Errorf("%w: must be 1-%d, got %dx%d", ErrInvalidDimensions, MaxDimension, c.Width, c.Height)
	}

	if _, err := c.Mode(); err != nil {
		return err
	}

	return nil
}
