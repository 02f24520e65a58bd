// Package config loads the YAML run configuration of the mpeg2stinx command
// and applies STINX_* environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/mpeg2stinx"
	"github.com/opd-ai/mpeg2stinx/deint"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/kernel"
)

// DefaultWorkers is the per-node dependency fan-out of the frame resolver.
const DefaultWorkers = 4

// File represents the complete run configuration
type File struct {
	Filter       FilterConfig       `yaml:"filter"`
	Interpolator InterpolatorConfig `yaml:"interpolator"`
	LogLevel     string             `yaml:"log_level"` // trace, debug, info, warn, error
	Workers      int                `yaml:"workers"`   // 0 for unlimited fan-out
}

// FilterConfig contains the filter options
type FilterConfig struct {
	Mode    int      `yaml:"mode"` // 0 point bob, 1 spline36, 2 nnedi3, 3 nnedi3cl
	SW      int      `yaml:"sw"`
	SH      int      `yaml:"sh"`
	Contra  bool     `yaml:"contra"`
	BlurV   *float64 `yaml:"blurv,omitempty"` // unset: 0.9 with contra, 0 without
	SStr    float64  `yaml:"sstr"`
	Scl     float64  `yaml:"scl"`
	Dither  bool     `yaml:"dither"`
	Order   int      `yaml:"order"`             // -1, 0 or 1
	DiffScl *float64 `yaml:"diffscl,omitempty"` // unset disables the temporal limiter
	Bias    string   `yaml:"bias"`              // half-range or legacy
}

// InterpolatorConfig contains the field interpolator worker settings
type InterpolatorConfig struct {
	Command    []string `yaml:"command"`
	Device     string   `yaml:"device"` // cpu or opencl
	TimeoutMs  int      `yaml:"timeout_ms"`
	Simulation bool     `yaml:"simulation"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	opts := mpeg2stinx.NewOptions()
	return &File{
		Filter: FilterConfig{
			Mode:   int(opts.Mode),
			SW:     opts.SW,
			SH:     opts.SH,
			Contra: opts.Contra,
			SStr:   opts.SStr,
			Scl:    opts.Scl,
			Order:  opts.Order,
			Bias:   opts.BiasMode.String(),
		},
		Interpolator: InterpolatorConfig{
			Device:    interfaces.DeviceCPU.String(),
			TimeoutMs: 30000,
		},
		LogLevel: "info",
		Workers:  DefaultWorkers,
	}
}

// Load reads and parses a YAML configuration file. Keys missing from the
// file keep their Default values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section, reporting all problems at once.
func Validate(cfg *File) error {
	var errs []error
	opts, err := cfg.Options()
	if err != nil {
		errs = append(errs, err)
	} else if err := opts.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.CollaboratorConfig(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", cfg.Workers))
	}
	return errors.Join(errs...)
}

// ParseBias converts a bias name to a kernel.BiasMode.
func ParseBias(name string) (kernel.BiasMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", kernel.BiasHalfRange.String():
		return kernel.BiasHalfRange, nil
	case kernel.BiasLegacy.String():
		return kernel.BiasLegacy, nil
	default:
		return 0, fmt.Errorf("unknown bias %q, want %q or %q", name, kernel.BiasHalfRange, kernel.BiasLegacy)
	}
}

// Options converts the filter section to filter options. Range checks are
// left to Options.Validate.
func (cfg *File) Options() (*mpeg2stinx.Options, error) {
	bias, err := ParseBias(cfg.Filter.Bias)
	if err != nil {
		return nil, err
	}
	f := cfg.Filter
	return &mpeg2stinx.Options{
		Mode:     deint.FilterMode(f.Mode),
		SW:       f.SW,
		SH:       f.SH,
		Contra:   f.Contra,
		BlurV:    f.BlurV,
		SStr:     f.SStr,
		Scl:      f.Scl,
		Dither:   f.Dither,
		Order:    f.Order,
		DiffScl:  f.DiffScl,
		BiasMode: bias,
	}, nil
}

// CollaboratorConfig converts the interpolator section for the collaborator factory.
func (cfg *File) CollaboratorConfig() (*interfaces.CollaboratorConfig, error) {
	device, err := interfaces.ParseDevice(cfg.Interpolator.Device)
	if err != nil {
		return nil, err
	}
	cc := &interfaces.CollaboratorConfig{
		UseSimulation:         cfg.Interpolator.Simulation,
		InterpolatorCommand:   append([]string(nil), cfg.Interpolator.Command...),
		Device:                device,
		InterpolatorTimeoutMs: cfg.Interpolator.TimeoutMs,
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return cc, nil
}

// ApplyEnvironmentOverrides updates cfg from STINX_* environment variables.
// Values that do not parse are logged and ignored.
func ApplyEnvironmentOverrides(cfg *File) {
	overrideInt("STINX_MODE", &cfg.Filter.Mode)
	overrideInt("STINX_SW", &cfg.Filter.SW)
	overrideInt("STINX_SH", &cfg.Filter.SH)
	overrideInt("STINX_ORDER", &cfg.Filter.Order)
	overrideBool("STINX_CONTRA", &cfg.Filter.Contra)

	if v := os.Getenv("STINX_DIFFSCL"); v != "" {
		diffscl, err := strconv.ParseFloat(v, 64)
		if err != nil {
			warnOverride("STINX_DIFFSCL", v, err)
		} else {
			cfg.Filter.DiffScl = &diffscl
		}
	}

	if v := os.Getenv("STINX_LOG_LEVEL"); v != "" {
		if _, err := logrus.ParseLevel(v); err != nil {
			warnOverride("STINX_LOG_LEVEL", v, err)
		} else {
			cfg.LogLevel = v
		}
	}
}

func overrideInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		warnOverride(key, v, err)
		return
	}
	*dst = n
}

func overrideBool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		warnOverride(key, v, err)
		return
	}
	*dst = b
}

func warnOverride(key, value string, err error) {
	logrus.WithFields(logrus.Fields{
		"function": "ApplyEnvironmentOverrides",
		"env_var":  key,
		"value":    value,
		"error":    err.Error(),
	}).Warn("Failed to parse environment variable, using configured value")
}
