package mpeg2stinx

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/mpeg2stinx/deint"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Default option values.
const (
	DefaultSW          = 1
	DefaultSH          = 1
	DefaultBlurV       = 0.9
	DefaultSharpen     = 2.0
	DefaultScale       = 0.25
	DefaultOrder       = -1
	contraBlurPasses   = 2
	contraBlurStrength = 1.0
)

// Options contains the filter configuration. It is read once by New.
type Options struct {
	// Mode selects the bob used for the cross field repair
	Mode deint.FilterMode
	// SW and SH are the horizontal and vertical radii of the repair
	// neighbourhood
	SW int
	SH int
	// Contra enables contra-sharpening against the source
	Contra bool
	// BlurV is the vertical blur strength applied to the repaired average.
	// nil selects DefaultBlurV when Contra is set and no blur otherwise.
	BlurV *float64
	// SStr is the sharpening strength
	SStr float64
	// Scl limits sharpening to scl times the opposite-sign source detail;
	// 0 limits it with a median against the source instead
	Scl float64
	// Dither requests dithered averaging of the two passes
	Dither bool
	// Order selects motion adaptation of the bob: -1 none, 0 progressive
	// source, 1 top field first
	Order int
	// DiffScl enables the temporal limiter with this scale when set
	DiffScl *float64
	// BiasMode selects the mid-point of difference clips
	BiasMode kernel.BiasMode
}

// NewOptions returns the default configuration.
func NewOptions() *Options {
	return &Options{
		Mode:     deint.DefaultFilterMode,
		SW:       DefaultSW,
		SH:       DefaultSH,
		Contra:   true,
		SStr:     DefaultSharpen,
		Scl:      DefaultScale,
		Order:    DefaultOrder,
		BiasMode: kernel.BiasHalfRange,
	}
}

// Float64 returns a pointer to v, for the optional fields of Options.
func Float64(v float64) *float64 {
	return &v
}

// BlurStrength resolves BlurV against Contra.
func (o *Options) BlurStrength() float64 {
	if o.BlurV != nil {
		return *o.BlurV
	}
	if o.Contra {
		return DefaultBlurV
	}
	return 0
}

// Validate checks every option, reporting all problems at once.
func (o *Options) Validate() error {
	var errs []error
	if _, err := deint.ParseFilterMode(int(o.Mode)); err != nil {
		errs = append(errs, err)
	}
	if o.SW < 0 || o.SH < 0 {
		errs = append(errs, fmt.Errorf("%w: sw and sh must both be non-negative integers, got %d and %d",
			video.ErrInvalidConfig, o.SW, o.SH))
	}
	if err := deint.ValidateOrder(o.Order); err != nil {
		errs = append(errs, err)
	}
	if o.DiffScl != nil && (*o.DiffScl < 0 || !finite(*o.DiffScl)) {
		errs = append(errs, fmt.Errorf("%w: diffscl must be a non-negative number, got %v",
			video.ErrInvalidConfig, *o.DiffScl))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"blurv", o.BlurStrength()}, {"sstr", o.SStr}, {"scl", o.Scl}} {
		if !finite(f.value) {
			errs = append(errs, fmt.Errorf("%w: %s must be finite, got %v", video.ErrInvalidConfig, f.name, f.value))
		}
	}
	if o.BiasMode != kernel.BiasHalfRange && o.BiasMode != kernel.BiasLegacy {
		errs = append(errs, fmt.Errorf("%w: bias mode %d", video.ErrInvalidConfig, int(o.BiasMode)))
	}
	if o.Dither {
		errs = append(errs, fmt.Errorf("%w: dithered averaging", video.ErrUnimplemented))
	}
	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
