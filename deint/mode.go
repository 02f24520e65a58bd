// Package deint provides the bob deinterlacers the comb repair is built on:
// point and Spline36 line doubling, neural field interpolation, and
// optional motion adaptation of the result.
package deint

import (
	"fmt"

	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/video"
)

// FilterMode selects the bob strategy.
type FilterMode int

const (
	// PointBob doubles every field by line repetition
	PointBob FilterMode = iota
	// Spline36Bob resamples every field to full height with Spline36
	Spline36Bob
	// Nnedi3 uses the neural field interpolator on the collaborator set's
	// device, the CPU unless configured otherwise
	Nnedi3
	// Nnedi3CL uses the neural field interpolator on an OpenCL device
	Nnedi3CL
)

// DefaultFilterMode is the strategy used when none is configured.
const DefaultFilterMode = Spline36Bob

// ParseFilterMode converts an integer code to a FilterMode.
func ParseFilterMode(code int) (FilterMode, error) {
	switch FilterMode(code) {
	case PointBob, Spline36Bob, Nnedi3, Nnedi3CL:
		return FilterMode(code), nil
	default:
		return 0, fmt.Errorf("%w: mode must be 0, 1, 2, or 3, got %d", video.ErrInvalidConfig, code)
	}
}

// String returns the strategy name.
func (m FilterMode) String() string {
	switch m {
	case PointBob:
		return "PointBob"
	case Spline36Bob:
		return "Spline36Bob"
	case Nnedi3:
		return "Nnedi3"
	case Nnedi3CL:
		return "Nnedi3CL"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// Requirements returns the collaborators the strategy needs.
func (m FilterMode) Requirements() interfaces.Requirement {
	switch m {
	case Nnedi3, Nnedi3CL:
		return interfaces.NeedInterpolator
	default:
		return interfaces.NeedResizer
	}
}

// ValidateOrder checks a motion adaptation order.
func ValidateOrder(order int) error {
	if order < -1 || order > 1 {
		return fmt.Errorf("%w: order must be -1, 0 or 1, got %d", video.ErrInvalidConfig, order)
	}
	return nil
}
