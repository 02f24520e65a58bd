package interfaces

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
)

// ResizeParams describes a resampling request. A zero SrcWidth or
// SrcHeight selects the full source extent.
type ResizeParams struct {
	// Width and Height of the output in luma samples
	Width  int
	Height int

	// SrcLeft and SrcTop shift the sampling window in source samples
	SrcLeft float64
	SrcTop  float64

	// SrcWidth and SrcHeight size the sampling window in source samples
	SrcWidth  float64
	SrcHeight float64
}

// IResizer defines resampling and format conversion of clips.
type IResizer interface {
	// Point resamples with nearest-neighbour sampling
	Point(src graph.Node, params ResizeParams) (graph.Node, error)

	// Bilinear resamples with a two-tap linear kernel
	Bilinear(src graph.Node, params ResizeParams) (graph.Node, error)

	// Spline36 resamples with the six-tap Spline36 kernel
	Spline36(src graph.Node, params ResizeParams) (graph.Node, error)

	// Convert changes the sample format of src, keeping its dimensions
	Convert(src graph.Node, format video.Format) (graph.Node, error)
}

// FieldSelector picks which fields a field interpolator keeps.
type FieldSelector int

const (
	// FieldBottom keeps the bottom field and interpolates the top, same rate
	FieldBottom FieldSelector = iota
	// FieldTop keeps the top field and interpolates the bottom, same rate
	FieldTop
	// FieldBothBottomFirst emits both fields, bottom first, double rate
	FieldBothBottomFirst
	// FieldBoth emits both fields, top first, double rate
	FieldBoth
)

// DoublesRate reports whether the selector emits one frame per field.
func (f FieldSelector) DoublesRate() bool {
	return f == FieldBothBottomFirst || f == FieldBoth
}

// Source maps output frame n to the source frame it is built from and the
// parity of the kept field (0 for top, 1 for bottom).
func (f FieldSelector) Source(n int) (frame, parity int) {
	switch f {
	case FieldBottom:
		return n, 1
	case FieldTop:
		return n, 0
	case FieldBothBottomFirst:
		return n / 2, 1 - n%2
	default:
		return n / 2, n % 2
	}
}

// Valid reports whether f is one of the defined selectors.
func (f FieldSelector) Valid() bool {
	return f >= FieldBottom && f <= FieldBoth
}

// Device selects where a field interpolator runs.
type Device int

const (
	// DeviceCPU runs on the host processor
	DeviceCPU Device = iota
	// DeviceOpenCL runs on an OpenCL device
	DeviceOpenCL
)

// String implements fmt.Stringer.
func (d Device) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceOpenCL:
		return "opencl"
	default:
		return fmt.Sprintf("Device(%d)", int(d))
	}
}

// ParseDevice converts a device name ("cpu" or "opencl") to a Device.
func ParseDevice(name string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpu":
		return DeviceCPU, nil
	case "opencl", "cl":
		return DeviceOpenCL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDevice, name)
	}
}

// IFieldInterpolator defines neural edge-directed field interpolation.
type IFieldInterpolator interface {
	// Interpolate rebuilds full frames from fields of src
	Interpolate(src graph.Node, field FieldSelector, device Device) (graph.Node, error)
}

// IMotionDeinterlacer defines motion-adaptive recombination of a clip with
// a spatially interpolated reference.
type IMotionDeinterlacer interface {
	// Deinterlace corrects src using edeint where motion is detected.
	// order is 1 for top field first, 0 for bottom field first; mode 0
	// keeps the frame rate and mode 1 doubles it.
	Deinterlace(src, edeint graph.Node, order, mode int) (graph.Node, error)
}

// IRepairer defines the spatial repair and temporal clense family.
type IRepairer interface {
	// Repair clips each sample of src into the local range of ref
	Repair(src, ref graph.Node, mode int) (graph.Node, error)

	// Clense replaces samples with the median of prev, src and next on the
	// given planes. A nil prev or next uses the adjacent frames of src.
	Clense(src, prev, next graph.Node, planes []int) (graph.Node, error)
}

// IAverager defines weighted multi-clip averaging.
type IAverager interface {
	// Average blends clips with the given weights, normalised by their sum
	Average(clips []graph.Node, weights []float64) (graph.Node, error)
}

// Collaborators is the resolved set of collaborator implementations a
// pipeline runs with. It is built once and passed to every stage.
type Collaborators struct {
	Resizer            IResizer
	Interpolator       IFieldInterpolator
	MotionDeinterlacer IMotionDeinterlacer
	Repairer           IRepairer
	Averager           IAverager

	// Device is where the interpolator runs unless the filter mode
	// names one
	Device Device
}

// Requirement names the collaborators a configuration needs.
type Requirement uint8

const (
	// NeedResizer requires an IResizer
	NeedResizer Requirement = 1 << iota
	// NeedInterpolator requires an IFieldInterpolator
	NeedInterpolator
	// NeedMotionDeinterlacer requires an IMotionDeinterlacer
	NeedMotionDeinterlacer
	// NeedRepairer requires an IRepairer
	NeedRepairer
	// NeedAverager requires an IAverager
	NeedAverager
)

// ErrMissingCollaborator indicates a required collaborator is not set.
var ErrMissingCollaborator = fmt.Errorf("%w: missing collaborator", video.ErrInvalidConfig)

// Check reports every collaborator named by need that is not set.
func (c *Collaborators) Check(need Requirement) error {
	if c == nil {
		return fmt.Errorf("%w: collaborator set is nil", ErrMissingCollaborator)
	}
	var missing []string
	if need&NeedResizer != 0 && c.Resizer == nil {
		missing = append(missing, "resizer")
	}
	if need&NeedInterpolator != 0 && c.Interpolator == nil {
		missing = append(missing, "field interpolator")
	}
	if need&NeedMotionDeinterlacer != 0 && c.MotionDeinterlacer == nil {
		missing = append(missing, "motion deinterlacer")
	}
	if need&NeedRepairer != 0 && c.Repairer == nil {
		missing = append(missing, "repairer")
	}
	if need&NeedAverager != 0 && c.Averager == nil {
		missing = append(missing, "averager")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCollaborator, strings.Join(missing, ", "))
	}
	return nil
}

// CollaboratorConfig holds configuration for building a collaborator set.
type CollaboratorConfig struct {
	// UseSimulation selects the simulation implementations
	UseSimulation bool

	// InterpolatorCommand is the worker process serving field
	// interpolation; empty leaves the interpolator unset
	InterpolatorCommand []string

	// Device is the default interpolator device of the built set
	Device Device

	// InterpolatorTimeoutMs bounds one worker round trip
	InterpolatorTimeoutMs int
}

// Configuration errors.
var (
	// ErrInvalidTimeout indicates a non-positive interpolator timeout
	ErrInvalidTimeout = errors.New("interpolator timeout must be positive")

	// ErrInvalidDevice indicates an unknown interpolator device
	ErrInvalidDevice = errors.New("unknown interpolator device")
)

// Validate checks the configuration values.
func (c *CollaboratorConfig) Validate() error {
	if c.InterpolatorTimeoutMs <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTimeout, c.InterpolatorTimeoutMs)
	}
	if c.Device != DeviceCPU && c.Device != DeviceOpenCL {
		return fmt.Errorf("%w: %v", ErrInvalidDevice, c.Device)
	}
	return nil
}
