package testing

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/video"
)

// SimulatedInterpolator implements interfaces.IFieldInterpolator by line
// doubling the kept field.
type SimulatedInterpolator struct {
	config interfaces.CollaboratorConfig
}

// NewSimulatedInterpolator creates a simulated field interpolator with a
// zero configuration.
func NewSimulatedInterpolator() *SimulatedInterpolator {
	return NewSimulatedInterpolatorWithConfig(nil)
}

// NewSimulatedInterpolatorWithConfig creates a simulated field interpolator
// that records the configuration it was built with.
func NewSimulatedInterpolatorWithConfig(config *interfaces.CollaboratorConfig) *SimulatedInterpolator {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	s := &SimulatedInterpolator{}
	if config != nil {
		s.config = *config
		s.config.InterpolatorCommand = append([]string(nil), config.InterpolatorCommand...)
	}
	logrus.WithFields(logrus.Fields{
		"function":             "NewSimulatedInterpolator",
		"device":               s.config.Device.String(),
		"interpolator_timeout": s.config.InterpolatorTimeoutMs,
	}).Info("Creating simulated field interpolator for testing")
	return s
}

// Config returns the configuration the interpolator was built with.
func (s *SimulatedInterpolator) Config() interfaces.CollaboratorConfig {
	return s.config
}

// Interpolate implements interfaces.IFieldInterpolator.
func (s *SimulatedInterpolator) Interpolate(src graph.Node, field interfaces.FieldSelector, device interfaces.Device) (graph.Node, error) {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function":             "SimulatedInterpolator.Interpolate",
		"source":               src.Name(),
		"field":                field,
		"device":               device.String(),
		"interpolator_timeout": s.config.InterpolatorTimeoutMs,
	}).Info("Simulating field interpolation")

	if !field.Valid() {
		return nil, fmt.Errorf("%w: field selector %d", video.ErrInvalidConfig, field)
	}
	info := src.Info()
	if field.DoublesRate() {
		info.NumFrames *= 2
	}
	info.FieldOrder = video.Progressive
	return &lineDoubler{Base: graph.NewBase("SimulatedInterpolator", info), src: src, field: field}, nil
}

type lineDoubler struct {
	graph.Base
	src   graph.Node
	field interfaces.FieldSelector
}

func (l *lineDoubler) Requests(n int) []graph.Request {
	frame, _ := l.field.Source(n)
	return []graph.Request{{Node: l.src, N: frame}}
}

func (l *lineDoubler) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	_, parity := l.field.Source(n)
	src := frames[0]
	out := video.NewFrameLike(src)
	for i, p := range out.Planes {
		for y := 0; y < p.Height; y++ {
			// the kept row of the pair this row belongs to
			ky := y&^1 + parity
			if ky >= p.Height {
				ky = p.Height - 1
			}
			p.CopyRow(y, src.Planes[i], ky)
		}
	}
	return out, nil
}

// SimulatedMotionDeinterlacer implements interfaces.IMotionDeinterlacer by
// trusting the spatial reference everywhere.
type SimulatedMotionDeinterlacer struct{}

// NewSimulatedMotionDeinterlacer creates a simulated motion deinterlacer.
func NewSimulatedMotionDeinterlacer() *SimulatedMotionDeinterlacer {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedMotionDeinterlacer",
	}).Info("Creating simulated motion deinterlacer for testing")
	return &SimulatedMotionDeinterlacer{}
}

// Deinterlace implements interfaces.IMotionDeinterlacer.
func (s *SimulatedMotionDeinterlacer) Deinterlace(src, edeint graph.Node, order, mode int) (graph.Node, error) {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function": "SimulatedMotionDeinterlacer.Deinterlace",
		"source":   src.Name(),
		"order":    order,
		"mode":     mode,
	}).Info("Simulating motion adaptive deinterlacing")

	if order < 0 || order > 1 || mode < 0 || mode > 1 {
		return nil, fmt.Errorf("%w: order %d mode %d", video.ErrInvalidConfig, order, mode)
	}
	if !src.Info().SameFormat(edeint.Info()) {
		return nil, video.MismatchError("edeint format", edeint.Info().Format, src.Info().Format)
	}
	return edeint, nil
}
