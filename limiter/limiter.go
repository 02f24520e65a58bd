// Package limiter bounds how far a filtered clip may move away from its
// source, using the temporal change of a reference as the budget.
package limiter

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/field"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Field difference morphology: the per-field change is dilated two pixels
// horizontally and one vertically before it becomes a budget.
const (
	expandW = 2
	expandH = 1
)

// FieldDifference returns the change budget of clip against the next frame
// of reference. Each output frame is gray at the size of clip; both of its
// fields hold the smaller of the two fields' dilated change, where a
// field's change is the largest absolute difference across planes.
func FieldDifference(clip, reference graph.Node) (graph.Node, error) {
	if err := graph.RequireSameFormat(clip, reference); err != nil {
		return nil, err
	}
	adj := field.Shift(reference, 1)

	sepClip, err := field.SeparateRows(clip)
	if err != nil {
		return nil, err
	}
	sepAdj, err := field.SeparateRows(adj)
	if err != nil {
		return nil, err
	}

	info := sepClip.Info()
	info.Format = info.Format.Gray()
	diff := graph.NewMap("FieldDiff", info, func(_ int, frames []*video.Frame) (*video.Frame, error) {
		d, err := kernel.Diff(frames[0], frames[1])
		if err != nil {
			return nil, err
		}
		return kernel.MaxPlanes(d), nil
	}, sepClip, sepAdj)

	paired, err := field.Binary("FieldMin", field.SelectEven(diff), field.SelectOdd(diff), kernel.Min)
	if err != nil {
		return nil, err
	}
	expanded := field.ExpandMulti(paired, expandW, expandH, false)

	doubled, err := field.Interleave(expanded, expanded)
	if err != nil {
		return nil, err
	}
	return field.WeaveRows(doubled), nil
}

// TempLimit keeps flt within diffscl times the field difference of clip
// against reference: every sample ends up in
// [clip - floor(diffscl*diff), clip + floor(diffscl*diff)], taking flt's
// value when it is already inside.
func TempLimit(clip, flt, reference graph.Node, diffscl float64) (graph.Node, error) {
	if diffscl < 0 {
		return nil, fmt.Errorf("%w: diffscl must be non-negative, got %v", video.ErrInvalidConfig, diffscl)
	}
	if err := limits.ValidateClip(clip.Info()); err != nil {
		return nil, fmt.Errorf("temporal limit of %s: %w", clip.Name(), err)
	}
	if err := graph.RequireSameFormat(clip, flt, reference); err != nil {
		return nil, err
	}
	budget, err := FieldDifference(clip, reference)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "TempLimit",
		"clip":      clip.Name(),
		"filtered":  flt.Name(),
		"reference": reference.Name(),
		"diffscl":   diffscl,
	}).Debug("Building temporal limiter")

	return graph.NewMap("TempLimit", flt.Info(), func(_ int, frames []*video.Frame) (*video.Frame, error) {
		src, bound, filtered := frames[0], frames[1], frames[2]
		low, err := kernel.Offset(src, bound, diffscl, -1)
		if err != nil {
			return nil, err
		}
		high, err := kernel.Offset(src, bound, diffscl, 1)
		if err != nil {
			return nil, err
		}
		return kernel.Median3(low, high, filtered, true)
	}, clip, budget, flt), nil
}
