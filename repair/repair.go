// Package repair removes combing by clamping each field of a clip against
// a bob of the opposite field.
package repair

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/deint"
	"github.com/opd-ai/mpeg2stinx/field"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// CrossFieldRepair2 repairs src against bobbed, a double-rate bob of src.
// A nil bobbed uses a Spline36 bob. With sw = sh = 1 each frame is clamped
// into the 3x3 range of the even and odd bob frames; otherwise it is the
// median of itself and the dilated and eroded bob. The top field of each
// output frame comes from the odd repair and the bottom field from the
// even one.
func CrossFieldRepair2(src, bobbed graph.Node, sw, sh int, processChroma bool, collab *interfaces.Collaborators) (graph.Node, error) {
	if err := limits.ValidateClip(src.Info()); err != nil {
		return nil, fmt.Errorf("cross field repair of %s: %w", src.Name(), err)
	}
	if sw < 0 || sh < 0 {
		return nil, fmt.Errorf("%w: sw and sh must both be non-negative, got %d and %d", video.ErrInvalidConfig, sw, sh)
	}
	rangeRepair := sw == 1 && sh == 1
	need := interfaces.NeedResizer
	if rangeRepair {
		need |= interfaces.NeedRepairer
	}
	if err := collab.Check(need); err != nil {
		return nil, fmt.Errorf("cross field repair: %w", err)
	}

	var err error
	if bobbed == nil {
		if bobbed, err = deint.Spline36BobClip(src, collab.Resizer, processChroma); err != nil {
			return nil, fmt.Errorf("cross field repair bob: %w", err)
		}
	}
	if bobbed, err = collab.Resizer.Convert(bobbed, src.Info().Format); err != nil {
		return nil, fmt.Errorf("cross field repair bob: %w", err)
	}
	if err := graph.RequireSameFormat(src, bobbed); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "CrossFieldRepair2",
		"source":   src.Name(),
		"bobbed":   bobbed.Name(),
		"sw":       sw,
		"sh":       sh,
		"chroma":   processChroma,
	}).Debug("Building cross field repair")

	var re, ro graph.Node
	if rangeRepair {
		if re, err = collab.Repairer.Repair(src, field.SelectEven(bobbed), 1); err != nil {
			return nil, err
		}
		if ro, err = collab.Repairer.Repair(src, field.SelectOdd(bobbed), 1); err != nil {
			return nil, err
		}
	} else {
		expanded := field.ExpandMulti(bobbed, sw, sh, processChroma)
		inpanded := field.InpandMulti(bobbed, sw, sh, processChroma)
		median := func(a, b, c *video.Frame) (*video.Frame, error) {
			return kernel.Median3(a, b, c, processChroma)
		}
		if re, err = field.Ternary("Median3", src, field.SelectEven(expanded), field.SelectEven(inpanded), median); err != nil {
			return nil, err
		}
		if ro, err = field.Ternary("Median3", src, field.SelectOdd(expanded), field.SelectOdd(inpanded), median); err != nil {
			return nil, err
		}
	}

	merged, err := field.Interleave(re, ro)
	if err != nil {
		return nil, err
	}
	fields, err := field.SeparateRows(merged)
	if err != nil {
		return nil, err
	}
	picked, err := field.SelectEvery(fields, 4, 2, 1)
	if err != nil {
		return nil, err
	}
	return field.WeaveRows(picked), nil
}
