package deint

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/field"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Bobber turns an interlaced clip into a double-rate progressive clip, one
// frame per field, at the source format and size.
type Bobber interface {
	Bob(src graph.Node) (graph.Node, error)
}

// Deinterlacer is the configured Bobber: a bob strategy followed by
// optional motion adaptation.
type Deinterlacer struct {
	mode   FilterMode
	order  int
	collab *interfaces.Collaborators
}

// New creates a Deinterlacer, checking that collab carries every
// collaborator mode and order need.
func New(mode FilterMode, order int, collab *interfaces.Collaborators) (*Deinterlacer, error) {
	if _, err := ParseFilterMode(int(mode)); err != nil {
		return nil, err
	}
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}
	need := mode.Requirements()
	if order >= 0 {
		need |= interfaces.NeedMotionDeinterlacer
	}
	if err := collab.Check(need); err != nil {
		return nil, fmt.Errorf("deinterlacer %s: %w", mode, err)
	}
	return &Deinterlacer{mode: mode, order: order, collab: collab}, nil
}

// Bob implements Bobber.
func (d *Deinterlacer) Bob(src graph.Node) (graph.Node, error) {
	if err := limits.ValidateClip(src.Info()); err != nil {
		return nil, fmt.Errorf("bob %s: %w", src.Name(), err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Deinterlacer.Bob",
		"source":   src.Name(),
		"mode":     d.mode.String(),
		"order":    d.order,
	}).Debug("Building bob")

	var bob graph.Node
	var err error
	switch d.mode {
	case PointBob:
		bob, err = PointBobClip(src, d.collab.Resizer)
	case Spline36Bob:
		bob, err = Spline36BobClip(src, d.collab.Resizer, true)
	case Nnedi3:
		bob, err = d.collab.Interpolator.Interpolate(src, interfaces.FieldBoth, d.collab.Device)
	case Nnedi3CL:
		bob, err = d.collab.Interpolator.Interpolate(src, interfaces.FieldBoth, interfaces.DeviceOpenCL)
	default:
		return nil, fmt.Errorf("%w: filter mode %d", video.ErrInvalidConfig, int(d.mode))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.mode, err)
	}
	return d.adapt(src, bob)
}

// adapt applies motion adaptation. Order 1 corrects the double-rate bob
// directly, top field first. Order 0 corrects the half-rate reselection as
// if the source were progressive and duplicates frames back to double rate.
func (d *Deinterlacer) adapt(src, bob graph.Node) (graph.Node, error) {
	md := d.collab.MotionDeinterlacer
	switch d.order {
	case 1:
		return md.Deinterlace(src, bob, 1, 1)
	case 0:
		adapted, err := md.Deinterlace(src, field.SelectEven(bob), 1, 0)
		if err != nil {
			return nil, err
		}
		return field.SelectEvery(adapted, 1, 0, 0)
	default:
		return bob, nil
	}
}

// PointBobClip separates src into fields and doubles each by repeating
// lines.
func PointBobClip(src graph.Node, resizer interfaces.IResizer) (graph.Node, error) {
	sep, err := field.SeparateRows(src)
	if err != nil {
		return nil, err
	}
	info := sep.Info()
	return resizer.Point(sep, interfaces.ResizeParams{Width: info.Width, Height: 2 * info.Height})
}

// Spline36BobClip resamples every field to full height with Spline36.
// Top fields are shifted down a quarter line and bottom fields up, so each
// field's own rows come out unchanged. Luma and chroma are bobbed as
// separate gray planes; with processChroma false chroma is line doubled.
func Spline36BobClip(src graph.Node, resizer interfaces.IResizer, processChroma bool) (graph.Node, error) {
	info := src.Info()
	if info.Format.ColorFamily == video.ColorFamilyGray {
		return spline36Gray(src, resizer)
	}

	planes := make([]graph.Node, info.Format.NumPlanes())
	for i := range planes {
		p, err := field.ExtractPlane(src, i)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0 || processChroma:
			planes[i], err = spline36Gray(p, resizer)
		default:
			planes[i], err = PointBobClip(p, resizer)
		}
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
	}
	return field.ShufflePlanes(planes, make([]int, len(planes)), video.ColorFamilyYUV)
}

func spline36Gray(src graph.Node, resizer interfaces.IResizer) (graph.Node, error) {
	sep, err := field.SeparateRows(src)
	if err != nil {
		return nil, err
	}
	info := sep.Info()
	params := func(top float64) interfaces.ResizeParams {
		return interfaces.ResizeParams{
			Width:     info.Width,
			Height:    2 * info.Height,
			SrcTop:    top,
			SrcWidth:  float64(info.Width),
			SrcHeight: float64(info.Height),
		}
	}
	even, err := resizer.Spline36(field.SelectEven(sep), params(0.25))
	if err != nil {
		return nil, err
	}
	odd, err := resizer.Spline36(field.SelectOdd(sep), params(-0.25))
	if err != nil {
		return nil, err
	}
	return field.Interleave(even, odd)
}
