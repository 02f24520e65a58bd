package mpeg2stinx

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/deint"
	"github.com/opd-ai/mpeg2stinx/field"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/limiter"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/repair"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Filter is the comb repair pipeline as a clip. Frame n is built from frame
// n of the source, the repaired average and, with contra-sharpening, its
// blurred copy.
type Filter struct {
	graph.Base
	src          graph.Node
	nuked        graph.Node
	nukedBlurred graph.Node
	sstr         float64
	scl          float64
	bias         kernel.BiasMode
}

// New builds the pipeline over src. A nil options uses NewOptions. Every
// option and collaborator is validated here; no frame is requested.
func New(src graph.Node, options *Options, collab *interfaces.Collaborators) (*Filter, error) {
	if options == nil {
		options = NewOptions()
	}
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("mpeg2stinx: %w", err)
	}
	info := src.Info()
	if err := limits.ValidateClip(info); err != nil {
		return nil, fmt.Errorf("mpeg2stinx: source %s: %w", src.Name(), err)
	}
	if err := collab.Check(interfaces.NeedResizer | interfaces.NeedAverager); err != nil {
		return nil, fmt.Errorf("mpeg2stinx: %w", err)
	}
	deinterlacer, err := deint.New(options.Mode, options.Order, collab)
	if err != nil {
		return nil, fmt.Errorf("mpeg2stinx: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"source":   src.Name(),
		"format":   info.Format.String(),
		"size":     fmt.Sprintf("%dx%d", info.Width, info.Height),
		"mode":     options.Mode.String(),
		"sw":       options.SW,
		"sh":       options.SH,
		"contra":   options.Contra,
		"order":    options.Order,
		"diffscl":  options.DiffScl != nil,
	}).Info("Building comb repair pipeline")

	a, err := pass(src, src, deinterlacer, options, collab)
	if err != nil {
		return nil, fmt.Errorf("mpeg2stinx: first pass: %w", err)
	}
	b, err := pass(a, src, deinterlacer, options, collab)
	if err != nil {
		return nil, fmt.Errorf("mpeg2stinx: second pass: %w", err)
	}

	nuked, err := collab.Averager.Average([]graph.Node{a, b}, nil)
	if err != nil {
		return nil, fmt.Errorf("mpeg2stinx: average: %w", err)
	}
	if strength := options.BlurStrength(); strength > 0 {
		if nuked, err = blurV(nuked, strength); err != nil {
			return nil, fmt.Errorf("mpeg2stinx: blur: %w", err)
		}
	}

	f := &Filter{
		Base:  graph.NewBase("Mpeg2Stinx", info),
		src:   src,
		nuked: nuked,
		sstr:  options.SStr,
		scl:   options.Scl,
		bias:  options.BiasMode,
	}
	if options.Contra {
		blurred := nuked
		for i := 0; i < contraBlurPasses; i++ {
			if blurred, err = blurV(blurred, contraBlurStrength); err != nil {
				return nil, fmt.Errorf("mpeg2stinx: contra blur: %w", err)
			}
		}
		f.nukedBlurred = blurred
	}
	return f, nil
}

// pass repairs clip against its own bob and, when configured, limits the
// result against reference.
func pass(clip, reference graph.Node, d deint.Bobber, options *Options, collab *interfaces.Collaborators) (graph.Node, error) {
	bob, err := d.Bob(clip)
	if err != nil {
		return nil, err
	}
	out, err := repair.CrossFieldRepair2(clip, bob, options.SW, options.SH, true, collab)
	if err != nil {
		return nil, err
	}
	if options.DiffScl == nil {
		return out, nil
	}
	return limiter.TempLimit(clip, out, reference, *options.DiffScl)
}

func blurV(src graph.Node, strength float64) (graph.Node, error) {
	k := kernel.BlurKernel(strength)
	if k[0]+k[1]+k[2] <= 0 {
		return nil, fmt.Errorf("%w: blur strength %v gives kernel %v", video.ErrInvalidConfig, strength, k)
	}
	return field.Unary(fmt.Sprintf("BlurV(%g)", strength), src, func(f *video.Frame) (*video.Frame, error) {
		return kernel.ConvolveV(f, k, kernel.AllPlanes)
	}), nil
}

// Requests implements graph.Node.
func (f *Filter) Requests(n int) []graph.Request {
	reqs := []graph.Request{{Node: f.nuked, N: n}}
	if f.nukedBlurred != nil {
		reqs = append(reqs, graph.Request{Node: f.src, N: n}, graph.Request{Node: f.nukedBlurred, N: n})
	}
	return reqs
}

// Compute implements graph.Node.
func (f *Filter) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	nuked := frames[0]
	if f.nukedBlurred == nil {
		return nuked, nil
	}
	src, blurred := frames[1], frames[2]

	if f.scl == 0 {
		sharp, err := kernel.Sharp(nuked, blurred, f.sstr)
		if err != nil {
			return nil, video.NewStageError("sharp", n, err)
		}
		out, err := kernel.Median3(nuked, sharp, src, true)
		return out, video.NewStageError("median3", n, err)
	}

	detail, err := kernel.MakeDiff(src, nuked, f.bias)
	if err != nil {
		return nil, video.NewStageError("makediff", n, err)
	}
	sharpD, err := kernel.SharpD(nuked, blurred, f.sstr, f.bias)
	if err != nil {
		return nil, video.NewStageError("sharpd", n, err)
	}
	limited, err := kernel.LimD(sharpD, detail, f.scl, f.bias)
	if err != nil {
		return nil, video.NewStageError("limd", n, err)
	}
	out, err := kernel.AddDiff(nuked, limited, f.bias)
	return out, video.NewStageError("adddiff", n, err)
}
