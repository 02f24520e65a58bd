package real

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// filterKernel is a separable resampling kernel.
type filterKernel struct {
	name    string
	support float64
	eval    func(x float64) float64
	// widen stretches the kernel when downscaling
	widen bool
}

var (
	pointKernel = filterKernel{
		name:    "point",
		support: 0.5,
		eval: func(x float64) float64 {
			if x > -0.5 && x <= 0.5 {
				return 1
			}
			return 0
		},
	}

	bilinearKernel = filterKernel{
		name:    "bilinear",
		support: 1,
		widen:   true,
		eval: func(x float64) float64 {
			x = math.Abs(x)
			if x < 1 {
				return 1 - x
			}
			return 0
		},
	}

	spline36Kernel = filterKernel{
		name:    "spline36",
		support: 3,
		widen:   true,
		eval:    spline36,
	}
)

func spline36(x float64) float64 {
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((13.0/11.0*x-453.0/209.0)*x-3.0/209.0)*x + 1.0
	case x < 2:
		x -= 1
		return ((-6.0/11.0*x+270.0/209.0)*x - 156.0/209.0) * x
	case x < 3:
		x -= 2
		return ((1.0/11.0*x-45.0/209.0)*x + 26.0/209.0) * x
	default:
		return 0
	}
}

// tap is one weighted source sample of an output position.
type tap struct {
	index  int
	weight float64
}

// contributions builds the normalised taps of every output position along
// one axis. The sampling window starts at left and spans width source
// samples; indexes outside the source clamp to its edges.
func contributions(srcSize, dstSize int, left, width float64, k filterKernel) [][]tap {
	scale := width / float64(dstSize)
	fscale := 1.0
	if k.widen && scale > 1 {
		fscale = scale
	}
	support := k.support * fscale

	out := make([][]tap, dstSize)
	for i := range out {
		pos := left + (float64(i)+0.5)*scale - 0.5
		lo := int(math.Floor(pos-support)) + 1
		hi := int(math.Floor(pos + support))
		var taps []tap
		var sum float64
		for j := lo; j <= hi; j++ {
			w := k.eval((float64(j) - pos) / fscale)
			if w == 0 {
				continue
			}
			taps = append(taps, tap{index: clampIndex(j, srcSize), weight: w})
			sum += w
		}
		if sum == 0 {
			taps = []tap{{index: clampIndex(int(math.Round(pos)), srcSize), weight: 1}}
			sum = 1
		}
		for t := range taps {
			taps[t].weight /= sum
		}
		out[i] = taps
	}
	return out
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

// resamplePlane resizes src into dst, horizontally then vertically, keeping
// the intermediate in floating point so the result is rounded once.
func resamplePlane(src, dst *video.Plane, cropLeft, cropTop, cropW, cropH float64, k filterKernel, max float64) {
	hTaps := contributions(src.Width, dst.Width, cropLeft, cropW, k)
	vTaps := contributions(src.Height, dst.Height, cropTop, cropH, k)

	tmp := make([]float64, src.Height*dst.Width)
	for y := 0; y < src.Height; y++ {
		for x, taps := range hTaps {
			var acc float64
			for _, t := range taps {
				acc += float64(src.At(t.index, y)) * t.weight
			}
			tmp[y*dst.Width+x] = acc
		}
	}

	for y, taps := range vTaps {
		for x := 0; x < dst.Width; x++ {
			var acc float64
			for _, t := range taps {
				acc += tmp[t.index*dst.Width+x] * t.weight
			}
			v := math.Round(acc)
			dst.Set(x, y, uint32(math.Max(0, math.Min(max, v))))
		}
	}
}

// Resizer implements interfaces.IResizer in process.
type Resizer struct{}

// NewResizer creates an in-process resizer.
func NewResizer() *Resizer {
	return &Resizer{}
}

// Point implements interfaces.IResizer.
func (r *Resizer) Point(src graph.Node, params interfaces.ResizeParams) (graph.Node, error) {
	return newResizeNode(src, params, pointKernel)
}

// Bilinear implements interfaces.IResizer.
func (r *Resizer) Bilinear(src graph.Node, params interfaces.ResizeParams) (graph.Node, error) {
	return newResizeNode(src, params, bilinearKernel)
}

// Spline36 implements interfaces.IResizer.
func (r *Resizer) Spline36(src graph.Node, params interfaces.ResizeParams) (graph.Node, error) {
	return newResizeNode(src, params, spline36Kernel)
}

type resizeNode struct {
	graph.Base
	src    graph.Node
	params interfaces.ResizeParams
	kernel filterKernel
}

func newResizeNode(src graph.Node, params interfaces.ResizeParams, k filterKernel) (*resizeNode, error) {
	info := src.Info()
	if params.SrcWidth == 0 {
		params.SrcWidth = float64(info.Width)
	}
	if params.SrcHeight == 0 {
		params.SrcHeight = float64(info.Height)
	}
	if params.SrcWidth < 0 || params.SrcHeight < 0 {
		return nil, fmt.Errorf("%w: %s crop window %vx%v", video.ErrInvalidConfig, k.name, params.SrcWidth, params.SrcHeight)
	}

	out := info
	out.Width, out.Height = params.Width, params.Height
	if err := limits.ValidateDimensions(out); err != nil {
		return nil, fmt.Errorf("%s resize of %s: %w", k.name, src.Name(), err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Resizer." + k.name,
		"source":   src.Name(),
		"from":     fmt.Sprintf("%dx%d", info.Width, info.Height),
		"to":       fmt.Sprintf("%dx%d", params.Width, params.Height),
		"src_top":  params.SrcTop,
	}).Debug("Creating resize node")

	return &resizeNode{Base: graph.NewBase("Resize("+k.name+")", out), src: src, params: params, kernel: k}, nil
}

func (r *resizeNode) Requests(n int) []graph.Request {
	return []graph.Request{{Node: r.src, N: n}}
}

func (r *resizeNode) Compute(_ int, frames []*video.Frame) (*video.Frame, error) {
	src := frames[0]
	info := r.Info()
	out := video.NewFrame(src.Format, info.Width, info.Height)
	max := float64(src.Format.MaxValue())
	for i, p := range out.Planes {
		sx, sy := 1.0, 1.0
		if i > 0 {
			sx = float64(int(1) << uint(src.Format.SubSamplingW))
			sy = float64(int(1) << uint(src.Format.SubSamplingH))
		}
		resamplePlane(src.Planes[i], p,
			r.params.SrcLeft/sx, r.params.SrcTop/sy,
			r.params.SrcWidth/sx, r.params.SrcHeight/sy,
			r.kernel, max)
	}
	return out, nil
}
