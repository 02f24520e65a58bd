package real

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Convert implements interfaces.IResizer. Bit depth changes shift samples
// (rounding when narrowing). YUV to gray keeps luma; gray to YUV adds
// neutral chroma. Subsampling changes are point resampled.
func (r *Resizer) Convert(src graph.Node, format video.Format) (graph.Node, error) {
	info := src.Info()
	if err := limits.ValidateFormat(format); err != nil {
		return nil, fmt.Errorf("convert %s: %w", src.Name(), err)
	}
	if info.Format == format {
		return src, nil
	}
	out := info
	out.Format = format
	if err := limits.ValidateDimensions(out); err != nil {
		return nil, fmt.Errorf("convert %s to %s: %w", src.Name(), format, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Resizer.Convert",
		"source":   src.Name(),
		"from":     info.Format.String(),
		"to":       format.String(),
	}).Debug("Creating format conversion")

	return &convertNode{Base: graph.NewBase("Convert("+format.String()+")", out), src: src}, nil
}

type convertNode struct {
	graph.Base
	src graph.Node
}

func (c *convertNode) Requests(n int) []graph.Request {
	return []graph.Request{{Node: c.src, N: n}}
}

func (c *convertNode) Compute(_ int, frames []*video.Frame) (*video.Frame, error) {
	src := frames[0]
	info := c.Info()
	out := video.NewFrame(info.Format, info.Width, info.Height)
	from, to := src.Format.BitsPerSample, info.Format.BitsPerSample

	for i, p := range out.Planes {
		if i >= len(src.Planes) {
			p.Fill(uint32(uint64(1) << uint(to-1)))
			continue
		}
		sp := src.Planes[i]
		for y := 0; y < p.Height; y++ {
			sy := y * sp.Height / p.Height
			for x := 0; x < p.Width; x++ {
				sx := x * sp.Width / p.Width
				p.Set(x, y, rescale(sp.At(sx, sy), from, to))
			}
		}
	}
	return out, nil
}

// rescale moves a sample between bit depths.
func rescale(v uint32, from, to int) uint32 {
	switch {
	case to > from:
		return uint32(uint64(v) << uint(to-from))
	case to < from:
		shift := uint(from - to)
		r := (uint64(v) + (uint64(1) << (shift - 1))) >> shift
		if max := (uint64(1) << uint(to)) - 1; r > max {
			r = max
		}
		return uint32(r)
	default:
		return v
	}
}
