package real

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
)

// MotionDeinterlacer implements interfaces.IMotionDeinterlacer with a
// yadif-style temporal check: rows of the missing field come from the
// spatial reference, clamped to a window around the temporal prediction.
// Static areas therefore keep the woven field while moving areas follow the
// reference.
type MotionDeinterlacer struct{}

// NewMotionDeinterlacer creates an in-process motion deinterlacer.
func NewMotionDeinterlacer() *MotionDeinterlacer {
	return &MotionDeinterlacer{}
}

// Deinterlace implements interfaces.IMotionDeinterlacer.
func (m *MotionDeinterlacer) Deinterlace(src, edeint graph.Node, order, mode int) (graph.Node, error) {
	if order != 0 && order != 1 {
		return nil, fmt.Errorf("%w: deinterlace order %d", video.ErrInvalidConfig, order)
	}
	if mode != 0 && mode != 1 {
		return nil, fmt.Errorf("%w: deinterlace mode %d", video.ErrInvalidConfig, mode)
	}
	if !src.Info().SameFormat(edeint.Info()) {
		return nil, video.MismatchError("edeint format",
			fmt.Sprintf("%s %dx%d", edeint.Info().Format, edeint.Info().Width, edeint.Info().Height),
			fmt.Sprintf("%s %dx%d", src.Info().Format, src.Info().Width, src.Info().Height))
	}

	info := src.Info()
	if mode == 1 {
		info.NumFrames *= 2
	}
	info.FieldOrder = video.Progressive

	logrus.WithFields(logrus.Fields{
		"function": "MotionDeinterlacer.Deinterlace",
		"source":   src.Name(),
		"edeint":   edeint.Name(),
		"order":    order,
		"mode":     mode,
	}).Debug("Creating motion adaptive deinterlacer")

	return &yadifNode{
		Base:   graph.NewBase("MotionDeinterlace", info),
		src:    src,
		edeint: edeint,
		order:  order,
		mode:   mode,
	}, nil
}

type yadifNode struct {
	graph.Base
	src    graph.Node
	edeint graph.Node
	order  int
	mode   int
}

// source maps output frame n to the source frame and the parity of the
// field that is kept (0 top, 1 bottom).
func (y *yadifNode) source(n int) (frame, parity int) {
	if y.mode == 0 {
		return n, 1 - y.order
	}
	return n / 2, (n % 2) ^ (1 - y.order)
}

func (y *yadifNode) Requests(n int) []graph.Request {
	k, _ := y.source(n)
	return []graph.Request{
		{Node: y.src, N: k - 1},
		{Node: y.src, N: k},
		{Node: y.src, N: k + 1},
		{Node: y.edeint, N: n},
	}
}

func (y *yadifNode) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	if err := video.CheckCompatible(frames...); err != nil {
		return nil, err
	}
	_, parity := y.source(n)
	prev, cur, next, edeint := frames[0], frames[1], frames[2], frames[3]

	// The fields adjacent in time to the missing one.
	prev2, next2 := cur, next
	if parity == 1 {
		prev2, next2 = prev, cur
	}

	out := cur.Clone()
	for i, p := range out.Planes {
		yadifPlane(p, prev.Planes[i], cur.Planes[i], next.Planes[i], prev2.Planes[i], next2.Planes[i], edeint.Planes[i], parity)
	}
	return out, nil
}

func yadifPlane(dst, prev, cur, next, prev2, next2, spatial *video.Plane, parity int) {
	h := dst.Height
	row := func(y int) int {
		for y < 0 {
			y += 2
		}
		for y >= h {
			y -= 2
		}
		if y < 0 {
			return 0
		}
		return y
	}
	at := func(p *video.Plane, x, y int) int64 { return int64(p.At(x, row(y))) }

	for y := 1 - parity; y < h; y += 2 {
		for x := 0; x < dst.Width; x++ {
			c := at(cur, x, y-1)
			e := at(cur, x, y+1)
			d := (at(prev2, x, y) + at(next2, x, y)) >> 1

			td0 := abs64(at(prev2, x, y) - at(next2, x, y))
			td1 := (abs64(at(prev, x, y-1)-c) + abs64(at(prev, x, y+1)-e)) >> 1
			td2 := (abs64(at(next, x, y-1)-c) + abs64(at(next, x, y+1)-e)) >> 1
			diff := max(td0>>1, td1, td2)

			b := (at(prev2, x, y-2) + at(next2, x, y-2)) >> 1
			f := (at(prev2, x, y+2) + at(next2, x, y+2)) >> 1
			hi := max(d-e, d-c, min(b-c, f-e))
			lo := min(d-e, d-c, max(b-c, f-e))
			diff = max(diff, lo, -hi)

			pred := int64(spatial.At(x, y))
			pred = min(max(pred, d-diff), d+diff)
			dst.Set(x, y, uint32(pred))
		}
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
