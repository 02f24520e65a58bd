package field

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// SeparateNode splits every frame into its top and bottom field.
type SeparateNode struct {
	graph.Base
	src graph.Node
}

// SeparateRows emits frame k of src as fields 2k (top) and 2k+1 (bottom).
// The result is marked progressive so downstream stages do not split it
// again.
func SeparateRows(src graph.Node) (*SeparateNode, error) {
	info := src.Info()
	if err := limits.ValidateFieldGeometry(info); err != nil {
		return nil, fmt.Errorf("separate rows of %s: %w", src.Name(), err)
	}
	out := info
	out.Height = info.Height / 2
	out.NumFrames = info.NumFrames * 2
	out.FieldOrder = video.Progressive
	return &SeparateNode{Base: graph.NewBase("SeparateRows", out), src: src}, nil
}

// Requests implements graph.Node.
func (s *SeparateNode) Requests(n int) []graph.Request {
	return []graph.Request{{Node: s.src, N: n / 2}}
}

// Compute implements graph.Node.
func (s *SeparateNode) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	src := frames[0]
	parity := n % 2
	out := video.NewFrame(src.Format, src.Width(), src.Height()/2)
	for i, p := range out.Planes {
		for y := 0; y < p.Height; y++ {
			p.CopyRow(y, src.Planes[i], 2*y+parity)
		}
	}
	return out, nil
}

// WeaveNode joins field pairs back into frames.
type WeaveNode struct {
	graph.Base
	src graph.Node
}

// WeaveRows builds frame k from fields 2k (top rows) and 2k+1 (bottom
// rows). It inverts SeparateRows.
func WeaveRows(src graph.Node) *WeaveNode {
	info := src.Info()
	out := info
	out.Height = info.Height * 2
	out.NumFrames = (info.NumFrames + 1) / 2
	out.FieldOrder = video.TopFieldFirst
	return &WeaveNode{Base: graph.NewBase("WeaveRows", out), src: src}
}

// Requests implements graph.Node.
func (w *WeaveNode) Requests(n int) []graph.Request {
	return []graph.Request{{Node: w.src, N: 2 * n}, {Node: w.src, N: 2*n + 1}}
}

// Compute implements graph.Node.
func (w *WeaveNode) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	top, bottom := frames[0], frames[1]
	if err := video.CheckCompatible(top, bottom); err != nil {
		return nil, err
	}
	out := video.NewFrame(top.Format, top.Width(), top.Height()*2)
	for i, p := range out.Planes {
		for y := 0; y < p.Height; y++ {
			if y%2 == 0 {
				p.CopyRow(y, top.Planes[i], y/2)
			} else {
				p.CopyRow(y, bottom.Planes[i], y/2)
			}
		}
	}
	return out, nil
}

// SelectNode picks frames by a repeating offset pattern.
type SelectNode struct {
	graph.Base
	src     graph.Node
	cycle   int
	offsets []int
}

// SelectEvery keeps, from every group of cycle frames, the frames at the
// given offsets in the order listed.
func SelectEvery(src graph.Node, cycle int, offsets ...int) (*SelectNode, error) {
	if cycle <= 0 {
		return nil, fmt.Errorf("%w: select cycle %d must be positive", video.ErrInvalidConfig, cycle)
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: select needs at least one offset", video.ErrInvalidConfig)
	}
	if bad, ok := lo.Find(offsets, func(o int) bool { return o < 0 || o >= cycle }); ok {
		return nil, fmt.Errorf("%w: select offset %d outside cycle %d", video.ErrInvalidConfig, bad, cycle)
	}

	info := src.Info()
	if info.NumFrames > 0 {
		rem := info.NumFrames % cycle
		info.NumFrames = info.NumFrames/cycle*len(offsets) + lo.CountBy(offsets, func(o int) bool { return o < rem })
	}

	logrus.WithFields(logrus.Fields{
		"function": "SelectEvery",
		"source":   src.Name(),
		"cycle":    cycle,
		"offsets":  offsets,
	}).Debug("Creating frame selection")

	return &SelectNode{
		Base:    graph.NewBase("SelectEvery", info),
		src:     src,
		cycle:   cycle,
		offsets: append([]int(nil), offsets...),
	}, nil
}

// SelectEven keeps frames 0, 2, 4, ...
func SelectEven(src graph.Node) *SelectNode {
	s, _ := SelectEvery(src, 2, 0)
	return s
}

// SelectOdd keeps frames 1, 3, 5, ...
func SelectOdd(src graph.Node) *SelectNode {
	s, _ := SelectEvery(src, 2, 1)
	return s
}

// Source returns the index in the source clip that frame n maps to.
func (s *SelectNode) Source(n int) int {
	k := len(s.offsets)
	return n/k*s.cycle + s.offsets[n%k]
}

// Requests implements graph.Node.
func (s *SelectNode) Requests(n int) []graph.Request {
	return []graph.Request{{Node: s.src, N: s.Source(n)}}
}

// Compute implements graph.Node.
func (s *SelectNode) Compute(_ int, frames []*video.Frame) (*video.Frame, error) {
	return frames[0], nil
}

// InterleaveNode merges clips round robin.
type InterleaveNode struct {
	graph.Base
	clips []graph.Node
}

// Interleave emits frame 0 of every clip, then frame 1 of every clip, and
// so on. All clips must share format and dimensions. Shorter clips repeat
// their last frame.
func Interleave(clips ...graph.Node) (*InterleaveNode, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: interleave needs at least one clip", video.ErrInvalidConfig)
	}
	if err := graph.RequireSameFormat(clips...); err != nil {
		return nil, err
	}
	info := clips[0].Info()
	longest := lo.MaxBy(clips, func(a, b graph.Node) bool { return a.Info().NumFrames > b.Info().NumFrames })
	info.NumFrames = longest.Info().NumFrames * len(clips)
	return &InterleaveNode{Base: graph.NewBase("Interleave", info), clips: clips}, nil
}

// Requests implements graph.Node.
func (il *InterleaveNode) Requests(n int) []graph.Request {
	k := len(il.clips)
	return []graph.Request{{Node: il.clips[n%k], N: n / k}}
}

// Compute implements graph.Node.
func (il *InterleaveNode) Compute(_ int, frames []*video.Frame) (*video.Frame, error) {
	return frames[0], nil
}

// ShiftNode reads frame n+delta of its source.
type ShiftNode struct {
	graph.Base
	src   graph.Node
	delta int
}

// Shift returns src offset by delta frames. Indexes past either end clamp
// to the first or last frame.
func Shift(src graph.Node, delta int) *ShiftNode {
	return &ShiftNode{Base: graph.NewBase(fmt.Sprintf("Shift(%+d)", delta), src.Info()), src: src, delta: delta}
}

// Requests implements graph.Node.
func (s *ShiftNode) Requests(n int) []graph.Request {
	return []graph.Request{{Node: s.src, N: n + s.delta}}
}

// Compute implements graph.Node.
func (s *ShiftNode) Compute(_ int, frames []*video.Frame) (*video.Frame, error) {
	return frames[0], nil
}
