package testing

import (
	"fmt"
	"math/rand"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
)

// MemoryClip serves frames held in memory.
type MemoryClip struct {
	graph.Base
	frames []*video.Frame
}

// NewMemoryClip creates a clip from frames, which must share one format and
// size. The clip takes ownership of the frames.
func NewMemoryClip(name string, frames ...*video.Frame) (*MemoryClip, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: memory clip %s has no frames", video.ErrInvalidConfig, name)
	}
	if err := video.CheckCompatible(frames...); err != nil {
		return nil, err
	}
	ref := frames[0]
	info := video.Info{
		Format:     ref.Format,
		Width:      ref.Width(),
		Height:     ref.Height(),
		NumFrames:  len(frames),
		FieldOrder: video.TopFieldFirst,
	}
	return &MemoryClip{Base: graph.NewBase(name, info), frames: frames}, nil
}

// MustMemoryClip is NewMemoryClip for fixtures known to be valid.
func MustMemoryClip(name string, frames ...*video.Frame) *MemoryClip {
	c, err := NewMemoryClip(name, frames...)
	if err != nil {
		panic(err)
	}
	return c
}

// Requests implements graph.Node.
func (m *MemoryClip) Requests(int) []graph.Request { return nil }

// Compute implements graph.Node.
func (m *MemoryClip) Compute(n int, _ []*video.Frame) (*video.Frame, error) {
	if n < 0 || n >= len(m.frames) {
		return nil, fmt.Errorf("%s: frame %d out of range [0, %d)", m.Name(), n, len(m.frames))
	}
	return m.frames[n], nil
}

// Frame returns stored frame n.
func (m *MemoryClip) Frame(n int) *video.Frame {
	return m.frames[n]
}

// FlatFrame returns a frame with every sample of every plane set to v.
func FlatFrame(format video.Format, width, height int, v uint32) *video.Frame {
	f := video.NewFrame(format, width, height)
	for _, p := range f.Planes {
		p.Fill(v)
	}
	return f
}

// CombFrame returns a frame whose luma rows alternate between base (top
// field) and base+offset (bottom field). Chroma planes are flat at base.
func CombFrame(format video.Format, width, height int, base, offset uint32) *video.Frame {
	f := FlatFrame(format, width, height, base)
	luma := f.Planes[0]
	for y := 1; y < luma.Height; y += 2 {
		for x := 0; x < luma.Width; x++ {
			luma.Set(x, y, base+offset)
		}
	}
	return f
}

// CombClip returns count identical comb frames.
func CombClip(format video.Format, width, height, count int, base, offset uint32) *MemoryClip {
	frames := make([]*video.Frame, count)
	for i := range frames {
		frames[i] = CombFrame(format, width, height, base, offset)
	}
	return MustMemoryClip("comb", frames...)
}

// FlatClip returns count frames flat at v.
func FlatClip(format video.Format, width, height, count int, v uint32) *MemoryClip {
	frames := make([]*video.Frame, count)
	for i := range frames {
		frames[i] = FlatFrame(format, width, height, v)
	}
	return MustMemoryClip("flat", frames...)
}

// NoiseClip returns count frames of uniformly distributed samples drawn
// from a generator seeded with seed.
func NoiseClip(format video.Format, width, height, count int, seed int64) *MemoryClip {
	rng := rand.New(rand.NewSource(seed))
	limit := format.MaxValue() + 1
	frames := make([]*video.Frame, count)
	for i := range frames {
		f := video.NewFrame(format, width, height)
		for _, p := range f.Planes {
			for y := 0; y < p.Height; y++ {
				for x := 0; x < p.Width; x++ {
					p.Set(x, y, uint32(rng.Uint64()%limit))
				}
			}
		}
		frames[i] = f
	}
	return MustMemoryClip("noise", frames...)
}

// FailingClip reports a clip description but fails every frame at or after
// FailFrom with Err.
type FailingClip struct {
	graph.Base
	Err      error
	FailFrom int
}

// NewFailingClip creates a clip that fails from frame failFrom on.
func NewFailingClip(info video.Info, failFrom int, err error) *FailingClip {
	return &FailingClip{Base: graph.NewBase("failing", info), Err: err, FailFrom: failFrom}
}

// Requests implements graph.Node.
func (f *FailingClip) Requests(int) []graph.Request { return nil }

// Compute implements graph.Node.
func (f *FailingClip) Compute(n int, _ []*video.Frame) (*video.Frame, error) {
	if n >= f.FailFrom {
		return nil, f.Err
	}
	info := f.Info()
	return video.NewFrame(info.Format, info.Width, info.Height), nil
}
