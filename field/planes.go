package field

import (
	"fmt"
	"math/bits"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
)

// ShuffleNode assembles a frame from planes of other clips.
type ShuffleNode struct {
	graph.Base
	clips  []graph.Node
	planes []int
}

// ShufflePlanes builds a clip whose plane i is plane planes[i] of clips[i].
// For ColorFamilyGray exactly one plane is taken; for ColorFamilyYUV three,
// and the chroma subsampling is derived from the plane sizes.
func ShufflePlanes(clips []graph.Node, planes []int, family video.ColorFamily) (*ShuffleNode, error) {
	want := video.NewFormat(family, 8, 0, 0).NumPlanes()
	if want == 0 {
		return nil, fmt.Errorf("%w: shuffle planes into %s", video.ErrInvalidConfig, family)
	}
	if len(clips) != want || len(planes) != want {
		return nil, fmt.Errorf("%w: %s needs %d clips and planes, got %d and %d",
			video.ErrInvalidConfig, family, want, len(clips), len(planes))
	}

	w := make([]int, want)
	h := make([]int, want)
	ref := clips[0].Info()
	for i, c := range clips {
		info := c.Info()
		if planes[i] < 0 || planes[i] >= info.Format.NumPlanes() {
			return nil, fmt.Errorf("%w: %s has no plane %d", video.ErrInvalidConfig, c.Name(), planes[i])
		}
		if info.Format.BitsPerSample != ref.Format.BitsPerSample {
			return nil, video.MismatchError(c.Name()+" bit depth", info.Format.BitsPerSample, ref.Format.BitsPerSample)
		}
		w[i], h[i] = info.Format.PlaneDimensions(planes[i], info.Width, info.Height)
	}

	subW, subH := 0, 0
	if family == video.ColorFamilyYUV {
		if w[1] != w[2] || h[1] != h[2] {
			return nil, video.MismatchError("chroma plane size",
				fmt.Sprintf("%dx%d", w[2], h[2]), fmt.Sprintf("%dx%d", w[1], h[1]))
		}
		var err error
		if subW, err = subsampling(w[0], w[1]); err != nil {
			return nil, err
		}
		if subH, err = subsampling(h[0], h[1]); err != nil {
			return nil, err
		}
	}

	info := ref
	info.Format = video.NewFormat(family, ref.Format.BitsPerSample, subW, subH)
	info.Width, info.Height = w[0], h[0]
	return &ShuffleNode{
		Base:   graph.NewBase("ShufflePlanes", info),
		clips:  clips,
		planes: append([]int(nil), planes...),
	}, nil
}

// ExtractPlane returns plane i of src as a gray clip.
func ExtractPlane(src graph.Node, i int) (*ShuffleNode, error) {
	return ShufflePlanes([]graph.Node{src}, []int{i}, video.ColorFamilyGray)
}

func subsampling(luma, chroma int) (int, error) {
	if chroma <= 0 || luma%chroma != 0 || bits.OnesCount(uint(luma/chroma)) != 1 {
		return 0, video.MismatchError("chroma subsampling ratio", fmt.Sprintf("%d/%d", luma, chroma), "a power of two")
	}
	return bits.TrailingZeros(uint(luma / chroma)), nil
}

// Requests implements graph.Node.
func (s *ShuffleNode) Requests(n int) []graph.Request {
	reqs := make([]graph.Request, len(s.clips))
	for i, c := range s.clips {
		reqs[i] = graph.Request{Node: c, N: n}
	}
	return reqs
}

// Compute implements graph.Node.
func (s *ShuffleNode) Compute(_ int, frames []*video.Frame) (*video.Frame, error) {
	info := s.Info()
	out := &video.Frame{Format: info.Format, Planes: make([]*video.Plane, len(s.planes))}
	for i, f := range frames {
		if s.planes[i] >= len(f.Planes) {
			return nil, video.MismatchError("plane count", len(f.Planes), s.planes[i]+1)
		}
		out.Planes[i] = f.Planes[s.planes[i]].Clone()
	}
	return out, nil
}
