package kernel

import (
	"math"

	"github.com/opd-ai/mpeg2stinx/video"
)

// MaxPlanes reduces a frame to one gray plane holding, per luma position,
// the largest sample across all planes. Chroma is point-upsampled to luma
// size.
func MaxPlanes(f *video.Frame) *video.Frame {
	out := video.NewFrame(f.Format.Gray(), f.Width(), f.Height())
	dst := out.Planes[0]
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			v := f.Planes[0].At(x, y)
			for i := 1; i < len(f.Planes); i++ {
				c := f.Planes[i].At(x>>uint(f.Format.SubSamplingW), y>>uint(f.Format.SubSamplingH))
				if c > v {
					v = c
				}
			}
			dst.Set(x, y, v)
		}
	}
	return out
}

// Offset returns clip + sign * floor(bound * scale) per sample, clamped.
// bound is either a frame shaped like clip or a single gray plane at luma
// size; in the latter case chroma samples read the co-sited luma bound.
func Offset(clip, bound *video.Frame, scale float64, sign int) (*video.Frame, error) {
	if len(bound.Planes) != len(clip.Planes) && len(bound.Planes) != 1 {
		return nil, video.MismatchError("bound plane count", len(bound.Planes), len(clip.Planes))
	}
	if bound.Format.BitsPerSample != clip.Format.BitsPerSample {
		return nil, video.MismatchError("bound bit depth", bound.Format.BitsPerSample, clip.Format.BitsPerSample)
	}
	if bound.Width() != clip.Width() || bound.Height() != clip.Height() {
		return nil, video.MismatchError("bound dimensions",
			[2]int{bound.Width(), bound.Height()}, [2]int{clip.Width(), clip.Height()})
	}

	out := video.NewFrameLike(clip)
	max := float64(clip.Format.MaxValue())
	for i, p := range clip.Planes {
		bp, sx, sy := bound.Planes[0], uint(0), uint(0)
		if len(bound.Planes) == len(clip.Planes) {
			bp = bound.Planes[i]
		} else if i > 0 {
			sx, sy = uint(clip.Format.SubSamplingW), uint(clip.Format.SubSamplingH)
		}
		dst := out.Planes[i]
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				d := math.Floor(float64(bp.At(x<<sx, y<<sy)) * scale)
				v := float64(p.At(x, y)) + float64(sign)*d
				v = math.Max(0, math.Min(max, v))
				dst.Set(x, y, uint32(v))
			}
		}
	}
	return out, nil
}
