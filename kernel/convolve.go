package kernel

import (
	"fmt"
	"math"

	"github.com/opd-ai/mpeg2stinx/limits"
	"github.com/opd-ai/mpeg2stinx/video"
)

// BlurKernel derives the symmetric [outer, inner, outer] vertical blur taps
// for a strength: inner = 1023 / 2^strength, outer = (1023 - inner) / 2,
// both rounded. Strength 0 yields the identity kernel.
func BlurKernel(strength float64) [3]int {
	inner := math.Round(float64(limits.BlurKernelScale) / math.Pow(2, strength))
	outer := math.Round((float64(limits.BlurKernelScale) - inner) / 2)
	return [3]int{int(outer), int(inner), int(outer)}
}

func convolvePlane[T video.Sample](src, dst *video.Plane, k [3]int, max int64) {
	div := int64(k[0] + k[1] + k[2])
	h := src.Height
	for y := 0; y < h; y++ {
		up := video.Row[T](src, mirror(y-1, h))
		cur := video.Row[T](src, y)
		down := video.Row[T](src, mirror(y+1, h))
		out := video.Row[T](dst, y)
		for x := range out {
			sum := int64(k[0])*int64(up[x]) + int64(k[1])*int64(cur[x]) + int64(k[2])*int64(down[x])
			v := (sum + div/2) / div
			if sum < 0 {
				v = (sum - div/2) / div
			}
			if v < 0 {
				v = 0
			} else if v > max {
				v = max
			}
			out[x] = T(v)
		}
	}
}

// ConvolveV applies a 3-tap vertical convolution normalised by the sum of
// the taps. Rows beyond the edge mirror back into the plane without
// repeating the edge row.
func ConvolveV(f *video.Frame, k [3]int, planes PlaneMask) (*video.Frame, error) {
	if k[0]+k[1]+k[2] <= 0 {
		return nil, fmt.Errorf("%w: convolution taps %v must have a positive sum", video.ErrInvalidConfig, k)
	}
	out := video.NewFrameLike(f)
	max := int64(f.Format.MaxValue())
	for i, p := range f.Planes {
		if !planes.Has(i) {
			out.Planes[i] = p.Clone()
			continue
		}
		switch f.Format.BytesPerSample {
		case 1:
			convolvePlane[uint8](p, out.Planes[i], k, max)
		case 2:
			convolvePlane[uint16](p, out.Planes[i], k, max)
		case 4:
			convolvePlane[uint32](p, out.Planes[i], k, max)
		default:
			return nil, video.MismatchError("bytes per sample", f.Format.BytesPerSample, "1, 2 or 4")
		}
	}
	return out, nil
}

// mirror reflects an out of range row index: -1 -> 1, h -> h-2.
func mirror(y, h int) int {
	if h == 1 {
		return 0
	}
	if y < 0 {
		return -y
	}
	if y >= h {
		return 2*h - 2 - y
	}
	return y
}
