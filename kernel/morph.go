package kernel

import (
	"github.com/opd-ai/mpeg2stinx/video"
)

// Coordinates selects the neighbours of one morphology step, in the order
// top-left, top, top-right, left, right, bottom-left, bottom, bottom-right.
type Coordinates [8]bool

// Structuring elements used by the multi-radius dilation and erosion.
var (
	CoordsSquare     = Coordinates{true, true, true, true, true, true, true, true}
	CoordsHorizontal = Coordinates{false, false, false, true, true, false, false, false}
	CoordsVertical   = Coordinates{false, true, false, false, false, false, true, false}
)

var neighbourOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func morphPlane[T video.Sample](src, dst *video.Plane, coords Coordinates, dilate bool) {
	w, h := src.Width, src.Height
	for y := 0; y < h; y++ {
		out := video.Row[T](dst, y)
		cur := video.Row[T](src, y)
		for x := 0; x < w; x++ {
			v := cur[x]
			for i, on := range coords {
				if !on {
					continue
				}
				nx := clampInt(x+neighbourOffsets[i][0], 0, w-1)
				ny := clampInt(y+neighbourOffsets[i][1], 0, h-1)
				n := video.Row[T](src, ny)[nx]
				if dilate && n > v || !dilate && n < v {
					v = n
				}
			}
			out[x] = v
		}
	}
}

func morph(f *video.Frame, coords Coordinates, planes PlaneMask, dilate bool) (*video.Frame, error) {
	out := video.NewFrameLike(f)
	for i, p := range f.Planes {
		if !planes.Has(i) {
			out.Planes[i] = p.Clone()
			continue
		}
		switch f.Format.BytesPerSample {
		case 1:
			morphPlane[uint8](p, out.Planes[i], coords, dilate)
		case 2:
			morphPlane[uint16](p, out.Planes[i], coords, dilate)
		case 4:
			morphPlane[uint32](p, out.Planes[i], coords, dilate)
		default:
			return nil, video.MismatchError("bytes per sample", f.Format.BytesPerSample, "1, 2 or 4")
		}
	}
	return out, nil
}

// Maximum replaces each sample with the maximum of itself and the selected
// neighbours. Samples outside the plane repeat the nearest edge.
func Maximum(f *video.Frame, coords Coordinates, planes PlaneMask) (*video.Frame, error) {
	return morph(f, coords, planes, true)
}

// Minimum is the erosion counterpart of Maximum.
func Minimum(f *video.Frame, coords Coordinates, planes PlaneMask) (*video.Frame, error) {
	return morph(f, coords, planes, false)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
