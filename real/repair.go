package real

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/field"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Repairer implements interfaces.IRepairer in process.
type Repairer struct{}

// NewRepairer creates an in-process repairer.
func NewRepairer() *Repairer {
	return &Repairer{}
}

// Repair implements interfaces.IRepairer. Mode k (1..4) clips every sample
// of src into [k-th smallest, k-th largest] of the 3x3 neighbourhood of the
// co-sited sample in ref. Neighbours outside the plane repeat the edge.
func (r *Repairer) Repair(src, ref graph.Node, mode int) (graph.Node, error) {
	if mode < 1 || mode > 4 {
		return nil, fmt.Errorf("%w: repair mode %d", video.ErrUnimplemented, mode)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Repairer.Repair",
		"source":   src.Name(),
		"ref":      ref.Name(),
		"mode":     mode,
	}).Debug("Creating repair node")

	return field.Binary(fmt.Sprintf("Repair(%d)", mode), src, ref, func(a, b *video.Frame) (*video.Frame, error) {
		return repairFrame(a, b, mode)
	})
}

func repairFrame(src, ref *video.Frame, mode int) (*video.Frame, error) {
	if err := video.CheckCompatible(src, ref); err != nil {
		return nil, err
	}
	out := video.NewFrameLike(src)
	window := make([]uint32, 0, 9)
	for i, p := range out.Planes {
		sp, rp := src.Planes[i], ref.Planes[i]
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				window = window[:0]
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						window = append(window, rp.At(clampIndex(x+dx, rp.Width), clampIndex(y+dy, rp.Height)))
					}
				}
				slices.Sort(window)
				low, high := window[mode-1], window[9-mode]
				p.Set(x, y, min(max(sp.At(x, y), low), high))
			}
		}
	}
	return out, nil
}

// Clense implements interfaces.IRepairer.
func (r *Repairer) Clense(src, prev, next graph.Node, planes []int) (graph.Node, error) {
	if prev == nil {
		prev = field.Shift(src, -1)
	}
	if next == nil {
		next = field.Shift(src, 1)
	}
	if bad, ok := lo.Find(planes, func(p int) bool { return p < 0 || p >= src.Info().Format.NumPlanes() }); ok {
		return nil, fmt.Errorf("%w: clense plane %d", video.ErrInvalidConfig, bad)
	}
	mask := kernel.PlaneList(planes...)

	logrus.WithFields(logrus.Fields{
		"function": "Repairer.Clense",
		"source":   src.Name(),
		"planes":   planes,
	}).Debug("Creating clense node")

	return field.Ternary("Clense", src, prev, next, func(a, b, c *video.Frame) (*video.Frame, error) {
		return kernel.MedianPlanes(a, b, c, mask)
	})
}
