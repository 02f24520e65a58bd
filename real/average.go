package real

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Averager implements interfaces.IAverager in process.
type Averager struct{}

// NewAverager creates an in-process averager.
func NewAverager() *Averager {
	return &Averager{}
}

// Average implements interfaces.IAverager. A nil weights slice weighs every
// clip equally. Two equally weighted clips use the rounded mean kernel.
func (a *Averager) Average(clips []graph.Node, weights []float64) (graph.Node, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: average needs at least one clip", video.ErrInvalidConfig)
	}
	if weights == nil {
		weights = lo.Times(len(clips), func(int) float64 { return 1 })
	}
	if len(weights) != len(clips) {
		return nil, fmt.Errorf("%w: %d weights for %d clips", video.ErrInvalidConfig, len(weights), len(clips))
	}
	total := lo.Sum(weights)
	if total <= 0 {
		return nil, fmt.Errorf("%w: average weights sum to %v", video.ErrInvalidConfig, total)
	}
	if err := graph.RequireSameFormat(clips...); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Averager.Average",
		"clips":    len(clips),
		"weights":  weights,
	}).Debug("Creating average node")

	if len(clips) == 2 && weights[0] == weights[1] {
		return graph.NewMap("Average", clips[0].Info(), func(_ int, frames []*video.Frame) (*video.Frame, error) {
			return kernel.Average(frames[0], frames[1])
		}, clips...), nil
	}

	norm := lo.Map(weights, func(w float64, _ int) float64 { return w / total })
	return graph.NewMap("Average", clips[0].Info(), func(_ int, frames []*video.Frame) (*video.Frame, error) {
		return weightedAverage(frames, norm)
	}, clips...), nil
}

func weightedAverage(frames []*video.Frame, weights []float64) (*video.Frame, error) {
	if err := video.CheckCompatible(frames...); err != nil {
		return nil, err
	}
	out := video.NewFrameLike(frames[0])
	max := float64(out.Format.MaxValue())
	for i, p := range out.Planes {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				var acc float64
				for k, f := range frames {
					acc += float64(f.Planes[i].At(x, y)) * weights[k]
				}
				p.Set(x, y, uint32(math.Max(0, math.Min(max, math.Round(acc)))))
			}
		}
	}
	return out, nil
}
