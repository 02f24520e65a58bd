package mpeg2stinx

import (
	"github.com/opd-ai/mpeg2stinx/field"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/video"
)

// NewMin returns the per-sample minimum of two clips.
func NewMin(a, b graph.Node) (graph.Node, error) {
	return field.Binary("Min", a, b, kernel.Min)
}

// NewMax returns the per-sample maximum of two clips.
func NewMax(a, b graph.Node) (graph.Node, error) {
	return field.Binary("Max", a, b, kernel.Max)
}

// NewMedian3 returns the per-sample median of three clips. Without
// processChroma only luma is computed and chroma is taken from a.
func NewMedian3(a, b, c graph.Node, processChroma bool) (graph.Node, error) {
	return field.Ternary("Median3", a, b, c, func(x, y, z *video.Frame) (*video.Frame, error) {
		return kernel.Median3(x, y, z, processChroma)
	})
}

// NewDiff returns the per-sample absolute difference of two clips.
func NewDiff(a, b graph.Node) (graph.Node, error) {
	return field.Binary("Diff", a, b, kernel.Diff)
}
