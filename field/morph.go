package field

import (
	"fmt"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/kernel"
	"github.com/opd-ai/mpeg2stinx/video"
)

// ExpandMode is the structuring element of one dilation or erosion step.
type ExpandMode int

const (
	// ExpandNone leaves the clip unchanged.
	ExpandNone ExpandMode = iota
	// ExpandSquare uses all eight neighbours.
	ExpandSquare
	// ExpandHorizontal uses the left and right neighbours.
	ExpandHorizontal
	// ExpandVertical uses the neighbours above and below.
	ExpandVertical
)

// ModeFor returns the structuring element for the remaining radii.
func ModeFor(sw, sh int) ExpandMode {
	switch {
	case sw > 0 && sh > 0:
		return ExpandSquare
	case sw > 0:
		return ExpandHorizontal
	case sh > 0:
		return ExpandVertical
	default:
		return ExpandNone
	}
}

// Coordinates returns the 8-flag neighbour set of the mode.
func (m ExpandMode) Coordinates() kernel.Coordinates {
	switch m {
	case ExpandSquare:
		return kernel.CoordsSquare
	case ExpandHorizontal:
		return kernel.CoordsHorizontal
	case ExpandVertical:
		return kernel.CoordsVertical
	default:
		return kernel.Coordinates{}
	}
}

// String implements fmt.Stringer.
func (m ExpandMode) String() string {
	switch m {
	case ExpandNone:
		return "none"
	case ExpandSquare:
		return "square"
	case ExpandHorizontal:
		return "horizontal"
	case ExpandVertical:
		return "vertical"
	default:
		return fmt.Sprintf("ExpandMode(%d)", int(m))
	}
}

// ExpandMulti dilates src max(sw, sh) times. Each step uses ModeFor on the
// remaining radii, then decrements both, so the element degrades to a line
// once one radius is exhausted. sw = sh = 0 returns src itself.
func ExpandMulti(src graph.Node, sw, sh int, processChroma bool) graph.Node {
	return morphMulti(src, sw, sh, processChroma, "Expand", kernel.Maximum)
}

// InpandMulti is the erosion counterpart of ExpandMulti.
func InpandMulti(src graph.Node, sw, sh int, processChroma bool) graph.Node {
	return morphMulti(src, sw, sh, processChroma, "Inpand", kernel.Minimum)
}

type morphFunc func(f *video.Frame, coords kernel.Coordinates, planes kernel.PlaneMask) (*video.Frame, error)

func morphMulti(src graph.Node, sw, sh int, processChroma bool, name string, op morphFunc) graph.Node {
	planes := kernel.Planes(processChroma)
	node := src
	for sw > 0 || sh > 0 {
		coords := ModeFor(sw, sh).Coordinates()
		node = Unary(fmt.Sprintf("%s(%s)", name, ModeFor(sw, sh)), node, func(f *video.Frame) (*video.Frame, error) {
			return op(f, coords, planes)
		})
		sw, sh = max(sw-1, 0), max(sh-1, 0)
	}
	return node
}
