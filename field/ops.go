package field

import (
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
)

// UnaryOp transforms one frame.
type UnaryOp func(f *video.Frame) (*video.Frame, error)

// BinaryOp combines two frames of the same format.
type BinaryOp func(a, b *video.Frame) (*video.Frame, error)

// TernaryOp combines three frames of the same format.
type TernaryOp func(a, b, c *video.Frame) (*video.Frame, error)

// Unary lifts a per-frame function into a clip with the format of src.
func Unary(name string, src graph.Node, op UnaryOp) *graph.MapNode {
	return graph.NewMap(name, src.Info(), func(_ int, frames []*video.Frame) (*video.Frame, error) {
		return op(frames[0])
	}, src)
}

// Binary lifts a two-operand kernel into a clip. Both clips must share
// format and dimensions; the result takes the description of a.
func Binary(name string, a, b graph.Node, op BinaryOp) (*graph.MapNode, error) {
	if err := graph.RequireSameFormat(a, b); err != nil {
		return nil, err
	}
	return graph.NewMap(name, a.Info(), func(_ int, frames []*video.Frame) (*video.Frame, error) {
		return op(frames[0], frames[1])
	}, a, b), nil
}

// Ternary lifts a three-operand kernel into a clip.
func Ternary(name string, a, b, c graph.Node, op TernaryOp) (*graph.MapNode, error) {
	if err := graph.RequireSameFormat(a, b, c); err != nil {
		return nil, err
	}
	return graph.NewMap(name, a.Info(), func(_ int, frames []*video.Frame) (*video.Frame, error) {
		return op(frames[0], frames[1], frames[2])
	}, a, b, c), nil
}
