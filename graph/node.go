package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/opd-ai/mpeg2stinx/video"
)

// Request names one upstream frame a node depends on.
type Request struct {
	Node Node
	N    int
}

// Node is a clip in the frame graph.
//
// Compute must not modify the frames it receives; they may be shared with
// other consumers of the same upstream node.
type Node interface {
	// ID uniquely identifies the node instance
	ID() uuid.UUID
	// Name returns the stage name used in logs and errors
	Name() string
	// Info returns the constant clip description
	Info() video.Info
	// Requests declares the upstream frames needed for frame n
	Requests(n int) []Request
	// Compute produces frame n from the frames named by Requests(n)
	Compute(n int, frames []*video.Frame) (*video.Frame, error)
}

// Base carries the identity and clip description every node embeds.
type Base struct {
	id   uuid.UUID
	name string
	info video.Info
}

// NewBase creates a node base with a fresh identifier.
func NewBase(name string, info video.Info) Base {
	return Base{id: uuid.New(), name: name, info: info}
}

// ID returns the node identifier.
func (b *Base) ID() uuid.UUID { return b.id }

// Name returns the stage name.
func (b *Base) Name() string { return b.name }

// Info returns the clip description.
func (b *Base) Info() video.Info { return b.info }

// MapFunc computes an output frame from frame n of each input.
type MapFunc func(n int, frames []*video.Frame) (*video.Frame, error)

// MapNode applies a per-frame function to the same frame index of every input.
type MapNode struct {
	Base
	inputs []Node
	fn     MapFunc
}

// NewMap creates a node computing fn over frame n of each input.
func NewMap(name string, info video.Info, fn MapFunc, inputs ...Node) *MapNode {
	return &MapNode{
		Base:   NewBase(name, info),
		inputs: inputs,
		fn:     fn,
	}
}

// Requests implements Node.
func (m *MapNode) Requests(n int) []Request {
	reqs := make([]Request, len(m.inputs))
	for i, in := range m.inputs {
		reqs[i] = Request{Node: in, N: n}
	}
	return reqs
}

// Compute implements Node.
func (m *MapNode) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	if len(frames) != len(m.inputs) {
		return nil, fmt.Errorf("%s: got %d frames for %d inputs", m.name, len(frames), len(m.inputs))
	}
	return m.fn(n, frames)
}

// ClampIndex maps a requested frame index into the clip's range. Clips of
// unknown length only clamp at zero.
func ClampIndex(info video.Info, n int) int {
	if n < 0 {
		return 0
	}
	if info.NumFrames > 0 && n >= info.NumFrames {
		return info.NumFrames - 1
	}
	return n
}

// RequireSameFormat checks that every node shares the first node's format
// and dimensions.
func RequireSameFormat(nodes ...Node) error {
	if len(nodes) == 0 {
		return nil
	}
	ref := nodes[0].Info()
	for _, n := range nodes[1:] {
		info := n.Info()
		if info.Format != ref.Format {
			return video.MismatchError(n.Name()+" format", info.Format, ref.Format)
		}
		if info.Width != ref.Width || info.Height != ref.Height {
			return video.MismatchError(n.Name()+" dimensions",
				fmt.Sprintf("%dx%d", info.Width, info.Height), fmt.Sprintf("%dx%d", ref.Width, ref.Height))
		}
	}
	return nil
}
