package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/opd-ai/mpeg2stinx/video"
)

// Resolver produces frames by walking the graph on demand.
// It is safe for concurrent use; each GetFrame call is independent.
type Resolver struct {
	workers int
}

// NewResolver creates a resolver that runs at most workers dependency
// fetches concurrently per node. If workers <= 0 the fan-out is unlimited.
func NewResolver(workers int) *Resolver {
	return &Resolver{workers: workers}
}

// session collapses duplicate requests for the duration of one GetFrame call.
type session struct {
	resolver *Resolver
	group    singleflight.Group
	mu       sync.Mutex
	done     map[string]*video.Frame
}

// GetFrame resolves frame n of node and everything it depends on.
// Intermediate frames are discarded when the call returns.
func (r *Resolver) GetFrame(ctx context.Context, node Node, n int) (*video.Frame, error) {
	s := &session{
		resolver: r,
		done:     make(map[string]*video.Frame),
	}
	return s.get(ctx, node, ClampIndex(node.Info(), n))
}

func requestKey(node Node, n int) string {
	return fmt.Sprintf("%s/%d", node.ID(), n)
}

func (s *session) get(ctx context.Context, node Node, n int) (*video.Frame, error) {
	key := requestKey(node, n)

	s.mu.Lock()
	if f, ok := s.done[key]; ok {
		s.mu.Unlock()
		return f, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		f, err := s.produce(ctx, node, n)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.done[key] = f
		s.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*video.Frame), nil
}

// produce runs the dependency-declaration phase, fetches every request,
// then runs the compute phase.
func (s *session) produce(ctx context.Context, node Node, n int) (*video.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, video.NewStageError(node.Name(), n, err)
	}

	reqs := node.Requests(n)
	frames := make([]*video.Frame, len(reqs))

	if len(reqs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		if s.resolver.workers > 0 {
			g.SetLimit(s.resolver.workers)
		}
		for i, req := range reqs {
			i, req := i, req
			g.Go(func() error {
				idx := ClampIndex(req.Node.Info(), req.N)
				f, err := s.get(gctx, req.Node, idx)
				if err != nil {
					return dependencyError(req.Node, idx, err)
				}
				frames[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Resolver.GetFrame",
				"node":     node.Name(),
				"frame":    n,
				"error":    err.Error(),
			}).Debug("Dependency resolution failed")
			return nil, video.NewStageError(node.Name(), n, err)
		}
	}

	out, err := node.Compute(n, frames)
	if err != nil {
		return nil, video.NewStageError(node.Name(), n, err)
	}
	if out == nil || !out.Matches(node.Info()) {
		got := "nil frame"
		if out != nil {
			got = fmt.Sprintf("%s %dx%d", out.Format, out.Width(), out.Height())
		}
		info := node.Info()
		return nil, video.NewStageError(node.Name(), n, video.MismatchError("frame format", got,
			fmt.Sprintf("%s %dx%d", info.Format, info.Width, info.Height)))
	}

	logrus.WithFields(logrus.Fields{
		"function": "Resolver.GetFrame",
		"node":     node.Name(),
		"frame":    n,
	}).Trace("Frame computed")

	return out, nil
}

// dependencyError classifies a failed upstream fetch. An error already
// carrying ErrDependencyUnavailable passes through unchanged so that deep
// graphs report the originating stage once.
func dependencyError(dep Node, n int, err error) error {
	if errors.Is(err, video.ErrDependencyUnavailable) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s frame %d: %w", video.ErrDependencyUnavailable, dep.Name(), n, err)
}
