package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/mpeg2stinx"
	"github.com/opd-ai/mpeg2stinx/config"
	"github.com/opd-ai/mpeg2stinx/factory"
	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
	"github.com/opd-ai/mpeg2stinx/y4m"
)

// progressInterval is the number of frames between progress log lines.
const progressInterval = 100

func run(cmd *cobra.Command, cfg *config.File, flags *runFlags, input string) error {
	if err := setLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	ctx := cmd.Context()

	clip, closer, err := openInput(input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closer.Close()

	base, err := cfg.CollaboratorConfig()
	if err != nil {
		return err
	}
	f := factory.NewCollaboratorFactoryWithConfig(base)
	collabConfig, err := collaboratorConfig(cmd, cfg, f.GetCurrentConfig())
	if err != nil {
		return err
	}
	set, err := f.CreateCollaboratorsWithConfig(ctx, collabConfig)
	if err != nil {
		return err
	}
	defer set.Close()

	options, err := cfg.Options()
	if err != nil {
		return err
	}
	filter, err := mpeg2stinx.New(clip, options, set.Collaborators)
	if err != nil {
		return err
	}

	header, err := y4m.HeaderFor(filter.Info(), clip.Header().FrameRate)
	if err != nil {
		return err
	}
	header.Aspect = clip.Header().Aspect
	header.FieldOrder = video.Progressive

	out, err := openOutput(flags.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	w := y4m.NewWriter(out, header)

	batch := flags.batch
	if batch <= 0 {
		batch = runtime.NumCPU()
	}
	renderErr := render(ctx, graph.NewResolver(cfg.Workers), filter, w, batch)
	if err := w.Flush(); err != nil && renderErr == nil {
		renderErr = fmt.Errorf("failed to flush output: %w", err)
	}
	if err := out.Close(); err != nil && renderErr == nil {
		renderErr = fmt.Errorf("failed to close output: %w", err)
	}
	return renderErr
}

// render computes frames batch at a time and writes them in order.
func render(ctx context.Context, resolver *graph.Resolver, node graph.Node, w *y4m.Writer, batch int) error {
	total := node.Info().NumFrames
	start := time.Now()
	frames := make([]*video.Frame, batch)

	for first := 0; first < total; first += batch {
		count := min(batch, total-first)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < count; i++ {
			i := i
			g.Go(func() error {
				f, err := resolver.GetFrame(gctx, node, first+i)
				if err != nil {
					return err
				}
				frames[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "render",
				"frame":    first,
				"error":    err.Error(),
			}).Error("Frame rendering failed")
			return err
		}

		for i := 0; i < count; i++ {
			if err := w.WriteFrame(frames[i]); err != nil {
				return err
			}
			frames[i] = nil
		}

		done := first + count
		if done%progressInterval < count || done == total {
			logrus.WithFields(logrus.Fields{
				"function": "render",
				"frames":   done,
				"total":    total,
				"fps":      float64(done) / time.Since(start).Seconds(),
			}).Info("Rendering progress")
		}
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return file, nil
}
