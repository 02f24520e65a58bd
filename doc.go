// Package mpeg2stinx removes the cross-field combing that telecined and
// badly deinterlaced MPEG-2 sources leave behind, while restoring detail
// through contra-sharpening.
//
// The filter is a frame graph. Every stage is a [graph.Node] that declares
// the upstream frames it needs and then computes one output frame from
// them; a [graph.Resolver] drives the graph on demand.
//
// # Getting Started
//
//	src, err := y4m.NewClip("input", file, size) // any graph.Node
//	if err != nil {
//	    log.Fatal(err)
//	}
//	collab := real.NewCollaborators(nil)
//
//	options := mpeg2stinx.NewOptions()
//	options.DiffScl = mpeg2stinx.Float64(1.0)
//
//	filter, err := mpeg2stinx.New(src, options, collab)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resolver := graph.NewResolver(runtime.NumCPU())
//	for n := 0; n < filter.Info().NumFrames; n++ {
//	    frame, err := resolver.GetFrame(ctx, filter, n)
//	    ...
//	}
//
// # Pipeline
//
// The source is repaired twice. Each pass bobs its input (see package
// deint), clamps every field against the bob of the opposite field (see
// package repair) and optionally bounds the change by the temporal
// difference of the source (see package limiter). The two passes are
// averaged and blurred vertically. With Contra set, the blurred average is
// sharpened back towards the source, limited either by a median against
// the source (Scl == 0) or by the source detail scaled by Scl.
//
// # Collaborators
//
// Resizing, neural field interpolation, motion adaptive deinterlacing,
// repair and averaging are consumed through the interfaces in package
// interfaces. Package real provides in-process implementations and package
// testing provides simulations for tests.
//
// # Operators
//
// [NewMin], [NewMax], [NewMedian3] and [NewDiff] expose the per-sample
// kernels as standalone clips.
//
// # Errors
//
// Construction fails with errors wrapping video.ErrInvalidConfig,
// video.ErrFormatMismatch or video.ErrUnimplemented. Per-frame failures are
// returned as *video.StageError naming the failing stage.
package mpeg2stinx
