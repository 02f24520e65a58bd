// Package testing provides in-memory clips and simulated collaborators for
// deterministic testing of the comb-repair pipeline.
//
// # Overview
//
// Pipelines are graphs of nodes that pull frames on demand. This package
// supplies source nodes that hold their frames in memory, generators for
// the synthetic patterns the tests exercise (flat fields, one-row combs,
// seeded noise), and nodes that fail on purpose so error propagation can be
// verified.
//
// # Simulation vs Real Implementation
//
// The neural field interpolator and the motion-adaptive deinterlacer are
// heavyweight collaborators. The simulated versions here keep their graph
// shape (frame rate, field parity, format) but replace the pixel work with
// line doubling and pass-through:
//
//   - Simulation (this package): deterministic, dependency free, used by unit
//     and integration tests.
//
//   - Real (real package): in-process resamplers, repair and a motion
//     adaptive deinterlacer, plus a worker client for neural interpolation.
//
// Both conform to the interfaces package, allowing seamless switching via
// the factory package.
//
// # Usage
//
//	src := testsim.CombClip(video.Gray8, 4, 4, 2, 100, 40)
//	frame, err := graph.NewResolver(1).GetFrame(ctx, src, 0)
//
// Every simulated collaborator logs a warning when used so that simulation
// never goes unnoticed in production logs.
package testing
