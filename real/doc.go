// Package real provides the in-process collaborator implementations used by
// the comb-repair pipeline in production.
//
// This package implements the interfaces package abstractions with actual
// pixel processing, distinct from the simulation implementations in the
// testing package:
//
//   - [Resizer]: point, bilinear and Spline36 resampling with a sub-pixel
//     crop window, plus bit depth and plane layout conversion
//   - [Repairer]: RemoveGrain-style repair modes 1 to 4 and temporal clense
//   - [Averager]: weighted multi-clip averaging
//   - [MotionDeinterlacer]: yadif-style motion adaptive recombination with an
//     external spatial reference
//   - [WorkerInterpolator]: neural field interpolation delegated to a worker
//     process
//
// # Architecture
//
// Every collaborator only builds graph nodes; pixel work happens when the
// resolver asks a node for a frame:
//
//	┌──────────────────────┐   frames   ┌──────────────────────┐
//	│   graph.Resolver     │ ─────────> │  collaborator nodes  │
//	└──────────────────────┘            └──────────┬───────────┘
//	                                               │ msgpack
//	                                               ▼
//	                                    ┌──────────────────────┐
//	                                    │ interpolator worker  │
//	                                    │  (stdin / stdout)    │
//	                                    └──────────────────────┘
//
// # Worker Protocol
//
// The interpolator worker reads [WorkerRequest] messages from its standard
// input and answers each with a [WorkerResponse] on its standard output.
// Every message is a 4-byte big-endian length followed by that many bytes
// of msgpack. Requests are strictly sequential; a response must echo the
// request ID.
//
// # Usage
//
//	worker, err := real.StartWorker(ctx, []string{"nnedi3-worker"}, 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer worker.Close()
//	collab := real.NewCollaborators(worker)
//
// # Thread Safety
//
// All types are safe for concurrent use. Worker serialises calls.
package real
