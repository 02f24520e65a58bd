// Package graph implements the on-demand frame graph the pipeline runs in.
//
// Every clip is a [Node]. Producing frame n of a node happens in two
// explicit phases:
//
//  1. Requests(n) declares the upstream frames the node needs. The caller is
//     free to fetch them in any order, concurrently, or from a cache.
//  2. Compute(n, frames) receives the resolved frames in request order and
//     runs pure pixel math, allocating exactly one output frame.
//
// No continuation state crosses the boundary between the phases, so a node
// holds only immutable configuration and is safe for concurrent use.
//
// # Resolver
//
// [Resolver] is the scheduler shipped with the module:
//
//	resolver := graph.NewResolver(runtime.GOMAXPROCS(0))
//	frame, err := resolver.GetFrame(ctx, clip, 42)
//
// It fetches the dependencies of each node concurrently, collapses duplicate
// requests for the same (node, frame) pair that occur while one top-level
// request is in flight, and keeps nothing once GetFrame returns.
package graph
