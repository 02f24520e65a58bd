// Package interfaces defines the collaborator abstractions the comb-repair
// pipeline is built on.
//
// The core stages never look collaborators up by name. A [Collaborators]
// record is resolved once, checked against what the chosen configuration
// needs, and passed to every stage:
//
//	set, err := factory.NewCollaboratorFactory().CreateCollaborators(ctx)
//	if err != nil {
//	    return err
//	}
//	defer set.Close()
//	filter, err := mpeg2stinx.New(src, mpeg2stinx.NewOptions(), set.Collaborators)
//
// # Core Interfaces
//
// [IResizer] resamples clips with point, bilinear or Spline36 kernels and an
// optional sub-pixel crop window, and converts between sample formats.
//
// [IFieldInterpolator] rebuilds full frames from single fields, the way an
// nnedi3-style neural interpolator does.
//
// [IMotionDeinterlacer] recombines a clip with a spatially interpolated
// reference only where motion is detected.
//
// [IRepairer] offers the spatial repair family and a temporal clense.
//
// [IAverager] blends clips with weights.
//
// # Implementation Selection
//
// The factory package creates implementations based on [CollaboratorConfig]:
//   - UseSimulation=true: simulated collaborators from the testing package
//   - UseSimulation=false: in-process collaborators from the real package
//
// # Thread Safety
//
// Implementations only build graph nodes; the nodes they return hold
// immutable configuration and must be safe for concurrent frame requests.
package interfaces
