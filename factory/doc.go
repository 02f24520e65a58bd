// Package factory creates collaborator sets for the comb-repair pipeline.
//
// The factory hides whether the pipeline runs against the in-process
// implementations, an external field interpolator worker, or the simulation
// implementations used in tests. Consuming code only sees an
// *interfaces.Collaborators.
//
// # Configuration
//
// The factory reads its defaults from environment variables:
//   - STINX_USE_SIMULATION: "true" or "false" to enable simulation mode
//   - STINX_INTERPOLATOR_TIMEOUT: integer milliseconds for one worker round trip
//   - STINX_DEVICE: "cpu" or "opencl"
//   - STINX_INTERPOLATOR_COMMAND: worker command line, split on white space
//
// Invalid values are logged and ignored.
//
// # Usage
//
//	factory := NewCollaboratorFactory()
//	set, err := factory.CreateCollaborators(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer set.Close()
//
//	filter, err := mpeg2stinx.New(src, options, set.Collaborators)
//
// # Testing Support
//
// CreateSimulationForTesting returns a set with simulated interpolation and
// motion adaptation so that every filter mode can run without a worker:
//
//	func TestMyFeature(t *testing.T) {
//	    collab := NewCollaboratorFactory().CreateSimulationForTesting()
//	    // Use collab in tests...
//	}
package factory
