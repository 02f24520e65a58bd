package real

import (
	"github.com/opd-ai/mpeg2stinx/interfaces"
)

// NewCollaborators returns the in-process collaborator set. The field
// interpolator is only set when a worker is supplied.
func NewCollaborators(worker *Worker) *interfaces.Collaborators {
	c := &interfaces.Collaborators{
		Resizer:            NewResizer(),
		MotionDeinterlacer: NewMotionDeinterlacer(),
		Repairer:           NewRepairer(),
		Averager:           NewAverager(),
	}
	if worker != nil {
		c.Interpolator = NewWorkerInterpolator(worker)
	}
	return c
}
