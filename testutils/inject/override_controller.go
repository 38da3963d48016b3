package inject

import (
	"github.com/jenourish/bodytrack/tracking"
	"github.com/jenourish/bodytrack/web/override"
)

// OverrideController is an injected override controller.
type OverrideController struct {
	override.Controller
	RequestTrackBodyFunc func(slot int) error
	CandidateStatesFunc  func() []tracking.CandidateState
}

// RequestTrackBody calls the injected RequestTrackBody or the real version.
func (c *OverrideController) RequestTrackBody(slot int) error {
	if c.RequestTrackBodyFunc == nil {
		return c.Controller.RequestTrackBody(slot)
	}
	return c.RequestTrackBodyFunc(slot)
}

// CandidateStates calls the injected CandidateStates or the real version.
func (c *OverrideController) CandidateStates() []tracking.CandidateState {
	if c.CandidateStatesFunc == nil {
		return c.Controller.CandidateStates()
	}
	return c.CandidateStatesFunc()
}
