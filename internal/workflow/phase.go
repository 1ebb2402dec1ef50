package workflow

import "strings"

// Phase identifies one step of the writing workflow. Phases are strictly
// ordered; forward movement happens through sedimentation transfers and
// backward movement only through explicit version restores.
type Phase string

const (
	PhaseStoryboard   Phase = "storyboard"
	PhaseDrafting     Phase = "drafting"
	PhaseRevision     Phase = "revision"
	PhaseFinalization Phase = "finalization"
)

var phaseOrder = []Phase{
	PhaseStoryboard,
	PhaseDrafting,
	PhaseRevision,
	PhaseFinalization,
}

// Phases returns the ordered list of workflow phases.
func Phases() []Phase {
	cp := make([]Phase, len(phaseOrder))
	copy(cp, phaseOrder)
	return cp
}

// ParsePhase converts a string into a known Phase.
func ParsePhase(value string) (Phase, bool) {
	normalized := Phase(strings.ToLower(strings.TrimSpace(value)))
	for _, phase := range phaseOrder {
		if phase == normalized {
			return phase, true
		}
	}
	return "", false
}

// Index returns the position of the phase in the fixed order, or -1 for an
// unknown phase.
func (p Phase) Index() int {
	for i, phase := range phaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that immediately follows p, if any.
func (p Phase) Next() (Phase, bool) {
	idx := p.Index()
	if idx < 0 || idx+1 >= len(phaseOrder) {
		return "", false
	}
	return phaseOrder[idx+1], true
}

// Follows reports whether p immediately follows from in the fixed sequence.
func (p Phase) Follows(from Phase) bool {
	next, ok := from.Next()
	return ok && next == p
}

// String returns the phase name.
func (p Phase) String() string {
	return string(p)
}
