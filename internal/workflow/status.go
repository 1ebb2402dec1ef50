package workflow

import "strings"

// SectionStatus represents the lifecycle of a section. Each phase has an
// entry status (work in progress) and a completed status; a section leaves a
// phase only once it reaches that phase's completed status.
type SectionStatus string

const (
	SectionOutlining  SectionStatus = "outlining"
	SectionOutlined   SectionStatus = "outlined"
	SectionDrafting   SectionStatus = "drafting"
	SectionDrafted    SectionStatus = "drafted"
	SectionRevising   SectionStatus = "revising"
	SectionRevised    SectionStatus = "revised"
	SectionFinalizing SectionStatus = "finalizing"
	SectionFinalized  SectionStatus = "finalized"
)

var sectionStatusOrder = []SectionStatus{
	SectionOutlining,
	SectionOutlined,
	SectionDrafting,
	SectionDrafted,
	SectionRevising,
	SectionRevised,
	SectionFinalizing,
	SectionFinalized,
}

// ParseSectionStatus converts a string into a known SectionStatus.
func ParseSectionStatus(value string) (SectionStatus, bool) {
	normalized := SectionStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range sectionStatusOrder {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Rank returns the position of the status in lifecycle order, or -1 for an
// unknown status.
func (s SectionStatus) Rank() int {
	for i, status := range sectionStatusOrder {
		if status == s {
			return i
		}
	}
	return -1
}

// AtLeast reports whether s has reached other in lifecycle order.
func (s SectionStatus) AtLeast(other SectionStatus) bool {
	sr, or := s.Rank(), other.Rank()
	return sr >= 0 && or >= 0 && sr >= or
}

// EntryStatus returns the section status set when a section enters the phase.
func (p Phase) EntryStatus() SectionStatus {
	switch p {
	case PhaseStoryboard:
		return SectionOutlining
	case PhaseDrafting:
		return SectionDrafting
	case PhaseRevision:
		return SectionRevising
	case PhaseFinalization:
		return SectionFinalizing
	default:
		return SectionOutlining
	}
}

// CompletedStatus returns the section status required to leave the phase.
func (p Phase) CompletedStatus() SectionStatus {
	switch p {
	case PhaseStoryboard:
		return SectionOutlined
	case PhaseDrafting:
		return SectionDrafted
	case PhaseRevision:
		return SectionRevised
	case PhaseFinalization:
		return SectionFinalized
	default:
		return SectionOutlined
	}
}

// ProjectStatus represents the overall lifecycle of a project.
type ProjectStatus string

const (
	ProjectDraft        ProjectStatus = "draft"
	ProjectInStoryboard ProjectStatus = "in_storyboard"
	ProjectInDrafting   ProjectStatus = "in_drafting"
	ProjectInRevision   ProjectStatus = "in_revision"
	ProjectFinalized    ProjectStatus = "finalized"
)

var projectStatuses = []ProjectStatus{
	ProjectDraft,
	ProjectInStoryboard,
	ProjectInDrafting,
	ProjectInRevision,
	ProjectFinalized,
}

// ParseProjectStatus converts a string into a known ProjectStatus.
func ParseProjectStatus(value string) (ProjectStatus, bool) {
	normalized := ProjectStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range projectStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// ProjectStatusFor maps a phase to the project status that reflects active
// work in that phase.
func ProjectStatusFor(phase Phase) ProjectStatus {
	switch phase {
	case PhaseStoryboard:
		return ProjectInStoryboard
	case PhaseDrafting:
		return ProjectInDrafting
	case PhaseRevision:
		return ProjectInRevision
	case PhaseFinalization:
		return ProjectFinalized
	default:
		return ProjectDraft
	}
}
