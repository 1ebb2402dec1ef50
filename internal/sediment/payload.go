package sediment

import (
	"fmt"
	"strings"

	"plume/internal/project"
	"plume/internal/services"
	"plume/internal/workflow"
)

// SectionDelta describes what one transfer did to one section. Deltas are
// rendered by the caller; they are never persisted standalone.
type SectionDelta struct {
	SectionID int64
	Title     string
	Ordinal   int
	// Applied is the suggestion material merged into the section.
	Applied *project.Suggestions
	// Skipped is set when the section had already been migrated by an
	// earlier run of the same transfer.
	Skipped bool
}

// DocumentSection is one entry of the ordered document view assembled when
// a project moves into finalization.
type DocumentSection struct {
	SectionID int64
	Ordinal   int
	Title     string
	Body      string
	Citations []project.Citation
	Coherence *float64
	Density   *float64
}

// Payload is the result of one context transfer, handed to the caller for
// rendering.
type Payload struct {
	ProjectID     string
	From          workflow.Phase
	To            workflow.Phase
	Sections      []SectionDelta
	Document      []DocumentSection
	Warnings      []string
	PreVersionID  string
	PostVersionID string
	Migrated      int
	SkippedCount  int
}

// NoOp reports whether the transfer changed nothing.
func (p *Payload) NoOp() bool {
	return p.Migrated == 0
}

// SectionGap lists what one section is missing before it can leave a phase.
type SectionGap struct {
	SectionID int64
	Title     string
	Missing   []string
}

// IncompleteError reports, per section, what blocks a transfer. It matches
// the incomplete-section sentinel for errors.Is.
type IncompleteError struct {
	From        workflow.Phase
	ProjectGaps []string
	Gaps        []SectionGap
}

func (e *IncompleteError) Error() string {
	parts := make([]string, 0, len(e.Gaps)+len(e.ProjectGaps))
	parts = append(parts, e.ProjectGaps...)
	for _, gap := range e.Gaps {
		parts = append(parts, fmt.Sprintf("section %d (%s): %s",
			gap.SectionID, gap.Title, strings.Join(gap.Missing, ", ")))
	}
	return fmt.Sprintf("%v: cannot leave %s: %s",
		services.ErrIncompleteSection, e.From, strings.Join(parts, "; "))
}

func (e *IncompleteError) Unwrap() error {
	return services.ErrIncompleteSection
}

// Requirement is one readiness criterion with its outcome.
type Requirement struct {
	Description string
	Met         bool
	// Blocking lists the sections failing the criterion, empty when Met.
	Blocking []SectionGap
}

// Report is the answer to "can this project advance to target now".
type Report struct {
	ProjectID    string
	From         workflow.Phase
	Target       workflow.Phase
	Ready        bool
	Requirements []Requirement
}
