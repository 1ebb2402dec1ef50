package sediment

import (
	"context"
	"fmt"

	"plume/internal/config"
	"plume/internal/project"
	"plume/internal/workflow"
)

// sectionGaps checks every not-yet-migrated section against the minimum
// required to leave the from phase. It returns nil when nothing blocks.
func sectionGaps(sections []*project.Section, from workflow.Phase, cfg *config.Config, to workflow.Phase) *IncompleteError {
	entry := to.EntryStatus()
	var gaps []SectionGap
	for _, section := range sections {
		if section.Status.AtLeast(entry) {
			continue
		}
		if missing := missingFor(section, from, cfg); len(missing) > 0 {
			gaps = append(gaps, SectionGap{
				SectionID: section.ID,
				Title:     section.Title,
				Missing:   missing,
			})
		}
	}
	if len(gaps) == 0 {
		return nil
	}
	return &IncompleteError{From: from, Gaps: gaps}
}

func missingFor(section *project.Section, from workflow.Phase, cfg *config.Config) []string {
	var missing []string
	switch from {
	case workflow.PhaseStoryboard:
		if section.Title == "" {
			missing = append(missing, "titre manquant")
		}
	case workflow.PhaseDrafting:
		if section.WordCount() == 0 {
			missing = append(missing, "corps non rédigé")
		}
	case workflow.PhaseRevision:
		minWords := cfg.Workflow.MinSectionWords
		if words := section.WordCount(); words < minWords {
			missing = append(missing, fmt.Sprintf("corps sous le seuil de %d mots (%d)", minWords, words))
		}
	}
	return missing
}

// Readiness reports whether the project can advance to target, requirement
// by requirement, without mutating anything.
func (m *Manager) Readiness(ctx context.Context, projectID string, target workflow.Phase) (*Report, error) {
	proj, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sections, err := m.store.SectionsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	current := currentPhase(proj.Status)
	report := &Report{ProjectID: projectID, From: current, Target: target}

	order := Requirement{
		Description: fmt.Sprintf("%s suit immédiatement la phase courante (%s)", target, current),
		Met:         target.Follows(current),
	}
	report.Requirements = append(report.Requirements, order)

	hasSections := Requirement{
		Description: "le projet contient au moins une section",
		Met:         len(sections) > 0,
	}
	report.Requirements = append(report.Requirements, hasSections)

	completion := Requirement{
		Description: fmt.Sprintf("chaque section remplit le minimum pour quitter %s", current),
		Met:         true,
	}
	if incomplete := sectionGaps(sections, current, m.cfg, target); incomplete != nil {
		completion.Met = false
		completion.Blocking = incomplete.Gaps
	}
	report.Requirements = append(report.Requirements, completion)

	report.Ready = order.Met && hasSections.Met && completion.Met

	if current == workflow.PhaseStoryboard && len(sections) > 0 {
		// Advisory only: a thin storyboard does not block the transfer but
		// the drafting phase has little to pre-fill from.
		withGuidance := 0
		for _, section := range sections {
			if section.Guidance != "" || section.Thesis != "" {
				withGuidance++
			}
		}
		coverage := float64(withGuidance) / float64(len(sections))
		report.Requirements = append(report.Requirements, Requirement{
			Description: fmt.Sprintf("consignes ou thèses sur au moins %.0f%% des sections (recommandé)",
				m.cfg.Workflow.GuidanceCoverage*100),
			Met: coverage >= m.cfg.Workflow.GuidanceCoverage,
		})
	}

	return report, nil
}
