package sediment

import (
	"fmt"

	"plume/internal/profile"
	"plume/internal/project"
	"plume/internal/quality"
	"plume/internal/workflow"
)

// transformDelta applies the fixed per-boundary transform. Each case reads
// from the material the previous phase produced and writes advisory fields
// the next phase pre-fills from.
func transformDelta(section *project.Section, prof *profile.UserProfile, to workflow.Phase) *project.Suggestions {
	delta := &project.Suggestions{}
	switch to {
	case workflow.PhaseDrafting:
		// Outline material becomes pre-fill suggestions; the body stays
		// untouched until the author writes it.
		if section.Guidance != "" {
			delta.ContentHints = append(delta.ContentHints,
				fmt.Sprintf("Plan à dérouler : %s", section.Guidance))
		}
		if section.Thesis != "" {
			delta.WritingPrompts = append(delta.WritingPrompts,
				fmt.Sprintf("Développer la thèse : %s", section.Thesis))
		}
		for _, citation := range section.Citations {
			delta.CitationCues = append(delta.CitationCues,
				fmt.Sprintf("Mobiliser %s (%s)", citation.Text, citation.Source))
		}
	case workflow.PhaseRevision:
		// The drafted body becomes the analysis subject; the user's style
		// preference frames the review.
		delta.StyleAdvice = append(delta.StyleAdvice,
			fmt.Sprintf("Réviser au regard du style %s.", prof.Style))
		metrics := scoreSection(section)
		if metrics.Coherence < 0.5 {
			delta.ContentHints = append(delta.ContentHints,
				fmt.Sprintf("Cohérence mesurée à %.2f : retravailler l'articulation des paragraphes.", metrics.Coherence))
		}
		if metrics.Density < 0.5 {
			delta.ContentHints = append(delta.ContentHints,
				fmt.Sprintf("Densité mesurée à %.2f : resserrer les passages descriptifs.", metrics.Density))
		}
	case workflow.PhaseFinalization:
		delta.ContentHints = append(delta.ContentHints,
			"Vérifier la place de la section dans le document assemblé avant le gel.")
		if len(section.Citations) > 0 {
			delta.CitationCues = append(delta.CitationCues,
				fmt.Sprintf("Contrôler le format %s des %d références.", prof.CitationStyle, len(section.Citations)))
		}
	}
	return delta
}

func scoreSection(section *project.Section) quality.Metrics {
	return quality.Score(section.Body)
}

// mergeSuggestions appends extra entries onto base, field by field, skipping
// duplicates. base is never mutated.
func mergeSuggestions(base, extra *project.Suggestions) *project.Suggestions {
	merged := &project.Suggestions{}
	if base != nil {
		merged.ContentHints = append(merged.ContentHints, base.ContentHints...)
		merged.WritingPrompts = append(merged.WritingPrompts, base.WritingPrompts...)
		merged.StyleAdvice = append(merged.StyleAdvice, base.StyleAdvice...)
		merged.CitationCues = append(merged.CitationCues, base.CitationCues...)
		merged.Warnings = append(merged.Warnings, base.Warnings...)
	}
	if extra != nil {
		merged.ContentHints = appendUnique(merged.ContentHints, extra.ContentHints)
		merged.WritingPrompts = appendUnique(merged.WritingPrompts, extra.WritingPrompts)
		merged.StyleAdvice = appendUnique(merged.StyleAdvice, extra.StyleAdvice)
		merged.CitationCues = appendUnique(merged.CitationCues, extra.CitationCues)
		merged.Warnings = appendUnique(merged.Warnings, extra.Warnings)
	}
	return merged
}

func appendUnique(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, entry := range existing {
		seen[entry] = struct{}{}
	}
	for _, entry := range extra {
		if entry == "" {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		existing = append(existing, entry)
	}
	return existing
}

// AssembleDocument builds the ordered document view handed to finalization
// and export.
func AssembleDocument(sections []*project.Section) []DocumentSection {
	view := make([]DocumentSection, 0, len(sections))
	for _, section := range sections {
		view = append(view, DocumentSection{
			SectionID: section.ID,
			Ordinal:   section.Ordinal,
			Title:     section.Title,
			Body:      section.Body,
			Citations: section.Citations,
			Coherence: section.Coherence,
			Density:   section.Density,
		})
	}
	return view
}
