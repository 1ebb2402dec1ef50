package sediment

import (
	"context"
	"fmt"
	"strings"

	"plume/internal/adaptive"
	"plume/internal/logging"
	"plume/internal/project"
	"plume/internal/services"
)

// AcceptSuggestion is the explicit signal that lets advisory content become
// part of the body. The accepted entry is removed from the suggestion set,
// appended to the body, and logged as accepted feedback for the adaptive
// engine.
func (m *Manager) AcceptSuggestion(ctx context.Context, sectionID int64, kind string, index int) (*project.Section, error) {
	section, err := m.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	entry, err := takeSuggestion(section.Suggestions, kind, index)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(section.Body) == "" {
		section.Body = entry
	} else {
		section.Body = section.Body + "\n\n" + entry
	}

	updated, err := m.store.UpsertSection(ctx, section)
	if err != nil {
		return nil, err
	}
	if err := m.recordFeedback(ctx, section.ProjectID, kind, true); err != nil {
		m.logger.Warn("failed to record accepted feedback", logging.Error(err))
	}
	m.logger.Info("suggestion accepted",
		logging.Int64(logging.FieldSectionID, sectionID),
		logging.String("kind", kind))
	return updated, nil
}

// RejectSuggestion drops an advisory entry and logs the rejection so the
// adaptive engine stops pushing material the user discards.
func (m *Manager) RejectSuggestion(ctx context.Context, sectionID int64, kind string, index int) (*project.Section, error) {
	section, err := m.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if _, err := takeSuggestion(section.Suggestions, kind, index); err != nil {
		return nil, err
	}

	updated, err := m.store.UpsertSection(ctx, section)
	if err != nil {
		return nil, err
	}
	if err := m.recordFeedback(ctx, section.ProjectID, kind, false); err != nil {
		m.logger.Warn("failed to record rejected feedback", logging.Error(err))
	}
	return updated, nil
}

func (m *Manager) recordFeedback(ctx context.Context, projectID, kind string, accepted bool) error {
	proj, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if proj.OwnerID == "" {
		return nil
	}
	return m.profiles.RecordFeedback(ctx, proj.OwnerID, kind, accepted)
}

// takeSuggestion removes and returns the entry at index from the named
// suggestion field, mutating the set in place.
func takeSuggestion(suggestions *project.Suggestions, kind string, index int) (string, error) {
	if suggestions == nil {
		return "", services.Wrap(services.ErrNotFound, "sediment", "accept", "section has no suggestions", nil)
	}
	var list *[]string
	switch kind {
	case adaptive.KindContentHints:
		list = &suggestions.ContentHints
	case adaptive.KindWritingPrompts:
		list = &suggestions.WritingPrompts
	case adaptive.KindStyleAdvice:
		list = &suggestions.StyleAdvice
	case adaptive.KindCitationCues:
		list = &suggestions.CitationCues
	default:
		return "", services.Wrap(services.ErrValidation, "sediment", "accept",
			fmt.Sprintf("unknown suggestion kind %q", kind), nil)
	}
	if index < 0 || index >= len(*list) {
		return "", services.Wrap(services.ErrNotFound, "sediment", "accept",
			fmt.Sprintf("no %s suggestion at index %d", kind, index), nil)
	}
	entry := (*list)[index]
	*list = append((*list)[:index], (*list)[index+1:]...)
	return entry, nil
}

// Revert restores one section from a version record. This is the only
// sanctioned backward movement: the preview from history is applied through
// the regular upsert, so the revision check still guards against concurrent
// edits, and a snapshot taken first makes the revert itself revertible.
func (m *Manager) Revert(ctx context.Context, projectID, versionID string, sectionID int64) (*project.Section, error) {
	live, err := m.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if live.ProjectID != projectID {
		return nil, services.Wrap(services.ErrValidation, "sediment", "revert",
			fmt.Sprintf("section %d does not belong to project %s", sectionID, projectID), nil)
	}

	restored, err := m.history.Restore(ctx, versionID, sectionID)
	if err != nil {
		return nil, err
	}

	proj, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	phase := currentPhase(proj.Status)
	if _, err := m.history.Record(ctx, projectID, phase, fmt.Sprintf("avant retour à la version %s", versionID)); err != nil {
		return nil, err
	}

	restored.Revision = live.Revision
	restored.Ordinal = live.Ordinal
	updated, err := m.store.UpsertSection(ctx, restored)
	if err != nil {
		return nil, err
	}
	m.logger.Info("section reverted",
		logging.String(logging.FieldProjectID, projectID),
		logging.Int64(logging.FieldSectionID, sectionID),
		logging.String("version_id", versionID))
	return updated, nil
}
