package sediment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plume/internal/adaptive"
	"plume/internal/ai"
	"plume/internal/config"
	"plume/internal/history"
	"plume/internal/logging"
	"plume/internal/profile"
	"plume/internal/project"
	"plume/internal/services"
	"plume/internal/workflow"
)

// Manager is the single authority for moving section data across phase
// boundaries. Forward movement happens only through TransferContext;
// backward movement only through Revert.
type Manager struct {
	store    *project.Store
	profiles *profile.Store
	history  *history.Manager
	engine   *adaptive.Engine
	ai       *ai.Service
	cfg      *config.Config
	logger   *slog.Logger
}

// NewManager assembles the sedimentation manager. ai may be nil; transfers
// then run on the local engine alone.
func NewManager(cfg *config.Config, store *project.Store, profiles *profile.Store, hist *history.Manager, engine *adaptive.Engine, aiService *ai.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:    store,
		profiles: profiles,
		history:  hist,
		engine:   engine,
		ai:       aiService,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "sediment"),
	}
}

// TransferContext moves a project from one phase to the next, enriching
// every section according to the transform for that boundary. Suggestion
// and metric fields are the only ones written; user-authored bodies and
// titles are never touched. Re-running a completed transfer is a no-op that
// leaves a marker version and changes no section.
func (m *Manager) TransferContext(ctx context.Context, projectID string, from, to workflow.Phase) (*Payload, error) {
	if !to.Follows(from) {
		return nil, services.Wrap(services.ErrPhaseOrder, "sediment", "transfer",
			fmt.Sprintf("%s does not immediately follow %s", to, from), nil)
	}

	proj, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	current := currentPhase(proj.Status)
	if current != from && current != to {
		return nil, services.Wrap(services.ErrPhaseOrder, "sediment", "transfer",
			fmt.Sprintf("project is in %s, cannot transfer %s to %s", current, from, to), nil)
	}

	ctx = services.WithProjectID(ctx, projectID)
	ctx = services.WithPhase(ctx, string(to))
	ctx = services.WithUserID(ctx, proj.OwnerID)
	logger := logging.WithContext(ctx, m.logger)

	sections, err := m.store.SectionsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, services.Wrap(services.ErrValidation, "sediment", "transfer",
			"project has no sections", nil)
	}

	if incomplete := sectionGaps(sections, from, m.cfg, to); incomplete != nil {
		return nil, incomplete
	}

	payload := &Payload{ProjectID: projectID, From: from, To: to}
	pending := make([]*project.Section, 0, len(sections))
	entry := to.EntryStatus()
	for _, section := range sections {
		if section.Status.AtLeast(entry) {
			payload.Sections = append(payload.Sections, SectionDelta{
				SectionID: section.ID,
				Title:     section.Title,
				Ordinal:   section.Ordinal,
				Skipped:   true,
			})
			payload.SkippedCount++
			continue
		}
		pending = append(pending, section)
	}

	if len(pending) == 0 {
		// Fully migrated already: record the marker and leave sections alone.
		marker, err := m.history.Record(ctx, projectID, to, fmt.Sprintf("transfert %s vers %s déjà appliqué", from, to))
		if err != nil {
			return nil, err
		}
		payload.PostVersionID = marker
		if currentPhase(proj.Status) != to {
			// A prior run moved every section but stopped before the
			// project record. Finish the reconciliation so the next
			// forward transfer is not rejected.
			if err := m.store.UpdateProjectStatus(ctx, projectID, workflow.ProjectStatusFor(to)); err != nil {
				return nil, err
			}
			if err := m.store.RecordTransition(ctx, projectID, from, to, 0); err != nil {
				return nil, err
			}
		}
		if to == workflow.PhaseFinalization {
			payload.Document = AssembleDocument(sections)
		}
		logger.Info("transfer already applied")
		return payload, nil
	}

	preID, err := m.history.Record(ctx, projectID, to, fmt.Sprintf("avant transfert %s vers %s", from, to))
	if err != nil {
		return nil, err
	}
	payload.PreVersionID = preID

	prof, err := m.profiles.Get(ctx, proj.OwnerID)
	if err != nil {
		return nil, err
	}

	for _, section := range pending {
		delta, warnings := m.enrich(ctx, proj, prof, section, to)
		payload.Warnings = append(payload.Warnings, warnings...)

		section.Suggestions = mergeSuggestions(section.Suggestions, delta)
		enrichedAt := time.Now().UTC()
		section.EnrichedAt = &enrichedAt
		if to == workflow.PhaseRevision {
			metrics := scoreSection(section)
			section.Coherence = &metrics.Coherence
			section.Density = &metrics.Density
		}
		section.Status = entry

		updated, err := m.store.UpsertSection(ctx, section)
		if err != nil {
			// A conflicting edit mid-transfer stops the run; a re-run picks
			// up the remaining sections.
			return nil, err
		}
		payload.Sections = append(payload.Sections, SectionDelta{
			SectionID: updated.ID,
			Title:     updated.Title,
			Ordinal:   updated.Ordinal,
			Applied:   delta,
		})
		payload.Migrated++
	}

	postID, err := m.history.Record(ctx, projectID, to, fmt.Sprintf("après transfert %s vers %s", from, to))
	if err != nil {
		return nil, err
	}
	payload.PostVersionID = postID

	if err := m.store.UpdateProjectStatus(ctx, projectID, workflow.ProjectStatusFor(to)); err != nil {
		return nil, err
	}
	if err := m.store.RecordTransition(ctx, projectID, from, to, payload.Migrated); err != nil {
		return nil, err
	}
	if err := m.profiles.RecordTransfer(ctx, proj.OwnerID); err != nil {
		logger.Warn("failed to record transfer on profile", logging.Error(err))
	}
	if to == workflow.PhaseFinalization {
		refreshed, err := m.store.SectionsByProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		payload.Document = AssembleDocument(refreshed)
	}

	logger.Info("context transferred",
		logging.Int("migrated", payload.Migrated),
		logging.Int("skipped", payload.SkippedCount))
	return payload, nil
}

// enrich computes the advisory delta for one section. A failing or
// timed-out completion provider degrades to the local engine's output plus
// a warning; it never blocks the transfer.
func (m *Manager) enrich(ctx context.Context, proj *project.Project, prof *profile.UserProfile, section *project.Section, to workflow.Phase) (*project.Suggestions, []string) {
	input := adaptive.Input{
		UserID:      proj.OwnerID,
		Discipline:  proj.Discipline,
		Style:       proj.Style,
		Section:     section,
		TargetPhase: to,
	}
	var warnings []string
	local, err := m.engine.Suggest(ctx, input)
	if err != nil {
		local = &project.Suggestions{}
		warning := fmt.Sprintf("section %d (%s) : moteur adaptatif indisponible, transformation de base seulement", section.ID, section.Title)
		warnings = append(warnings, warning)
		m.logger.Warn("adaptive engine unavailable, continuing without it",
			logging.Int64(logging.FieldSectionID, section.ID),
			logging.Error(err))
	}

	delta := transformDelta(section, prof, to)
	delta = mergeSuggestions(delta, local)
	delta.Warnings = append(delta.Warnings, warnings...)

	if m.ai != nil {
		remote, err := m.ai.Suggest(ctx, ai.SuggestionRequest{
			ProjectTitle: proj.Title,
			DocType:      proj.DocType,
			Discipline:   proj.Discipline,
			Style:        proj.Style,
			Section:      section,
			TargetPhase:  to,
		})
		if err != nil {
			warning := fmt.Sprintf("section %d (%s) : enrichissement IA indisponible, suggestions locales seulement", section.ID, section.Title)
			warnings = append(warnings, warning)
			delta.Warnings = append(delta.Warnings, warning)
			m.logger.Warn("completion provider unavailable, continuing without it",
				logging.Int64(logging.FieldSectionID, section.ID),
				logging.Error(err))
		} else {
			delta = mergeSuggestions(delta, remote)
		}
	}
	return delta, warnings
}

// currentPhase maps a project status to the phase it is working in.
func currentPhase(status workflow.ProjectStatus) workflow.Phase {
	switch status {
	case workflow.ProjectInDrafting:
		return workflow.PhaseDrafting
	case workflow.ProjectInRevision:
		return workflow.PhaseRevision
	case workflow.ProjectFinalized:
		return workflow.PhaseFinalization
	default:
		return workflow.PhaseStoryboard
	}
}
