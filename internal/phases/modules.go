package phases

import (
	"context"
	"fmt"

	"plume/internal/project"
	"plume/internal/sediment"
	"plume/internal/services"
	"plume/internal/workflow"
)

// base carries what every module shares.
type base struct {
	phase   workflow.Phase
	manager *sediment.Manager
	store   *project.Store
}

func (b *base) Phase() workflow.Phase { return b.phase }

func (b *base) HealthCheck(ctx context.Context) Health {
	if b.manager == nil || b.store == nil {
		return Unhealthy(string(b.phase), "sedimentation manager not wired")
	}
	return Healthy(string(b.phase))
}

// transfer runs the forward transfer out of the module's phase.
func (b *base) transfer(ctx context.Context, proj *project.Project) (*sediment.Payload, error) {
	next, ok := b.phase.Next()
	if !ok {
		return nil, services.Wrap(services.ErrPhaseOrder, "phases", "complete",
			fmt.Sprintf("%s has no following phase", b.phase), nil)
	}
	return b.manager.TransferContext(ctx, proj.ID, b.phase, next)
}

// Storyboard owns outline construction: sections, theses, guidance.
type Storyboard struct {
	base
}

// NewStoryboard builds the storyboard module.
func NewStoryboard(manager *sediment.Manager, store *project.Store) *Storyboard {
	return &Storyboard{base{phase: workflow.PhaseStoryboard, manager: manager, store: store}}
}

// Prepare moves a freshly created project into active storyboard work.
func (s *Storyboard) Prepare(ctx context.Context, proj *project.Project) error {
	if proj.Status != workflow.ProjectDraft {
		return nil
	}
	return s.store.UpdateProjectStatus(ctx, proj.ID, workflow.ProjectInStoryboard)
}

// Complete transfers the outline into drafting.
func (s *Storyboard) Complete(ctx context.Context, proj *project.Project) (*sediment.Payload, error) {
	return s.transfer(ctx, proj)
}

// Drafting owns body writing against the pre-filled outline material.
type Drafting struct {
	base
}

// NewDrafting builds the drafting module.
func NewDrafting(manager *sediment.Manager, store *project.Store) *Drafting {
	return &Drafting{base{phase: workflow.PhaseDrafting, manager: manager, store: store}}
}

// Prepare is a no-op: the transfer into drafting already pre-filled the
// sections.
func (d *Drafting) Prepare(ctx context.Context, proj *project.Project) error {
	return nil
}

// Complete transfers the drafted bodies into revision.
func (d *Drafting) Complete(ctx context.Context, proj *project.Project) (*sediment.Payload, error) {
	return d.transfer(ctx, proj)
}

// Revision owns reworking bodies under the computed quality metrics.
type Revision struct {
	base
}

// NewRevision builds the revision module.
func NewRevision(manager *sediment.Manager, store *project.Store) *Revision {
	return &Revision{base{phase: workflow.PhaseRevision, manager: manager, store: store}}
}

// Prepare is a no-op: metrics were computed by the transfer into revision.
func (r *Revision) Prepare(ctx context.Context, proj *project.Project) error {
	return nil
}

// Complete transfers the revised content into finalization.
func (r *Revision) Complete(ctx context.Context, proj *project.Project) (*sediment.Payload, error) {
	return r.transfer(ctx, proj)
}

// Finalization owns the terminal freeze: every section moves from
// finalizing to finalized so the document can be exported.
type Finalization struct {
	base
}

// NewFinalization builds the finalization module.
func NewFinalization(manager *sediment.Manager, store *project.Store) *Finalization {
	return &Finalization{base{phase: workflow.PhaseFinalization, manager: manager, store: store}}
}

// Prepare is a no-op: the transfer into finalization assembled the view.
func (f *Finalization) Prepare(ctx context.Context, proj *project.Project) error {
	return nil
}

// Complete freezes every section. There is no next phase; the payload
// carries the final ordered document.
func (f *Finalization) Complete(ctx context.Context, proj *project.Project) (*sediment.Payload, error) {
	sections, err := f.store.SectionsByProject(ctx, proj.ID)
	if err != nil {
		return nil, err
	}
	payload := &sediment.Payload{
		ProjectID: proj.ID,
		From:      workflow.PhaseFinalization,
		To:        workflow.PhaseFinalization,
	}
	for _, section := range sections {
		if section.Status == workflow.SectionFinalized {
			payload.SkippedCount++
			continue
		}
		if !section.Status.AtLeast(workflow.SectionFinalizing) {
			return nil, services.Wrap(services.ErrPhaseOrder, "phases", "finalize",
				fmt.Sprintf("section %d has not entered finalization", section.ID), nil)
		}
		section.Status = workflow.SectionFinalized
		if _, err := f.store.UpsertSection(ctx, section); err != nil {
			return nil, err
		}
		payload.Migrated++
	}
	refreshed, err := f.store.SectionsByProject(ctx, proj.ID)
	if err != nil {
		return nil, err
	}
	payload.Document = sediment.AssembleDocument(refreshed)
	return payload, nil
}
