package phases_test

import (
	"context"
	"strings"
	"testing"

	"plume/internal/adaptive"
	"plume/internal/history"
	"plume/internal/logging"
	"plume/internal/phases"
	"plume/internal/profile"
	"plume/internal/project"
	"plume/internal/sediment"
	"plume/internal/testsupport"
	"plume/internal/workflow"
)

type pipeline struct {
	store        *project.Store
	storyboard   *phases.Storyboard
	drafting     *phases.Drafting
	revision     *phases.Revision
	finalization *phases.Finalization
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	profiles := profile.NewStore(store.DB(), logging.NewNop())
	hist := history.NewManager(store, logging.NewNop())
	engine := adaptive.NewEngine(cfg, profiles, logging.NewNop())
	manager := sediment.NewManager(cfg, store, profiles, hist, engine, nil, logging.NewNop())
	return &pipeline{
		store:        store,
		storyboard:   phases.NewStoryboard(manager, store),
		drafting:     phases.NewDrafting(manager, store),
		revision:     phases.NewRevision(manager, store),
		finalization: phases.NewFinalization(manager, store),
	}
}

func (p *pipeline) reload(t *testing.T, id string) *project.Project {
	t.Helper()
	proj, err := p.store.GetProject(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	return proj
}

func TestStoryboardPrepareActivatesProject(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	proj := testsupport.NewProject(t, p.store, "Projet")

	if err := p.storyboard.Prepare(ctx, proj); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got := p.reload(t, proj.ID).Status; got != workflow.ProjectInStoryboard {
		t.Fatalf("expected in_storyboard, got %s", got)
	}

	// Preparing again is a no-op, not a reset.
	if err := p.storyboard.Prepare(ctx, p.reload(t, proj.ID)); err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if got := p.reload(t, proj.ID).Status; got != workflow.ProjectInStoryboard {
		t.Fatalf("second prepare changed status to %s", got)
	}
}

func TestModulesRunFullWorkflow(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	proj := testsupport.NewProject(t, p.store, "Projet")
	section := testsupport.NewSection(t, p.store, proj.ID, "Introduction")

	if err := p.storyboard.Prepare(ctx, proj); err != nil {
		t.Fatalf("storyboard prepare: %v", err)
	}
	if _, err := p.storyboard.Complete(ctx, p.reload(t, proj.ID)); err != nil {
		t.Fatalf("storyboard complete: %v", err)
	}

	drafted, err := p.store.GetSection(ctx, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	drafted.Body = strings.Repeat("Chaque phrase prolonge l'argument central de la section. ", 12)
	if _, err := p.store.UpsertSection(ctx, drafted); err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	if _, err := p.drafting.Complete(ctx, p.reload(t, proj.ID)); err != nil {
		t.Fatalf("drafting complete: %v", err)
	}
	if _, err := p.revision.Complete(ctx, p.reload(t, proj.ID)); err != nil {
		t.Fatalf("revision complete: %v", err)
	}

	payload, err := p.finalization.Complete(ctx, p.reload(t, proj.ID))
	if err != nil {
		t.Fatalf("finalization complete: %v", err)
	}
	if len(payload.Document) != 1 {
		t.Fatalf("expected document view, got %d sections", len(payload.Document))
	}

	frozen, err := p.store.GetSection(ctx, section.ID)
	if err != nil {
		t.Fatalf("GetSection frozen: %v", err)
	}
	if frozen.Status != workflow.SectionFinalized {
		t.Fatalf("expected finalized section, got %s", frozen.Status)
	}
}

func TestFinalizationRejectsUnreadySections(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	proj := testsupport.NewProject(t, p.store, "Projet")
	testsupport.NewSection(t, p.store, proj.ID, "Introduction")

	if _, err := p.finalization.Complete(ctx, proj); err == nil {
		t.Fatal("expected error finalizing a storyboard-stage section")
	}
}

func TestHealthChecks(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	for _, module := range []phases.Module{p.storyboard, p.drafting, p.revision, p.finalization} {
		health := module.HealthCheck(ctx)
		if !health.Ready {
			t.Fatalf("module %s unhealthy: %s", module.Phase(), health.Detail)
		}
		if health.Name != string(module.Phase()) {
			t.Fatalf("health name mismatch: %s vs %s", health.Name, module.Phase())
		}
	}
}
