package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"plume/internal/project"
	"plume/internal/services"
	"plume/internal/testsupport"
	"plume/internal/workflow"
)

func TestCreateAndGetProject(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	created, err := store.CreateProject(ctx, "tester", "Monnaies numériques", "article", "Académique", "Économie")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated project id")
	}
	if created.Status != workflow.ProjectDraft {
		t.Fatalf("expected draft status, got %s", created.Status)
	}

	fetched, err := store.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if fetched.Title != "Monnaies numériques" {
		t.Fatalf("unexpected title %q", fetched.Title)
	}
	if fetched.Style != project.StyleAcademic {
		t.Fatalf("unexpected style %q", fetched.Style)
	}
	if fetched.Discipline != project.DisciplineEconomics {
		t.Fatalf("unexpected discipline %q", fetched.Discipline)
	}
}

func TestCreateProjectAcceptsUnaccentedInput(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	created, err := store.CreateProject(context.Background(), "tester", "Essai", "memoire", "academique", "economie")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if created.DocType != project.DocMemoire {
		t.Fatalf("expected mémoire, got %q", created.DocType)
	}
	if created.Style != project.StyleAcademic {
		t.Fatalf("expected Académique, got %q", created.Style)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := []struct {
		name       string
		title      string
		docType    string
		style      string
		discipline string
	}{
		{"empty title", "   ", "article", "Standard", "Droit"},
		{"bad doc type", "Titre", "roman", "Standard", "Droit"},
		{"bad style", "Titre", "article", "gothique", "Droit"},
		{"bad discipline", "Titre", "article", "Standard", "astrologie"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.CreateProject(ctx, "tester", tc.title, tc.docType, tc.style, tc.discipline)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDeleteProjectHidesFromReads(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")

	if err := store.DeleteProject(ctx, proj.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := store.GetProject(ctx, proj.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	projects, err := store.ListProjects(ctx, "tester")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("expected no projects listed, got %d", len(projects))
	}
}

func TestAddSectionAssignsContiguousOrdinals(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")

	for i := 0; i < 3; i++ {
		testsupport.NewSection(t, store, proj.ID, "Partie")
	}
	sections, err := store.SectionsByProject(ctx, proj.ID)
	if err != nil {
		t.Fatalf("SectionsByProject: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	for i, section := range sections {
		if section.Ordinal != i {
			t.Fatalf("section %d has ordinal %d", i, section.Ordinal)
		}
		if section.Status != workflow.SectionOutlining {
			t.Fatalf("expected outlining status, got %s", section.Status)
		}
		if section.Revision != 1 {
			t.Fatalf("expected revision 1, got %d", section.Revision)
		}
	}
}

func TestUpsertSectionBumpsRevision(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")
	section := testsupport.NewSection(t, store, proj.ID, "Introduction")

	section.Body = "Premier jet du corps de la section."
	section.Status = workflow.SectionDrafting
	updated, err := store.UpsertSection(ctx, section)
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	if updated.Revision != section.Revision+1 {
		t.Fatalf("expected revision %d, got %d", section.Revision+1, updated.Revision)
	}
	if updated.BodyEditedAt == nil {
		t.Fatal("expected body edit timestamp after body change")
	}
	if updated.Status != workflow.SectionDrafting {
		t.Fatalf("unexpected status %s", updated.Status)
	}
}

func TestUpsertSectionStaleRevisionConflicts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")
	section := testsupport.NewSection(t, store, proj.ID, "Introduction")

	first := *section
	second := *section

	first.Body = "Version du premier rédacteur."
	if _, err := store.UpsertSection(ctx, &first); err != nil {
		t.Fatalf("first UpsertSection: %v", err)
	}

	second.Body = "Version du second rédacteur."
	_, err := store.UpsertSection(ctx, &second)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict for stale revision, got %v", err)
	}

	// The loser reloads and retries against the fresh revision.
	reloaded, err := store.GetSection(ctx, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	reloaded.Body = "Version du second rédacteur, fusionnée."
	if _, err := store.UpsertSection(ctx, reloaded); err != nil {
		t.Fatalf("retry UpsertSection: %v", err)
	}
}

func TestUpsertSectionRejectsOrdinalChange(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")
	testsupport.NewSection(t, store, proj.ID, "Un")
	section := testsupport.NewSection(t, store, proj.ID, "Deux")

	section.Ordinal = 0
	if _, err := store.UpsertSection(ctx, section); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for ordinal change, got %v", err)
	}
}

func TestUpsertSectionPreservesBodyEditTimestamp(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")
	section := testsupport.NewSection(t, store, proj.ID, "Introduction")

	section.Body = "Texte écrit à la main."
	edited, err := store.UpsertSection(ctx, section)
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	firstEdit := edited.BodyEditedAt
	if firstEdit == nil {
		t.Fatal("expected body edit timestamp")
	}

	// A metadata-only write must not move the body edit marker.
	now := time.Now().UTC()
	edited.EnrichedAt = &now
	edited.Suggestions = &project.Suggestions{ContentHints: []string{"développer l'exemple"}}
	enriched, err := store.UpsertSection(ctx, edited)
	if err != nil {
		t.Fatalf("UpsertSection enrich: %v", err)
	}
	if enriched.BodyEditedAt == nil || !enriched.BodyEditedAt.Equal(*firstEdit) {
		t.Fatalf("body edit timestamp moved: %v vs %v", enriched.BodyEditedAt, firstEdit)
	}
	if enriched.EnrichedAt == nil {
		t.Fatal("expected enrichment timestamp")
	}
	if enriched.Suggestions == nil || len(enriched.Suggestions.ContentHints) != 1 {
		t.Fatalf("suggestions not persisted: %+v", enriched.Suggestions)
	}
}

func TestUpsertSectionPersistsCitations(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")
	section := testsupport.NewSection(t, store, proj.ID, "Cadre théorique")

	section.Citations = []project.Citation{
		{Text: "Nakamoto, S. (2008)", Source: "Bitcoin: A Peer-to-Peer Electronic Cash System"},
		{Text: "Ostrom, E. (1990)", Source: "Governing the Commons", Locator: "ch. 3"},
	}
	updated, err := store.UpsertSection(ctx, section)
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	if len(updated.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(updated.Citations))
	}
	if updated.Citations[1].Locator != "ch. 3" {
		t.Fatalf("unexpected locator %q", updated.Citations[1].Locator)
	}
}

func TestReorderSections(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")

	a := testsupport.NewSection(t, store, proj.ID, "A")
	b := testsupport.NewSection(t, store, proj.ID, "B")
	c := testsupport.NewSection(t, store, proj.ID, "C")

	if err := store.ReorderSections(ctx, proj.ID, []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderSections: %v", err)
	}

	sections, err := store.SectionsByProject(ctx, proj.ID)
	if err != nil {
		t.Fatalf("SectionsByProject: %v", err)
	}
	titles := []string{sections[0].Title, sections[1].Title, sections[2].Title}
	if titles[0] != "C" || titles[1] != "A" || titles[2] != "B" {
		t.Fatalf("unexpected order %v", titles)
	}
	for i, section := range sections {
		if section.Ordinal != i {
			t.Fatalf("ordinal gap at position %d: %d", i, section.Ordinal)
		}
	}
}

func TestReorderSectionsRejectsPartialOrder(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")

	a := testsupport.NewSection(t, store, proj.ID, "A")
	testsupport.NewSection(t, store, proj.ID, "B")

	if err := store.ReorderSections(ctx, proj.ID, []int64{a.ID}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for partial order, got %v", err)
	}
	if err := store.ReorderSections(ctx, proj.ID, []int64{a.ID, a.ID}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for duplicate id, got %v", err)
	}
	if err := store.ReorderSections(ctx, proj.ID, []int64{a.ID, 999}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for foreign id, got %v", err)
	}
}

func TestTransitionLog(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	proj := testsupport.NewProject(t, store, "Projet")

	if err := store.RecordTransition(ctx, proj.ID, workflow.PhaseStoryboard, workflow.PhaseDrafting, 4); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}
	transitions, err := store.ListTransitions(ctx, proj.ID)
	if err != nil {
		t.Fatalf("ListTransitions: %v", err)
	}
	if len(transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(transitions))
	}
	if transitions[0].FromPhase != workflow.PhaseStoryboard || transitions[0].ToPhase != workflow.PhaseDrafting {
		t.Fatalf("unexpected transition %+v", transitions[0])
	}
	if transitions[0].SectionsMoved != 4 {
		t.Fatalf("unexpected sections moved %d", transitions[0].SectionsMoved)
	}
}

func TestSectionsForPhaseFiltersByLifecycle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	proj := testsupport.NewProject(t, store, "Phases")
	outline := testsupport.NewSection(t, store, proj.ID, "Plan")
	drafting := testsupport.NewSection(t, store, proj.ID, "Corps")

	drafting.Status = workflow.SectionDrafting
	if _, err := store.UpsertSection(ctx, drafting); err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	storyboard, err := store.SectionsForPhase(ctx, proj.ID, workflow.PhaseStoryboard)
	if err != nil {
		t.Fatalf("SectionsForPhase storyboard: %v", err)
	}
	if len(storyboard) != 1 || storyboard[0].ID != outline.ID {
		t.Fatalf("expected only the outlining section, got %d", len(storyboard))
	}

	inDrafting, err := store.SectionsForPhase(ctx, proj.ID, workflow.PhaseDrafting)
	if err != nil {
		t.Fatalf("SectionsForPhase drafting: %v", err)
	}
	if len(inDrafting) != 1 || inDrafting[0].ID != drafting.ID {
		t.Fatalf("expected only the drafting section, got %d", len(inDrafting))
	}
}
