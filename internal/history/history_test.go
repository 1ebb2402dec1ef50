package history_test

import (
	"context"
	"errors"
	"testing"

	"plume/internal/history"
	"plume/internal/logging"
	"plume/internal/services"
	"plume/internal/testsupport"
	"plume/internal/workflow"
)

func TestRecordAndLoadSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := history.NewManager(store, logging.NewNop())
	ctx := context.Background()

	proj := testsupport.NewProject(t, store, "Projet")
	section := testsupport.NewSection(t, store, proj.ID, "Introduction")
	section.Body = "Corps de la section avant transition."
	if _, err := store.UpsertSection(ctx, section); err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	id, err := manager.Record(ctx, proj.ID, workflow.PhaseStoryboard, "avant transfert vers drafting")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	snapshot, err := manager.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snapshot.ProjectID != proj.ID {
		t.Fatalf("unexpected project id %q", snapshot.ProjectID)
	}
	if len(snapshot.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(snapshot.Sections))
	}
	if snapshot.Sections[0].Body != "Corps de la section avant transition." {
		t.Fatalf("snapshot body mismatch: %q", snapshot.Sections[0].Body)
	}

	// Loading a snapshot must not touch the live section.
	live, err := store.GetSection(ctx, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if live.Revision != section.Revision+1 {
		t.Fatalf("live section changed unexpectedly: revision %d", live.Revision)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := history.NewManager(store, logging.NewNop())
	ctx := context.Background()

	proj := testsupport.NewProject(t, store, "Projet")
	descriptions := []string{"premier", "deuxième", "troisième"}
	for _, description := range descriptions {
		if _, err := manager.Record(ctx, proj.ID, workflow.PhaseStoryboard, description); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	records, err := manager.List(ctx, proj.ID, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Description != "troisième" {
		t.Fatalf("expected newest first, got %q", records[0].Description)
	}

	all, err := manager.List(ctx, proj.ID, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestRestoreRoundTripPreservesFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := history.NewManager(store, logging.NewNop())
	ctx := context.Background()

	proj := testsupport.NewProject(t, store, "Projet")
	section := testsupport.NewSection(t, store, proj.ID, "Introduction")
	section.Body = "Texte d'origine à retrouver."
	before, err := store.UpsertSection(ctx, section)
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	id, err := manager.Record(ctx, proj.ID, workflow.PhaseDrafting, "avant réécriture")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Mangle the live section, then restore.
	before.Body = "Réécriture regrettée."
	if _, err := store.UpsertSection(ctx, before); err != nil {
		t.Fatalf("UpsertSection rewrite: %v", err)
	}

	restored, err := manager.Restore(ctx, id, section.ID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Body != "Texte d'origine à retrouver." {
		t.Fatalf("restored body mismatch: %q", restored.Body)
	}
	if restored.Title != before.Title || restored.Thesis != before.Thesis {
		t.Fatalf("restored metadata mismatch: %+v", restored)
	}

	// Restore alone changes nothing; the explicit upsert applies it.
	live, err := store.GetSection(ctx, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if live.Body != "Réécriture regrettée." {
		t.Fatalf("restore mutated live state: %q", live.Body)
	}

	restored.Revision = live.Revision
	applied, err := store.UpsertSection(ctx, restored)
	if err != nil {
		t.Fatalf("UpsertSection restore: %v", err)
	}
	if applied.Body != "Texte d'origine à retrouver." {
		t.Fatalf("applied body mismatch: %q", applied.Body)
	}
}

func TestLoadUnknownVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := history.NewManager(store, logging.NewNop())

	if _, err := manager.Load(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
