package adaptive_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"plume/internal/adaptive"
	"plume/internal/logging"
	"plume/internal/profile"
	"plume/internal/project"
	"plume/internal/testsupport"
	"plume/internal/workflow"
)

func newEngine(t *testing.T) (*adaptive.Engine, *profile.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	profiles := profile.NewStore(testsupport.MustOpenDB(t, cfg), logging.NewNop())
	return adaptive.NewEngine(cfg, profiles, logging.NewNop()), profiles
}

func sectionFixture() *project.Section {
	return &project.Section{
		ID:       1,
		Title:    "Cadre institutionnel",
		Guidance: "comparer trois juridictions",
	}
}

func TestSuggestIsDeterministic(t *testing.T) {
	engine, _ := newEngine(t)
	input := adaptive.Input{
		UserID:      "alex",
		Discipline:  project.DisciplineEconomics,
		Style:       project.StyleAcademic,
		Section:     sectionFixture(),
		TargetPhase: workflow.PhaseDrafting,
	}

	first, err := engine.Suggest(context.Background(), input)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	second, err := engine.Suggest(context.Background(), input)
	if err != nil {
		t.Fatalf("Suggest again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("suggestions differ between runs:\n%+v\n%+v", first, second)
	}
}

func TestSuggestUsesProfileDefaultsWhenMissing(t *testing.T) {
	engine, _ := newEngine(t)

	suggestions, err := engine.Suggest(context.Background(), adaptive.Input{
		UserID:      "nobody",
		Section:     sectionFixture(),
		TargetPhase: workflow.PhaseDrafting,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions.ContentHints) == 0 {
		t.Fatal("expected content hints for a bare outline")
	}
}

func TestSuggestFlagsMissingThesis(t *testing.T) {
	engine, _ := newEngine(t)

	suggestions, err := engine.Suggest(context.Background(), adaptive.Input{
		UserID:      "alex",
		Section:     sectionFixture(),
		TargetPhase: workflow.PhaseDrafting,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	found := false
	for _, hint := range suggestions.ContentHints {
		if containsFold(hint, "thèse") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a thesis hint, got %v", suggestions.ContentHints)
	}
}

func TestRejectedKindIsMuted(t *testing.T) {
	engine, profiles := newEngine(t)
	ctx := context.Background()

	// Four straight rejections of style advice push the kind below the
	// acceptance floor.
	for i := 0; i < 4; i++ {
		if err := profiles.RecordFeedback(ctx, "alex", adaptive.KindStyleAdvice, false); err != nil {
			t.Fatalf("RecordFeedback: %v", err)
		}
	}

	suggestions, err := engine.Suggest(ctx, adaptive.Input{
		UserID:      "alex",
		Style:       project.StyleAcademic,
		Section:     sectionFixture(),
		TargetPhase: workflow.PhaseDrafting,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions.StyleAdvice) != 0 {
		t.Fatalf("expected muted style advice, got %v", suggestions.StyleAdvice)
	}
	if len(suggestions.ContentHints) == 0 {
		t.Fatal("other kinds should be unaffected")
	}
}

func TestFewDataPointsKeepKind(t *testing.T) {
	engine, profiles := newEngine(t)
	ctx := context.Background()

	// Two rejections are not enough history to mute anything.
	for i := 0; i < 2; i++ {
		if err := profiles.RecordFeedback(ctx, "alex", adaptive.KindStyleAdvice, false); err != nil {
			t.Fatalf("RecordFeedback: %v", err)
		}
	}

	suggestions, err := engine.Suggest(ctx, adaptive.Input{
		UserID:      "alex",
		Style:       project.StyleAcademic,
		Section:     sectionFixture(),
		TargetPhase: workflow.PhaseDrafting,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions.StyleAdvice) == 0 {
		t.Fatal("kind with thin history should still be suggested")
	}
}

func TestCitationCuesFollowDiscipline(t *testing.T) {
	engine, _ := newEngine(t)
	body := ""
	for i := 0; i < 120; i++ {
		body += "mot "
	}
	section := sectionFixture()
	section.Body = body

	suggestions, err := engine.Suggest(context.Background(), adaptive.Input{
		UserID:      "alex",
		Discipline:  project.DisciplineLaw,
		Section:     section,
		TargetPhase: workflow.PhaseRevision,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions.CitationCues) == 0 {
		t.Fatal("expected citation cues for an unsourced long body")
	}
	if !containsFold(suggestions.CitationCues[0], "jurisprudence") {
		t.Fatalf("expected law-specific cue, got %q", suggestions.CitationCues[0])
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
