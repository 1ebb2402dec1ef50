package project_test

import (
	"testing"
	"time"

	"plume/internal/project"
)

func TestParseStyleFoldsAccentsAndCase(t *testing.T) {
	cases := []struct {
		input string
		want  project.Style
	}{
		{"Standard", project.StyleStandard},
		{"standard", project.StyleStandard},
		{"Académique", project.StyleAcademic},
		{"academique", project.StyleAcademic},
		{"ACADEMIQUE", project.StyleAcademic},
		{"crésus-nakamoto", project.StyleCresus},
		{"CRESUS-NAKAMOTO", project.StyleCresus},
		{"academicwritingcrypto", project.StyleCryptoEth},
	}
	for _, tc := range cases {
		got, ok := project.ParseStyle(tc.input)
		if !ok {
			t.Fatalf("ParseStyle(%q) not recognized", tc.input)
		}
		if got != tc.want {
			t.Fatalf("ParseStyle(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, ok := project.ParseStyle("baroque"); ok {
		t.Fatal("expected baroque to be rejected")
	}
}

func TestParseDisciplineFoldsAccents(t *testing.T) {
	got, ok := project.ParseDiscipline("economie")
	if !ok || got != project.DisciplineEconomics {
		t.Fatalf("ParseDiscipline(economie) = %q, %v", got, ok)
	}
	got, ok = project.ParseDiscipline("Sciences Sociales")
	if !ok || got != project.DisciplineSocialSciences {
		t.Fatalf("ParseDiscipline(Sciences Sociales) = %q, %v", got, ok)
	}
}

func TestParseDocumentType(t *testing.T) {
	got, ok := project.ParseDocumentType("these")
	if !ok || got != project.DocThesis {
		t.Fatalf("ParseDocumentType(these) = %q, %v", got, ok)
	}
	if _, ok := project.ParseDocumentType("poème"); ok {
		t.Fatal("expected poème to be rejected")
	}
}

func TestParseCitationStyle(t *testing.T) {
	got, ok := project.ParseCitationStyle("apa")
	if !ok || got != project.CitationAPA {
		t.Fatalf("ParseCitationStyle(apa) = %q, %v", got, ok)
	}
	got, ok = project.ParseCitationStyle("Harvard")
	if !ok || got != project.CitationHarvard {
		t.Fatalf("ParseCitationStyle(Harvard) = %q, %v", got, ok)
	}
}

func TestSuggestionsEmpty(t *testing.T) {
	var nilSuggestions *project.Suggestions
	if !nilSuggestions.Empty() {
		t.Fatal("nil suggestions should be empty")
	}
	if !(&project.Suggestions{Warnings: []string{"seul avertissement"}}).Empty() {
		t.Fatal("warnings alone should still count as empty")
	}
	if (&project.Suggestions{ContentHints: []string{"hint"}}).Empty() {
		t.Fatal("content hints should make suggestions non-empty")
	}
}

func TestManuallyEditedSince(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	later := base.Add(time.Hour)

	section := &project.Section{}
	if section.ManuallyEditedSince(&base) {
		t.Fatal("no body edit recorded, should not report edited")
	}

	section.BodyEditedAt = &later
	if !section.ManuallyEditedSince(&base) {
		t.Fatal("edit after enrichment should report edited")
	}
	if !section.ManuallyEditedSince(nil) {
		t.Fatal("edit with no enrichment pass should report edited")
	}

	section.BodyEditedAt = &base
	if section.ManuallyEditedSince(&later) {
		t.Fatal("edit before enrichment should not report edited")
	}
}

func TestWordCount(t *testing.T) {
	section := &project.Section{Body: "Une  phrase\ncourte ici."}
	if got := section.WordCount(); got != 4 {
		t.Fatalf("WordCount = %d, want 4", got)
	}
}
