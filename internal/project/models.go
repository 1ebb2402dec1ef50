package project

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"plume/internal/workflow"
)

// Style is a recognized writing style. The canonical names keep the accents
// of the source material; ParseStyle matches accent-insensitively.
type Style string

const (
	StyleStandard  Style = "Standard"
	StyleAcademic  Style = "Académique"
	StyleCresus    Style = "CRÉSUS-NAKAMOTO"
	StyleCryptoEth Style = "AcademicWritingCrypto"
)

var allStyles = []Style{StyleStandard, StyleAcademic, StyleCresus, StyleCryptoEth}

// Discipline is a recognized academic discipline.
type Discipline string

const (
	DisciplineSocialSciences Discipline = "Sciences sociales"
	DisciplineEconomics      Discipline = "Économie"
	DisciplineLaw            Discipline = "Droit"
	DisciplineComputing      Discipline = "Informatique"
	DisciplineOther          Discipline = "Autre"
)

var allDisciplines = []Discipline{
	DisciplineSocialSciences,
	DisciplineEconomics,
	DisciplineLaw,
	DisciplineComputing,
	DisciplineOther,
}

// DocumentType classifies the kind of document a project produces.
type DocumentType string

const (
	DocArticle DocumentType = "article"
	DocMemoire DocumentType = "mémoire"
	DocThesis  DocumentType = "thèse"
	DocEssay   DocumentType = "essai"
	DocReport  DocumentType = "rapport"
)

var allDocumentTypes = []DocumentType{DocArticle, DocMemoire, DocThesis, DocEssay, DocReport}

// CitationStyle is a recognized citation format.
type CitationStyle string

const (
	CitationAPA     CitationStyle = "APA"
	CitationMLA     CitationStyle = "MLA"
	CitationChicago CitationStyle = "Chicago"
	CitationHarvard CitationStyle = "Harvard"
)

var allCitationStyles = []CitationStyle{CitationAPA, CitationMLA, CitationChicago, CitationHarvard}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey lowercases and strips diacritics so user input matches canonical
// enum values regardless of accents.
func foldKey(value string) string {
	folded, _, err := transform.String(foldTransformer, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// ParseStyle converts a string into a recognized Style.
func ParseStyle(value string) (Style, bool) {
	key := foldKey(value)
	for _, style := range allStyles {
		if foldKey(string(style)) == key {
			return style, true
		}
	}
	return "", false
}

// Styles returns the recognized writing styles.
func Styles() []Style {
	cp := make([]Style, len(allStyles))
	copy(cp, allStyles)
	return cp
}

// ParseDiscipline converts a string into a recognized Discipline.
func ParseDiscipline(value string) (Discipline, bool) {
	key := foldKey(value)
	for _, discipline := range allDisciplines {
		if foldKey(string(discipline)) == key {
			return discipline, true
		}
	}
	return "", false
}

// Disciplines returns the recognized academic disciplines.
func Disciplines() []Discipline {
	cp := make([]Discipline, len(allDisciplines))
	copy(cp, allDisciplines)
	return cp
}

// ParseDocumentType converts a string into a recognized DocumentType.
func ParseDocumentType(value string) (DocumentType, bool) {
	key := foldKey(value)
	for _, docType := range allDocumentTypes {
		if foldKey(string(docType)) == key {
			return docType, true
		}
	}
	return "", false
}

// ParseCitationStyle converts a string into a recognized CitationStyle.
func ParseCitationStyle(value string) (CitationStyle, bool) {
	key := foldKey(value)
	for _, style := range allCitationStyles {
		if foldKey(string(style)) == key {
			return style, true
		}
	}
	return "", false
}

// Citation is one source reference attached to a section. Order within the
// slice is the citation order of the section.
type Citation struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	Locator string `json:"locator,omitempty"`
}

// Suggestions carries the enrichment output sedimented onto a section. These
// fields are advisory; nothing here ever replaces user-authored content
// without an explicit accept.
type Suggestions struct {
	ContentHints   []string `json:"content_hints,omitempty"`
	WritingPrompts []string `json:"writing_prompts,omitempty"`
	StyleAdvice    []string `json:"style_advice,omitempty"`
	CitationCues   []string `json:"citation_cues,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Empty reports whether the suggestion set carries no advisory content.
func (s *Suggestions) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.ContentHints) == 0 &&
		len(s.WritingPrompts) == 0 &&
		len(s.StyleAdvice) == 0 &&
		len(s.CitationCues) == 0
}

// Section is the atomic unit of document structure carried through all
// phases. The revision counter enforces optimistic concurrency: every
// successful write increments it, and a write presenting an older revision
// is rejected.
type Section struct {
	ID          int64
	ProjectID   string
	Ordinal     int
	Title       string
	Thesis      string
	Guidance    string
	Body        string
	Citations   []Citation
	Suggestions *Suggestions
	Status      workflow.SectionStatus
	Coherence   *float64
	Density     *float64
	Revision    int64
	// BodyEditedAt records the last manual edit to the body. Enrichment
	// compares it against EnrichedAt to keep automatic passes additive.
	BodyEditedAt *time.Time
	EnrichedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ManuallyEditedSince reports whether the body changed by hand after the
// given enrichment pass.
func (s *Section) ManuallyEditedSince(enrichedAt *time.Time) bool {
	if s.BodyEditedAt == nil {
		return false
	}
	if enrichedAt == nil {
		return true
	}
	return s.BodyEditedAt.After(*enrichedAt)
}

// WordCount returns the number of whitespace-separated words in the body.
func (s *Section) WordCount() int {
	return len(strings.Fields(s.Body))
}

// Project owns an ordered sequence of sections and the metadata shared by
// every phase. OwnerID is a weak back-reference to the user profile used for
// lookup, never lifecycle control.
type Project struct {
	ID         string
	OwnerID    string
	Title      string
	DocType    DocumentType
	Discipline Discipline
	Style      Style
	Status     workflow.ProjectStatus
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Deleted reports whether the project has been soft-deleted.
func (p *Project) Deleted() bool {
	return p.DeletedAt != nil
}

// Transition is one entry of a project's phase transition log.
type Transition struct {
	ID            int64
	ProjectID     string
	FromPhase     workflow.Phase
	ToPhase       workflow.Phase
	SectionsMoved int
	CreatedAt     time.Time
}
