package ai

import (
	"fmt"
	"strings"

	"plume/internal/project"
	"plume/internal/workflow"
)

const systemPrompt = `Tu es un assistant de rédaction académique. Tu proposes des pistes, ` +
	`jamais du texte final. Réponds uniquement en JSON avec les clés ` +
	`"content_hints", "writing_prompts", "style_advice" et "citation_cues", ` +
	`chacune contenant une liste de chaînes courtes en français.`

var styleInstructions = map[project.Style]string{
	project.StyleStandard: "Style standard : clarté, progression logique, vocabulaire accessible.",
	project.StyleAcademic: "Style académique : registre soutenu, argumentation rigoureuse, références explicites.",
	project.StyleCresus: "Style CRÉSUS-NAKAMOTO : analyse dialectique des monnaies et protocoles, " +
		"croisement institutionnel et technique.",
	project.StyleCryptoEth: "Style AcademicWritingCrypto : écriture académique sur les crypto-actifs, " +
		"précision terminologique des protocoles.",
}

var phaseFocus = map[workflow.Phase]string{
	workflow.PhaseDrafting: "La section passe en rédaction : propose des angles d'attaque et des " +
		"formulations de départ à partir du plan.",
	workflow.PhaseRevision: "La section passe en révision : relève les faiblesses d'argumentation, " +
		"les transitions manquantes et les affirmations à sourcer.",
	workflow.PhaseFinalization: "La section passe en finalisation : vérifie la cohérence d'ensemble, " +
		"l'uniformité des citations et les derniers polissages.",
}

// SuggestionRequest carries everything the prompt needs about one section.
type SuggestionRequest struct {
	ProjectTitle string
	DocType      project.DocumentType
	Discipline   project.Discipline
	Style        project.Style
	Section      *project.Section
	TargetPhase  workflow.Phase
}

func buildRequest(req SuggestionRequest, maxRunes int) Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Projet : %s (%s, %s)\n", req.ProjectTitle, req.DocType, req.Discipline)
	if instruction, ok := styleInstructions[req.Style]; ok {
		b.WriteString(instruction)
		b.WriteString("\n")
	}
	if focus, ok := phaseFocus[req.TargetPhase]; ok {
		b.WriteString(focus)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nSection : %s\n", req.Section.Title)
	if req.Section.Thesis != "" {
		fmt.Fprintf(&b, "Thèse : %s\n", req.Section.Thesis)
	}
	if req.Section.Guidance != "" {
		fmt.Fprintf(&b, "Consignes : %s\n", req.Section.Guidance)
	}
	if req.Section.Body != "" {
		fmt.Fprintf(&b, "\nTexte actuel :\n%s\n", req.Section.Body)
	}

	return Request{
		System: systemPrompt,
		Prompt: truncate(b.String(), maxRunes),
	}
}

// truncate bounds the prompt to maxRunes, cutting at a word boundary when
// one is close. The head of the prompt carries the framing, so the tail of
// the body is what gets dropped.
func truncate(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	cut := string(runes[:maxRunes])
	if idx := strings.LastIndexByte(cut, ' '); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return cut
}
