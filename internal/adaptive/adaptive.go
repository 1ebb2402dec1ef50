// Package adaptive generates deterministic, locally-computed suggestions
// from the user's profile, the section material, and recent suggestion
// feedback. It never calls a network service; the completion providers
// layer on top of it, they do not replace it.
package adaptive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"plume/internal/config"
	"plume/internal/logging"
	"plume/internal/profile"
	"plume/internal/project"
	"plume/internal/quality"
	"plume/internal/services"
	"plume/internal/workflow"
)

// Suggestion kinds recorded in the feedback log. The engine drops a kind
// whose recent acceptance rate falls below the floor.
const (
	KindContentHints   = "content_hints"
	KindWritingPrompts = "writing_prompts"
	KindStyleAdvice    = "style_advice"
	KindCitationCues   = "citation_cues"
)

// acceptanceFloor is the recent acceptance rate below which a suggestion
// kind is muted for the user. Kinds with fewer than three data points are
// always kept.
const acceptanceFloor = 0.2

// Engine produces suggestions from local signals only.
type Engine struct {
	profiles       *profile.Store
	feedbackWindow int
	logger         *slog.Logger
}

// NewEngine builds an engine over the profile store.
func NewEngine(cfg *config.Config, profiles *profile.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	window := cfg.Adaptive.FeedbackWindow
	if window <= 0 {
		window = 20
	}
	return &Engine{
		profiles:       profiles,
		feedbackWindow: window,
		logger:         logging.NewComponentLogger(logger, "adaptive"),
	}
}

// Input is the section material the engine works from.
type Input struct {
	UserID      string
	Discipline  project.Discipline
	Style       project.Style
	Section     *project.Section
	TargetPhase workflow.Phase
}

// Suggest computes a suggestion set for one section. The same input with
// the same feedback history always yields the same output.
func (e *Engine) Suggest(ctx context.Context, input Input) (*project.Suggestions, error) {
	if input.Section == nil {
		return nil, services.Wrap(services.ErrValidation, "adaptive", "suggest", "section is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTimeout, "adaptive", "suggest", "context done", err)
	}

	prof, err := e.profiles.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	rates, err := e.acceptanceRates(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	discipline := input.Discipline
	if discipline == "" {
		discipline = prof.Discipline
	}
	style := input.Style
	if style == "" {
		style = prof.Style
	}

	suggestions := &project.Suggestions{}
	if rates.keep(KindContentHints) {
		suggestions.ContentHints = contentHints(input.Section, input.TargetPhase)
	}
	if rates.keep(KindWritingPrompts) {
		suggestions.WritingPrompts = writingPrompts(input.Section, prof.PreferredLength, input.TargetPhase)
	}
	if rates.keep(KindStyleAdvice) {
		suggestions.StyleAdvice = styleAdvice(input.Section, style)
	}
	if rates.keep(KindCitationCues) {
		suggestions.CitationCues = citationCues(input.Section, discipline, prof.CitationStyle)
	}
	return suggestions, nil
}

type acceptanceRates map[string]struct {
	accepted int
	total    int
}

func (r acceptanceRates) keep(kind string) bool {
	stats, ok := r[kind]
	if !ok || stats.total < 3 {
		return true
	}
	return float64(stats.accepted)/float64(stats.total) >= acceptanceFloor
}

func (e *Engine) acceptanceRates(ctx context.Context, userID string) (acceptanceRates, error) {
	entries, err := e.profiles.RecentFeedback(ctx, userID, e.feedbackWindow)
	if err != nil {
		return nil, err
	}
	rates := make(acceptanceRates)
	for _, entry := range entries {
		stats := rates[entry.Kind]
		stats.total++
		if entry.Accepted {
			stats.accepted++
		}
		rates[entry.Kind] = stats
	}
	return rates, nil
}

func contentHints(section *project.Section, target workflow.Phase) []string {
	var hints []string
	if section.Thesis == "" {
		hints = append(hints, fmt.Sprintf("Formuler une thèse explicite pour « %s ».", section.Title))
	}
	switch target {
	case workflow.PhaseDrafting:
		if section.Guidance != "" {
			hints = append(hints, "Dérouler chaque consigne du plan en un paragraphe distinct.")
		}
		if section.Body == "" {
			hints = append(hints, "Ouvrir par le constat empirique avant l'appareil théorique.")
		}
	case workflow.PhaseRevision:
		metrics := quality.Score(section.Body)
		if metrics.Coherence < 0.4 && section.WordCount() > 0 {
			hints = append(hints, "Renforcer les transitions entre les paragraphes, l'enchaînement reste implicite.")
		}
		if metrics.Density < 0.4 && section.WordCount() > 0 {
			hints = append(hints, "Densifier le propos : plusieurs passages restent descriptifs.")
		}
	case workflow.PhaseFinalization:
		hints = append(hints, "Relire la section contre la thèse annoncée pour vérifier que rien ne déborde.")
	}
	return hints
}

func writingPrompts(section *project.Section, preferredLength int, target workflow.Phase) []string {
	if target != workflow.PhaseDrafting {
		return nil
	}
	var prompts []string
	if section.Thesis != "" {
		prompts = append(prompts, fmt.Sprintf("Et si l'inverse de « %s » était vrai ? Rédiger la réfutation d'abord.", shorten(section.Thesis, 80)))
	}
	words := section.WordCount()
	if preferredLength > 0 && words < preferredLength/10 {
		prompts = append(prompts, "Écrire dix minutes sans s'arrêter sur le cas le plus simple de la section.")
	}
	return prompts
}

func styleAdvice(section *project.Section, style project.Style) []string {
	var advice []string
	switch style {
	case project.StyleAcademic:
		advice = append(advice, "Maintenir le registre soutenu : bannir les tournures orales et la première personne.")
	case project.StyleCresus:
		advice = append(advice, "Croiser systématiquement la lecture institutionnelle et la lecture protocolaire.")
	case project.StyleCryptoEth:
		advice = append(advice, "Fixer la terminologie des protocoles dès la première occurrence et s'y tenir.")
	}
	if section.WordCount() > 0 {
		average := averageSentenceLength(section.Body)
		if average > 35 {
			advice = append(advice, "Scinder les phrases les plus longues, la moyenne dépasse trente-cinq mots.")
		}
	}
	return advice
}

func citationCues(section *project.Section, discipline project.Discipline, citationStyle project.CitationStyle) []string {
	var cues []string
	if len(section.Citations) == 0 && section.WordCount() > 100 {
		switch discipline {
		case project.DisciplineEconomics:
			cues = append(cues, "Appuyer les affirmations chiffrées sur des séries ou rapports identifiables.")
		case project.DisciplineLaw:
			cues = append(cues, "Citer les textes et la jurisprudence mobilisés, aucun renvoi n'est présent.")
		case project.DisciplineComputing:
			cues = append(cues, "Référencer les articles ou spécifications des systèmes décrits.")
		default:
			cues = append(cues, "Aucune référence pour l'instant : identifier les travaux dont la section dépend.")
		}
	}
	if len(section.Citations) > 0 {
		cues = append(cues, fmt.Sprintf("Vérifier l'uniformité des références au format %s.", citationStyle))
	}
	return cues
}

func averageSentenceLength(body string) float64 {
	sentences := strings.FieldsFunc(body, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	count := 0
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(len(strings.Fields(body))) / float64(count)
}

func shorten(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}
