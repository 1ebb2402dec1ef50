// Package quality computes deterministic text metrics for section bodies.
// The scores are heuristics meant for ordering and thresholds, not absolute
// judgments; the same body always yields the same scores.
package quality

import (
	"strings"
	"unicode"
)

// Metrics holds the computed scores for one body of text, each in [0, 1].
type Metrics struct {
	// Coherence estimates how well consecutive sentences hang together,
	// from vocabulary overlap and connective use.
	Coherence float64
	// Density estimates informational richness from lexical variety and
	// sentence length balance.
	Density float64
}

// French academic connectives that signal explicit articulation between
// sentences.
var connectives = []string{
	"donc", "ainsi", "cependant", "toutefois", "néanmoins", "par conséquent",
	"en effet", "d'une part", "d'autre part", "en outre", "par ailleurs",
	"de plus", "enfin", "d'abord", "ensuite", "or", "pourtant", "notamment",
}

// Score computes coherence and density for the given body. An empty or
// single-sentence body scores zero coherence; an empty body scores zero
// density.
func Score(body string) Metrics {
	sentences := splitSentences(body)
	words := tokenize(body)
	return Metrics{
		Coherence: coherence(sentences),
		Density:   density(words, sentences),
	}
}

func coherence(sentences []string) float64 {
	if len(sentences) < 2 {
		return 0
	}

	var overlapSum float64
	for i := 1; i < len(sentences); i++ {
		overlapSum += vocabularyOverlap(sentences[i-1], sentences[i])
	}
	overlap := overlapSum / float64(len(sentences)-1)

	connectiveHits := 0
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, connective := range connectives {
			if strings.Contains(lower, connective) {
				connectiveHits++
				break
			}
		}
	}
	connectiveRatio := float64(connectiveHits) / float64(len(sentences))

	return clamp(0.6*overlap + 0.4*connectiveRatio)
}

func density(words []string, sentences []string) float64 {
	if len(words) == 0 {
		return 0
	}

	unique := make(map[string]struct{}, len(words))
	longWords := 0
	for _, word := range words {
		unique[word] = struct{}{}
		if len([]rune(word)) >= 7 {
			longWords++
		}
	}
	variety := float64(len(unique)) / float64(len(words))
	richness := float64(longWords) / float64(len(words))

	// Sentences in the 12 to 30 word range read as substantive without
	// running on; score drops linearly outside that band.
	lengthBalance := 0.0
	if len(sentences) > 0 {
		average := float64(len(words)) / float64(len(sentences))
		switch {
		case average >= 12 && average <= 30:
			lengthBalance = 1
		case average < 12:
			lengthBalance = average / 12
		default:
			lengthBalance = clamp(1 - (average-30)/30)
		}
	}

	return clamp(0.4*variety + 0.3*richness + 0.3*lengthBalance)
}

func vocabularyOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	smaller := setA
	larger := setB
	if len(setB) < len(setA) {
		smaller, larger = setB, setA
	}
	shared := 0
	for word := range smaller {
		if _, ok := larger[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(smaller))
}

func wordSet(sentence string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range tokenize(sentence) {
		// Short words are mostly articles and prepositions; shared ones say
		// nothing about topical continuity.
		if len([]rune(word)) >= 4 {
			set[word] = struct{}{}
		}
	}
	return set
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '-'
	})
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.Trim(field, "'-")
		if field != "" {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		sentences = append(sentences, sentence)
	}
	return sentences
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
