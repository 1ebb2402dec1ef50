package quality

import "testing"

func TestScoreEmptyBody(t *testing.T) {
	metrics := Score("")
	if metrics.Coherence != 0 || metrics.Density != 0 {
		t.Fatalf("empty body should score zero, got %+v", metrics)
	}
}

func TestScoreSingleSentenceHasNoCoherence(t *testing.T) {
	metrics := Score("Une seule phrase isolée sans articulation possible.")
	if metrics.Coherence != 0 {
		t.Fatalf("single sentence coherence should be zero, got %f", metrics.Coherence)
	}
	if metrics.Density <= 0 {
		t.Fatalf("non-empty body should have positive density, got %f", metrics.Density)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	body := "La monnaie numérique modifie les rapports institutionnels. " +
		"Cependant, cette monnaie numérique reste subordonnée aux cadres juridiques existants. " +
		"Par conséquent, les institutions monétaires doivent adapter leurs instruments de régulation."
	first := Score(body)
	second := Score(body)
	if first != second {
		t.Fatalf("scores differ between runs: %+v vs %+v", first, second)
	}
}

func TestConnectedProseScoresHigherCoherence(t *testing.T) {
	connected := "L'analyse des protocoles distribués révèle des tensions institutionnelles profondes. " +
		"Cependant, ces protocoles distribués reposent sur des mécanismes institutionnels de consensus. " +
		"Par conséquent, l'analyse institutionnelle des mécanismes de consensus devient centrale."
	disjointed := "Le chat dort sur le tapis rouge. " +
		"Les marchés financiers asiatiques ferment tôt. " +
		"Une recette de cuisine demande du beurre frais."

	if Score(connected).Coherence <= Score(disjointed).Coherence {
		t.Fatalf("connected prose should score higher coherence: %f vs %f",
			Score(connected).Coherence, Score(disjointed).Coherence)
	}
}

func TestScoresStayInRange(t *testing.T) {
	bodies := []string{
		"Mot.",
		"Donc ainsi cependant toutefois. Donc ainsi cependant toutefois. Donc ainsi cependant toutefois.",
		"Une phrase excessivement longue qui continue encore et encore sans jamais vraiment s'arrêter ni " +
			"ponctuer quoi que ce soit parce que son auteur refuse obstinément la moindre pause respiratoire " +
			"dans ce flot ininterrompu de mots accumulés sans discernement particulier",
	}
	for _, body := range bodies {
		metrics := Score(body)
		if metrics.Coherence < 0 || metrics.Coherence > 1 {
			t.Fatalf("coherence out of range for %q: %f", body, metrics.Coherence)
		}
		if metrics.Density < 0 || metrics.Density > 1 {
			t.Fatalf("density out of range for %q: %f", body, metrics.Density)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("Première phrase. Deuxième ! Troisième ? Reste sans point final")
	if len(sentences) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %v", len(sentences), sentences)
	}
}
