package domain

import (
	"math"
	"testing"
)

func TestScoringConfigGetFallsBackToDefault(t *testing.T) {
	var nilCfg *ScoringConfig
	if got := nilCfg.Get(KeyThresholdDefault, 0.42); got != 0.42 {
		t.Fatalf("nil config Get() = %v, want 0.42", got)
	}

	cfg := NewScoringConfig("de")
	cfg.Values[KeyThresholdOrganization] = math.NaN()
	if got := cfg.Value(KeyThresholdOrganization); got != DefaultScoringValue(KeyThresholdOrganization) {
		t.Fatalf("NaN override should resolve to default, got %v", got)
	}

	cfg.Values[KeyThresholdOrganization] = 0.9
	if got := cfg.Threshold(EntityOrganization); got != 0.9 {
		t.Fatalf("Threshold(ORGANIZATION) = %v, want 0.9", got)
	}
	if got := cfg.Threshold(EntityPerson); got != DefaultScoringValue(KeyThresholdDefault) {
		t.Fatalf("Threshold(PERSON) = %v, want default", got)
	}
}

func TestEveryScoringKeyHasDefault(t *testing.T) {
	keys := ScoringKeys()
	if len(keys) < 60 {
		t.Fatalf("expected at least 60 configuration keys, got %d", len(keys))
	}
	for _, k := range keys {
		if !IsScoringKey(k) {
			t.Fatalf("key %q not registered", k)
		}
	}
}

func TestApplyOverridesIgnoresUnknownKeys(t *testing.T) {
	cfg := NewScoringConfig("en")
	ignored := cfg.Apply(&ScoringOverrides{
		Values: map[string]float64{
			KeyIDFUnknown: 5,
			"no_such_key": 1,
		},
		Terms: []DictionaryTerm{
			{Kind: TermStopword, Value: " The "},
			{Kind: TermBlacklist, Value: "ACME", EntityType: EntityOrganization},
		},
		Patterns: []TypedPattern{
			{EntityType: EntityOrganization, Pattern: EntityPattern{Value: "bank", Type: PatternKeyword, WeightKey: KeyPatternDefaultMultiplier}},
		},
	})

	if len(ignored) != 1 || ignored[0] != "no_such_key" {
		t.Fatalf("unexpected ignored keys: %v", ignored)
	}
	if cfg.Value(KeyIDFUnknown) != 5 {
		t.Fatalf("override not applied")
	}
	if !cfg.IsStopword("the") {
		t.Fatalf("stopword override not applied")
	}
	if !cfg.IsBlacklisted(EntityOrganization, "Acme") {
		t.Fatalf("blacklist override not applied")
	}
	if _, ok := cfg.MatchPattern(EntityOrganization, "Deutsche Bank"); !ok {
		t.Fatalf("pattern override not applied")
	}
}

func TestEntityPatternMatching(t *testing.T) {
	tests := []struct {
		pattern EntityPattern
		value   string
		want    bool
	}{
		{EntityPattern{Value: "gmbh", Type: PatternSuffix}, "muster gmbh", true},
		{EntityPattern{Value: "gmbh", Type: PatternSuffix}, "mustergmbh", false},
		{EntityPattern{Value: "versicherung", Type: PatternKeyword}, "allianz versicherung ag", true},
		{EntityPattern{Value: "", Type: PatternKeyword}, "anything", false},
		{EntityPattern{Value: "x", Type: "regex"}, "x", false},
	}
	for _, tt := range tests {
		if got := tt.pattern.Matches(tt.value); got != tt.want {
			t.Fatalf("%+v.Matches(%q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
		}
	}
}

func TestHasLegalSuffix(t *testing.T) {
	cfg := NewScoringConfig("de")
	cfg.LegalSuffixes = []string{"gmbh", "ag", "e.v."}
	if !cfg.HasLegalSuffix("Muster GmbH") {
		t.Fatalf("expected GmbH suffix match")
	}
	if !cfg.HasLegalSuffix("Sportverein Musterstadt e.V.") {
		t.Fatalf("expected e.V. suffix match")
	}
	if cfg.HasLegalSuffix("GmbH") {
		t.Fatalf("a bare suffix is not a legal entity name")
	}
}
