package dictionary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type storeFake struct {
	calls int
	out   *domain.ScoringOverrides
	err   error
}

func (s *storeFake) LoadOverrides(_ context.Context, _ string) (*domain.ScoringOverrides, error) {
	s.calls++
	return s.out, s.err
}

func TestBuiltinGermanDictionary(t *testing.T) {
	p, err := NewProvider(Options{})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	cfg, err := p.Load(context.Background(), "DE")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.IsFieldLabel("IBAN") || !cfg.IsStopword("und") || !cfg.IsStopword("Patient") {
		t.Fatal("expected german field labels and stopwords")
	}
	if !cfg.HasLegalSuffix("Muster GmbH") {
		t.Fatal("expected GmbH legal suffix")
	}
	if !cfg.IsBlacklisted(domain.EntityOrganization, "Rechnung") {
		t.Fatal("expected blacklist entry")
	}
	pat, ok := cfg.MatchPattern(domain.EntityOrganization, "Sparkasse Bank")
	if !ok || pat.WeightKey != "pattern_institution_multiplier" {
		t.Fatalf("unexpected pattern match %+v %v", pat, ok)
	}
	if got := cfg.Get(pat.WeightKey, 0); got != 1.15 {
		t.Fatalf("expected pattern weight 1.15, got %v", got)
	}
	if !slices.Contains(cfg.SenderLabels, "absender") || !slices.Contains(cfg.HeaderLabels, "betreff") {
		t.Fatalf("unexpected header vocab %v %v", cfg.SenderLabels, cfg.HeaderLabels)
	}
}

func TestLanguages(t *testing.T) {
	p, err := NewProvider(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Languages(); !slices.Equal(got, []string{"de", "en", "fr"}) {
		t.Fatalf("Languages() = %v", got)
	}
}

func TestUnknownLanguageUsesDefaults(t *testing.T) {
	p, _ := NewProvider(Options{})
	cfg, err := p.Load(context.Background(), "xx")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.Value(domain.KeyThresholdOrganization), domain.DefaultScoringValue(domain.KeyThresholdOrganization); got != want {
		t.Fatalf("expected default threshold %v, got %v", want, got)
	}
	if len(cfg.Stopwords) != 0 {
		t.Fatalf("expected no stopwords, got %d", len(cfg.Stopwords))
	}
}

func TestStoreOverridesAreCached(t *testing.T) {
	store := &storeFake{out: &domain.ScoringOverrides{
		Values: map[string]float64{domain.KeyThresholdOrganization: 0.7},
		Terms:  []domain.DictionaryTerm{{Kind: domain.TermFieldLabel, Value: "Zeichen"}},
		Patterns: []domain.TypedPattern{{
			EntityType: domain.EntityOrganization,
			Pattern:    domain.EntityPattern{Value: "bank", Type: domain.PatternKeyword, WeightKey: "pattern_store_multiplier"},
		}},
	}}
	p, _ := NewProvider(Options{Store: store})

	cfg, err := p.Load(context.Background(), "de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Value(domain.KeyThresholdOrganization) != 0.7 || !cfg.IsFieldLabel("zeichen") {
		t.Fatal("expected store overrides applied")
	}
	if pat, _ := cfg.MatchPattern(domain.EntityOrganization, "Volksbank"); pat.WeightKey != "pattern_store_multiplier" {
		t.Fatalf("expected store pattern to win, got %+v", pat)
	}

	if _, err := p.Load(context.Background(), "de"); err != nil {
		t.Fatal(err)
	}
	if store.calls != 1 {
		t.Fatalf("expected cached snapshot, store called %d times", store.calls)
	}

	p.Invalidate("de")
	if _, err := p.Load(context.Background(), "de"); err != nil {
		t.Fatal(err)
	}
	if store.calls != 2 {
		t.Fatalf("expected reload after invalidate, store called %d times", store.calls)
	}
}

func TestStoreFailureFallsBackWithoutCaching(t *testing.T) {
	store := &storeFake{err: errors.New("connection refused")}
	p, _ := NewProvider(Options{Store: store})

	for range 2 {
		cfg, err := p.Load(context.Background(), "de")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !cfg.IsFieldLabel("iban") {
			t.Fatal("expected built-in dictionary")
		}
	}
	if store.calls != 2 {
		t.Fatalf("expected store retried, got %d calls", store.calls)
	}
}

func TestStoreCancellationPropagates(t *testing.T) {
	p, _ := NewProvider(Options{Store: &storeFake{err: context.Canceled}})
	if _, err := p.Load(context.Background(), "de"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	raw := `
de:
  values:
    threshold_default: 0.4
    bogus_key: 1
  stopwords: [foo]
  blacklist:
    - {type: ORGANIZATION, value: Musterfirma}
    - {type: SPACESHIP, value: enterprise}
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := NewProvider(Options{OverridePath: path})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	cfg, _ := p.Load(context.Background(), "de")
	if cfg.Value(domain.KeyThresholdDefault) != 0.4 {
		t.Fatalf("expected file override, got %v", cfg.Value(domain.KeyThresholdDefault))
	}
	if _, ok := cfg.Values["bogus_key"]; ok {
		t.Fatal("unknown keys must be ignored")
	}
	if !cfg.IsStopword("foo") || !cfg.IsStopword("und") {
		t.Fatal("expected file stopwords to extend built-ins")
	}
	if !cfg.IsBlacklisted(domain.EntityOrganization, "musterfirma") {
		t.Fatal("expected file blacklist entry")
	}
}

func TestOverrideFileErrors(t *testing.T) {
	if _, err := NewProvider(Options{OverridePath: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatal("expected missing file error")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("de: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProvider(Options{OverridePath: path}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestProcessValuesApplyToEveryLanguage(t *testing.T) {
	p, err := NewProvider(Options{Values: map[string]float64{
		domain.KeyGlobalCorpusMinUsers: 3,
		"not_a_key":                    1,
	}})
	if err != nil {
		t.Fatal(err)
	}
	for _, lang := range []string{"de", "fr", "xx"} {
		cfg, err := p.Load(context.Background(), lang)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", lang, err)
		}
		if got := cfg.Int(domain.KeyGlobalCorpusMinUsers); got != 3 {
			t.Fatalf("%s: expected min users 3, got %d", lang, got)
		}
		if _, ok := cfg.Values["not_a_key"]; ok {
			t.Fatalf("%s: unknown key must be ignored", lang)
		}
	}
}
