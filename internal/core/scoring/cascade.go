package scoring

import (
	"context"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/lexicon"
)

// Adjustment is one multiplier the cascade applied, in application order.
type Adjustment struct {
	Rule       string  `json:"rule"`
	Multiplier float64 `json:"multiplier"`
}

// RuleCascade scores entities by multiplying the base confidence with
// configured factors. Rule order is fixed and every gate reads the feature
// vector, so the outcome does not depend on intermediate scores.
type RuleCascade struct {
	cfg *domain.ScoringConfig
}

func NewRuleCascade(cfg *domain.ScoringConfig) *RuleCascade {
	return &RuleCascade{cfg: cfg}
}

func (c *RuleCascade) Name() string { return "rule_cascade" }

func (c *RuleCascade) Score(_ context.Context, fv domain.FeatureVector) (float64, error) {
	score, _ := c.Explain(fv)
	return score, nil
}

// Explain returns the clamped score together with the applied adjustments.
func (c *RuleCascade) Explain(fv domain.FeatureVector) (float64, []Adjustment) {
	cfg := c.cfg
	score := fv.BaseConfidence
	var trace []Adjustment
	apply := func(rule string, m float64) {
		score *= m
		trace = append(trace, Adjustment{Rule: rule, Multiplier: m})
	}

	switch l := fv.Length; {
	case l <= cfg.Value(domain.KeyLengthVeryShortMax):
		apply("length_very_short", cfg.Value(domain.KeyLengthVeryShortMultiplier))
	case l <= cfg.Value(domain.KeyLengthShortMax):
		apply("length_short", cfg.Value(domain.KeyLengthShortMultiplier))
	case l <= cfg.Value(domain.KeyLengthSuboptimalMax):
		apply("length_suboptimal", cfg.Value(domain.KeyLengthSuboptimalMultiplier))
	case l <= cfg.Value(domain.KeyLengthOptimalMax):
		apply("length_optimal", cfg.Value(domain.KeyLengthOptimalMultiplier))
	case l <= cfg.Value(domain.KeyLengthLongMax):
		apply("length_long", cfg.Value(domain.KeyLengthLongMultiplier))
	default:
		apply("length_very_long", cfg.Value(domain.KeyLengthVeryLongMultiplier))
	}

	switch run := fv.RepetitiveCharScore; {
	case run >= cfg.Value(domain.KeyRepetitiveSevereRun):
		apply("repetitive_severe", cfg.Value(domain.KeyRepetitiveSevereMultiplier))
	case run >= cfg.Value(domain.KeyRepetitiveModerateRun):
		apply("repetitive_moderate", cfg.Value(domain.KeyRepetitiveModerateMultiplier))
	case run >= cfg.Value(domain.KeyRepetitiveMildRun):
		apply("repetitive_mild", cfg.Value(domain.KeyRepetitiveMildMultiplier))
	}

	if fv.LetterCount > cfg.Value(domain.KeyVowelMinLetters) {
		switch v := fv.VowelRatio; {
		case v < cfg.Value(domain.KeyVowelVeryLowThreshold):
			apply("vowel_very_low", cfg.Value(domain.KeyVowelVeryLowMultiplier))
		case v < cfg.Value(domain.KeyVowelLowThreshold):
			apply("vowel_low", cfg.Value(domain.KeyVowelLowMultiplier))
		case v > cfg.Value(domain.KeyVowelHighThreshold):
			apply("vowel_high", cfg.Value(domain.KeyVowelHighMultiplier))
		default:
			apply("vowel_normal", cfg.Value(domain.KeyVowelNormalMultiplier))
		}
	}

	if fv.LetterCount == 0 && fv.Length > 0 {
		apply("numeric_only", cfg.Value(domain.KeyNumericOnlyMultiplier))
	}

	if fv.MixedCaseChaos && fv.Length > cfg.Value(domain.KeyMixedCaseMinLength) {
		apply("mixed_case_chaos", cfg.Value(domain.KeyMixedCaseChaosMultiplier))
	}

	if fv.SpecialCharRatio > cfg.Value(domain.KeyPunctuationRatioThreshold) {
		apply("excessive_punctuation", cfg.Value(domain.KeyExcessivePunctuationMultiplier))
	}

	if fv.LetterCount > 0 {
		if fv.DictValidRatio >= cfg.Value(domain.KeyDictValidThreshold) {
			apply("dictionary_valid", cfg.Value(domain.KeyDictValidMultiplier))
		} else {
			apply("dictionary_invalid", cfg.Value(domain.KeyDictInvalidMultiplier))
		}
	}

	if fv.PatternWeightKey != "" {
		apply("pattern:"+fv.PatternWeightKey, cfg.Get(fv.PatternWeightKey, cfg.Value(domain.KeyPatternDefaultMultiplier)))
	}

	switch fv.Type {
	case domain.EntityPerson:
		if fv.AllCaps {
			apply("person_all_caps", cfg.Value(domain.KeyPersonAllCapsMultiplier))
		} else if fv.TitleCase {
			apply("person_title_case", cfg.Value(domain.KeyPersonTitleCaseMultiplier))
		}
	case domain.EntityLocation:
		if fv.TitleCase {
			apply("location_title_case", cfg.Value(domain.KeyLocationTitleCaseMultiplier))
		}
	case domain.EntityOrganization:
		c.organization(fv, apply)
	}

	if fv.Type != domain.EntityEmail && fv.Type != domain.EntityURL {
		switch r := fv.CorpusDocumentRatio; {
		case r > cfg.Value(domain.KeyCorpusVeryCommonRatio):
			apply("corpus_very_common", cfg.Value(domain.KeyCorpusVeryCommonMultiplier))
		case r > cfg.Value(domain.KeyCorpusCommonRatio):
			apply("corpus_common", cfg.Value(domain.KeyCorpusCommonMultiplier))
		}
	}

	return lexicon.Clamp01(score), trace
}

func (c *RuleCascade) organization(fv domain.FeatureVector, apply func(string, float64)) {
	cfg := c.cfg
	if fv.AllCaps {
		if fv.IsSingleStopword {
			apply("org_all_caps_stopword", cfg.Value(domain.KeyOrgAllCapsStopwordMultiplier))
		} else if fv.WordCount > 1 && fv.StopWordRatio >= cfg.Value(domain.KeyOrgStopwordRatioThreshold) {
			apply("org_all_caps_high_stopword", cfg.Value(domain.KeyOrgAllCapsHighStopwordMultiplier))
		}
	}
	if fv.HasFieldLabelSubstring {
		apply("org_field_label", cfg.Value(domain.KeyOrgFieldLabelMultiplier))
	}
	if fv.WordCount == 1 && fv.IsSingleStopword &&
		fv.Length <= cfg.Value(domain.KeyOrgShortWordMaxLength) &&
		fv.DictValidRatio >= cfg.Value(domain.KeyDictValidThreshold) {
		apply("org_short_stopword", cfg.Value(domain.KeyOrgShortStopwordMultiplier))
	}
	switch {
	case fv.Length < cfg.Value(domain.KeyOrgMinLength):
		apply("org_too_short", cfg.Value(domain.KeyOrgTooShortMultiplier))
	case fv.Length > cfg.Value(domain.KeyOrgMaxLength):
		apply("org_too_long", cfg.Value(domain.KeyOrgTooLongMultiplier))
	}
	if fv.CapitalizedWords >= cfg.Value(domain.KeyOrgMultiCapitalizedMin) {
		apply("org_multi_capitalized", cfg.Value(domain.KeyOrgMultiCapitalizedMultiplier))
	}
	if fv.HasLegalSuffix {
		apply("org_legal_suffix", cfg.Value(domain.KeyOrgLegalSuffixMultiplier))
	}
	if fv.ProperMixedCase {
		apply("org_mixed_case", cfg.Value(domain.KeyOrgMixedCaseMultiplier))
	}
}
