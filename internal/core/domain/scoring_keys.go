package domain

import "sort"

// Scoring and keyword configuration keys. Every key has a built-in default.
const (
	KeyLengthVeryShortMax         = "length_very_short_max"
	KeyLengthShortMax             = "length_short_max"
	KeyLengthSuboptimalMax        = "length_suboptimal_max"
	KeyLengthOptimalMax           = "length_optimal_max"
	KeyLengthLongMax              = "length_long_max"
	KeyLengthVeryShortMultiplier  = "length_very_short_multiplier"
	KeyLengthShortMultiplier      = "length_short_multiplier"
	KeyLengthSuboptimalMultiplier = "length_suboptimal_multiplier"
	KeyLengthOptimalMultiplier    = "length_optimal_multiplier"
	KeyLengthLongMultiplier       = "length_long_multiplier"
	KeyLengthVeryLongMultiplier   = "length_very_long_multiplier"

	KeyRepetitiveMildRun            = "repetitive_mild_run"
	KeyRepetitiveModerateRun        = "repetitive_moderate_run"
	KeyRepetitiveSevereRun          = "repetitive_severe_run"
	KeyRepetitiveMildMultiplier     = "repetitive_mild_multiplier"
	KeyRepetitiveModerateMultiplier = "repetitive_moderate_multiplier"
	KeyRepetitiveSevereMultiplier   = "repetitive_severe_multiplier"

	// vowel_min_letters and mixed_case_min_length are exclusive: the vowel and
	// mixed-case rules apply only to values strictly above them.
	KeyVowelMinLetters                = "vowel_min_letters"
	KeyVowelVeryLowThreshold          = "vowel_very_low_threshold"
	KeyVowelLowThreshold              = "vowel_low_threshold"
	KeyVowelHighThreshold             = "vowel_high_threshold"
	KeyVowelVeryLowMultiplier         = "vowel_very_low_multiplier"
	KeyVowelLowMultiplier             = "vowel_low_multiplier"
	KeyVowelHighMultiplier            = "vowel_high_multiplier"
	KeyVowelNormalMultiplier          = "vowel_normal_multiplier"
	KeyNumericOnlyMultiplier          = "numeric_only_multiplier"
	KeyMixedCaseMinLength             = "mixed_case_min_length"
	KeyMixedCaseChaosMultiplier       = "mixed_case_chaos_multiplier"
	KeyPunctuationRatioThreshold      = "punctuation_ratio_threshold"
	KeyExcessivePunctuationMultiplier = "excessive_punctuation_multiplier"

	KeyDictValidThreshold    = "dict_valid_threshold"
	KeyDictValidMultiplier   = "dict_valid_multiplier"
	KeyDictInvalidMultiplier = "dict_invalid_multiplier"

	KeyPatternDefaultMultiplier = "pattern_default_multiplier"

	KeyPersonTitleCaseMultiplier   = "person_title_case_multiplier"
	KeyPersonAllCapsMultiplier     = "person_all_caps_multiplier"
	KeyLocationTitleCaseMultiplier = "location_title_case_multiplier"

	KeyOrgAllCapsStopwordMultiplier     = "org_all_caps_stopword_multiplier"
	KeyOrgStopwordRatioThreshold        = "org_stopword_ratio_threshold"
	KeyOrgAllCapsHighStopwordMultiplier = "org_all_caps_high_stopword_multiplier"
	KeyOrgFieldLabelMultiplier          = "org_field_label_multiplier"
	KeyOrgShortWordMaxLength            = "org_short_word_max_length"
	KeyOrgShortStopwordMultiplier       = "org_short_stopword_multiplier"
	KeyOrgMinLength                     = "org_min_length"
	KeyOrgTooShortMultiplier            = "org_too_short_multiplier"
	KeyOrgMaxLength                     = "org_max_length"
	KeyOrgTooLongMultiplier             = "org_too_long_multiplier"
	KeyOrgMultiCapitalizedMin           = "org_multi_capitalized_min"
	KeyOrgMultiCapitalizedMultiplier    = "org_multi_capitalized_multiplier"
	KeyOrgLegalSuffixMultiplier         = "org_legal_suffix_multiplier"
	KeyOrgMixedCaseMultiplier           = "org_mixed_case_multiplier"

	KeyCorpusMinDocuments         = "corpus_min_documents"
	KeyCorpusVeryCommonRatio      = "corpus_very_common_ratio"
	KeyCorpusCommonRatio          = "corpus_common_ratio"
	KeyCorpusVeryCommonMultiplier = "corpus_very_common_multiplier"
	KeyCorpusCommonMultiplier     = "corpus_common_multiplier"

	KeyThresholdDefault                = "threshold_default"
	KeyThresholdOrganization           = "threshold_organization"
	KeyThresholdAddress                = "threshold_address"
	KeyThresholdEmail                  = "threshold_email"
	KeyThresholdURL                    = "threshold_url"
	KeyThresholdOrganizationConversion = "threshold_organization_conversion"

	KeyNERDefaultConfidence    = "ner_default_confidence"
	KeyAddressParserConfidence = "address_parser_confidence"
	KeyAddressRegexConfidence  = "address_regex_confidence"
	KeyHeaderPartyConfidence   = "header_party_confidence"
	KeyHeaderFieldConfidence   = "header_field_confidence"
	KeyEmailConfidence         = "email_confidence"
	KeyURLConfidence           = "url_confidence"
	KeyBareDomainConfidence    = "bare_domain_confidence"

	KeyKeywordShortDocumentTokens = "keyword_short_document_tokens"
	KeyKeywordMinFrequency        = "keyword_min_frequency"
	KeyKeywordMaxResults          = "keyword_max_results"
	KeyKeywordMustKeepMultiplier  = "keyword_must_keep_multiplier"
	KeyKeywordSpellFilterEnabled  = "keyword_spell_filter_enabled"
	KeyTFIDFEnabled               = "tfidf_enabled"
	KeyIDFSmoothing               = "idf_smoothing"
	KeyIDFUnknown                 = "idf_unknown"
	KeyIDFNeutral                 = "idf_neutral"
	KeyHybridAlphaStart           = "hybrid_alpha_start"
	KeyHybridAlphaFloor           = "hybrid_alpha_floor"
	KeyHybridAlphaDecayDocuments  = "hybrid_alpha_decay_documents"
	KeyConversionRelevanceLow     = "conversion_relevance_low"
	KeyConversionRelevanceHigh    = "conversion_relevance_high"
	KeyGlobalCorpusMinUsers       = "global_corpus_min_users"
)

var scoringDefaults = map[string]float64{
	KeyLengthVeryShortMax:         2,
	KeyLengthShortMax:             3,
	KeyLengthSuboptimalMax:        5,
	KeyLengthOptimalMax:           40,
	KeyLengthLongMax:              80,
	KeyLengthVeryShortMultiplier:  0.3,
	KeyLengthShortMultiplier:      0.6,
	KeyLengthSuboptimalMultiplier: 0.85,
	KeyLengthOptimalMultiplier:    1.1,
	KeyLengthLongMultiplier:       0.9,
	KeyLengthVeryLongMultiplier:   0.6,

	KeyRepetitiveMildRun:            3,
	KeyRepetitiveModerateRun:        4,
	KeyRepetitiveSevereRun:          5,
	KeyRepetitiveMildMultiplier:     0.8,
	KeyRepetitiveModerateMultiplier: 0.5,
	KeyRepetitiveSevereMultiplier:   0.3,

	KeyVowelMinLetters:                3,
	KeyVowelVeryLowThreshold:          0.1,
	KeyVowelLowThreshold:              0.2,
	KeyVowelHighThreshold:             0.8,
	KeyVowelVeryLowMultiplier:         0.4,
	KeyVowelLowMultiplier:             0.7,
	KeyVowelHighMultiplier:            0.75,
	KeyVowelNormalMultiplier:          1.05,
	KeyNumericOnlyMultiplier:          0.2,
	KeyMixedCaseMinLength:             3,
	KeyMixedCaseChaosMultiplier:       0.6,
	KeyPunctuationRatioThreshold:      0.3,
	KeyExcessivePunctuationMultiplier: 0.5,

	KeyDictValidThreshold:    0.5,
	KeyDictValidMultiplier:   1.15,
	KeyDictInvalidMultiplier: 0.75,

	KeyPatternDefaultMultiplier: 1.2,

	KeyPersonTitleCaseMultiplier:   1.1,
	KeyPersonAllCapsMultiplier:     0.7,
	KeyLocationTitleCaseMultiplier: 1.1,

	KeyOrgAllCapsStopwordMultiplier:     0.3,
	KeyOrgStopwordRatioThreshold:        0.5,
	KeyOrgAllCapsHighStopwordMultiplier: 0.5,
	KeyOrgFieldLabelMultiplier:          0.5,
	KeyOrgShortWordMaxLength:            6,
	KeyOrgShortStopwordMultiplier:       0.4,
	KeyOrgMinLength:                     3,
	KeyOrgTooShortMultiplier:            0.5,
	KeyOrgMaxLength:                     60,
	KeyOrgTooLongMultiplier:             0.7,
	KeyOrgMultiCapitalizedMin:           2,
	KeyOrgMultiCapitalizedMultiplier:    1.15,
	KeyOrgLegalSuffixMultiplier:         1.3,
	KeyOrgMixedCaseMultiplier:           1.05,

	KeyCorpusMinDocuments:         10,
	KeyCorpusVeryCommonRatio:      0.5,
	KeyCorpusCommonRatio:          0.2,
	KeyCorpusVeryCommonMultiplier: 0.3,
	KeyCorpusCommonMultiplier:     0.7,

	KeyThresholdDefault:                0.5,
	KeyThresholdOrganization:           0.65,
	KeyThresholdAddress:                0.5,
	KeyThresholdEmail:                  0.6,
	KeyThresholdURL:                    0.6,
	KeyThresholdOrganizationConversion: 0.25,

	KeyNERDefaultConfidence:    0.75,
	KeyAddressParserConfidence: 0.9,
	KeyAddressRegexConfidence:  0.8,
	KeyHeaderPartyConfidence:   0.8,
	KeyHeaderFieldConfidence:   0.7,
	KeyEmailConfidence:         0.95,
	KeyURLConfidence:           0.9,
	KeyBareDomainConfidence:    0.7,

	KeyKeywordShortDocumentTokens: 200,
	KeyKeywordMinFrequency:        2,
	KeyKeywordMaxResults:          50,
	KeyKeywordMustKeepMultiplier:  1.5,
	KeyKeywordSpellFilterEnabled:  1,
	KeyTFIDFEnabled:               1,
	KeyIDFSmoothing:               1,
	KeyIDFUnknown:                 8,
	KeyIDFNeutral:                 1,
	KeyHybridAlphaStart:           0.8,
	KeyHybridAlphaFloor:           0.3,
	KeyHybridAlphaDecayDocuments:  100,
	KeyConversionRelevanceLow:     1,
	KeyConversionRelevanceHigh:    10,
	KeyGlobalCorpusMinUsers:       10,
}

// DefaultScoringValue returns the built-in default for key, or 0 for unknown keys.
func DefaultScoringValue(key string) float64 {
	return scoringDefaults[key]
}

func IsScoringKey(key string) bool {
	_, ok := scoringDefaults[key]
	return ok
}

// ScoringKeys returns every known key in sorted order.
func ScoringKeys() []string {
	keys := make([]string, 0, len(scoringDefaults))
	for k := range scoringDefaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
