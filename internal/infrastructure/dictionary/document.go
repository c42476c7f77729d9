package dictionary

import (
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type blacklistEntry struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// document is the YAML layout of one language's dictionary.
type document struct {
	Values          map[string]float64                `yaml:"values"`
	Stopwords       []string                          `yaml:"stopwords"`
	FieldLabels     []string                          `yaml:"field_labels"`
	LegalSuffixes   []string                          `yaml:"legal_suffixes"`
	SenderLabels    []string                          `yaml:"sender_labels"`
	RecipientLabels []string                          `yaml:"recipient_labels"`
	HeaderLabels    []string                          `yaml:"header_labels"`
	Blacklist       []blacklistEntry                  `yaml:"blacklist"`
	Patterns        map[string][]domain.EntityPattern `yaml:"patterns"`
}

// overrides converts the document; unknown entity types or pattern types are
// reported and skipped.
func (d document) overrides() (*domain.ScoringOverrides, []string) {
	o := &domain.ScoringOverrides{Values: d.Values}
	var invalid []string

	terms := []struct {
		kind   string
		values []string
	}{
		{domain.TermStopword, d.Stopwords},
		{domain.TermFieldLabel, d.FieldLabels},
		{domain.TermLegalSuffix, d.LegalSuffixes},
		{domain.TermSenderLabel, d.SenderLabels},
		{domain.TermRecipientLabel, d.RecipientLabels},
		{domain.TermHeaderLabel, d.HeaderLabels},
	}
	for _, group := range terms {
		for _, v := range group.values {
			o.Terms = append(o.Terms, domain.DictionaryTerm{Kind: group.kind, Value: v})
		}
	}

	for _, b := range d.Blacklist {
		t, ok := domain.ParseEntityType(b.Type)
		if !ok {
			invalid = append(invalid, "blacklist:"+b.Type)
			continue
		}
		o.Terms = append(o.Terms, domain.DictionaryTerm{Kind: domain.TermBlacklist, Value: b.Value, EntityType: t})
	}

	for rawType, patterns := range d.Patterns {
		t, ok := domain.ParseEntityType(rawType)
		if !ok {
			invalid = append(invalid, "patterns:"+rawType)
			continue
		}
		for _, p := range patterns {
			if p.Type != domain.PatternSuffix && p.Type != domain.PatternKeyword {
				invalid = append(invalid, "pattern_type:"+p.Type)
				continue
			}
			o.Patterns = append(o.Patterns, domain.TypedPattern{EntityType: t, Pattern: p})
		}
	}
	return o, invalid
}
