package domain

import (
	"math"
	"strings"
)

// Pattern types for entity-type patterns.
const (
	PatternSuffix  = "suffix"
	PatternKeyword = "keyword"
)

type EntityPattern struct {
	Value     string `yaml:"value" json:"value"`
	Type      string `yaml:"type" json:"type"`
	WeightKey string `yaml:"weight_key" json:"weight_key"`
}

// Matches reports whether the lowercase value satisfies the pattern.
func (p EntityPattern) Matches(lower string) bool {
	needle := strings.ToLower(strings.TrimSpace(p.Value))
	if needle == "" {
		return false
	}
	switch p.Type {
	case PatternSuffix:
		return lower == needle || strings.HasSuffix(lower, " "+needle)
	case PatternKeyword:
		return strings.Contains(lower, needle)
	default:
		return false
	}
}

type BlacklistEntry struct {
	Type  EntityType
	Value string
}

// ScoringConfig is the per-language configuration snapshot used by one pipeline run.
// It is read-only once built.
type ScoringConfig struct {
	Language string

	Values        map[string]float64
	Stopwords     map[string]struct{}
	FieldLabels   map[string]struct{}
	Blacklist     map[BlacklistEntry]struct{}
	Patterns      map[EntityType][]EntityPattern
	LegalSuffixes []string

	SenderLabels    []string
	RecipientLabels []string
	HeaderLabels    []string
}

func NewScoringConfig(language string) *ScoringConfig {
	return &ScoringConfig{
		Language:    language,
		Values:      map[string]float64{},
		Stopwords:   map[string]struct{}{},
		FieldLabels: map[string]struct{}{},
		Blacklist:   map[BlacklistEntry]struct{}{},
		Patterns:    map[EntityType][]EntityPattern{},
	}
}

// Get never fails: missing or non-finite values resolve to def.
func (c *ScoringConfig) Get(key string, def float64) float64 {
	if c == nil || c.Values == nil {
		return def
	}
	v, ok := c.Values[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Value resolves key against the built-in default catalogue.
func (c *ScoringConfig) Value(key string) float64 {
	return c.Get(key, DefaultScoringValue(key))
}

func (c *ScoringConfig) Int(key string) int {
	return int(math.Round(c.Value(key)))
}

func (c *ScoringConfig) Bool(key string) bool {
	return c.Value(key) != 0
}

func (c *ScoringConfig) IsStopword(word string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Stopwords[strings.ToLower(word)]
	return ok
}

func (c *ScoringConfig) IsFieldLabel(word string) bool {
	if c == nil {
		return false
	}
	_, ok := c.FieldLabels[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

func (c *ScoringConfig) IsBlacklisted(t EntityType, value string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Blacklist[BlacklistEntry{Type: t, Value: strings.ToLower(strings.TrimSpace(value))}]
	return ok
}

// MatchPattern returns the first configured pattern for t that matches value.
func (c *ScoringConfig) MatchPattern(t EntityType, value string) (EntityPattern, bool) {
	if c == nil {
		return EntityPattern{}, false
	}
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, p := range c.Patterns[t] {
		if p.Matches(lower) {
			return p, true
		}
	}
	return EntityPattern{}, false
}

// HasLegalSuffix reports whether the last word of value is a configured legal-entity suffix.
func (c *ScoringConfig) HasLegalSuffix(value string) bool {
	if c == nil {
		return false
	}
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) < 2 {
		return false
	}
	last := strings.Trim(fields[len(fields)-1], ".,;:()")
	for _, s := range c.LegalSuffixes {
		if strings.Trim(strings.ToLower(s), ".") == strings.Trim(last, ".") {
			return true
		}
	}
	return false
}

// Threshold returns the acceptance threshold for an entity type.
func (c *ScoringConfig) Threshold(t EntityType) float64 {
	switch t {
	case EntityOrganization:
		return c.Value(KeyThresholdOrganization)
	case EntityAddress:
		return c.Value(KeyThresholdAddress)
	case EntityEmail:
		return c.Value(KeyThresholdEmail)
	case EntityURL:
		return c.Value(KeyThresholdURL)
	default:
		return c.Value(KeyThresholdDefault)
	}
}

// Dictionary term kinds stored alongside numeric overrides.
const (
	TermStopword       = "stopword"
	TermFieldLabel     = "field_label"
	TermBlacklist      = "blacklist"
	TermLegalSuffix    = "legal_suffix"
	TermSenderLabel    = "sender_label"
	TermRecipientLabel = "recipient_label"
	TermHeaderLabel    = "header_label"
)

type DictionaryTerm struct {
	Kind       string
	Value      string
	EntityType EntityType
}

type TypedPattern struct {
	EntityType EntityType
	Pattern    EntityPattern
}

// ScoringOverrides is what an external store contributes on top of the built-in dictionary.
type ScoringOverrides struct {
	Values   map[string]float64
	Terms    []DictionaryTerm
	Patterns []TypedPattern
}

// IsPatternWeightKey reports whether key names a pattern-specific multiplier.
// Pattern weights are free-form so stores can add them without a code change.
func IsPatternWeightKey(key string) bool {
	return strings.HasPrefix(key, "pattern_") && strings.HasSuffix(key, "_multiplier")
}

// Clone returns a deep copy safe to mutate.
func (c *ScoringConfig) Clone() *ScoringConfig {
	out := NewScoringConfig(c.Language)
	for k, v := range c.Values {
		out.Values[k] = v
	}
	for k := range c.Stopwords {
		out.Stopwords[k] = struct{}{}
	}
	for k := range c.FieldLabels {
		out.FieldLabels[k] = struct{}{}
	}
	for k := range c.Blacklist {
		out.Blacklist[k] = struct{}{}
	}
	for t, ps := range c.Patterns {
		out.Patterns[t] = append([]EntityPattern(nil), ps...)
	}
	out.LegalSuffixes = append([]string(nil), c.LegalSuffixes...)
	out.SenderLabels = append([]string(nil), c.SenderLabels...)
	out.RecipientLabels = append([]string(nil), c.RecipientLabels...)
	out.HeaderLabels = append([]string(nil), c.HeaderLabels...)
	return out
}

// Apply merges overrides into c. Numeric values replace, term lists extend and
// store patterns take precedence over built-in ones. It returns the keys that
// were ignored because they are unknown or not finite.
func (c *ScoringConfig) Apply(o *ScoringOverrides) []string {
	if o == nil {
		return nil
	}
	var ignored []string
	for k, v := range o.Values {
		if !(IsScoringKey(k) || IsPatternWeightKey(k)) || math.IsNaN(v) || math.IsInf(v, 0) {
			ignored = append(ignored, k)
			continue
		}
		c.Values[k] = v
	}
	for _, term := range o.Terms {
		value := strings.ToLower(strings.TrimSpace(term.Value))
		if value == "" {
			continue
		}
		switch term.Kind {
		case TermStopword:
			c.Stopwords[value] = struct{}{}
		case TermFieldLabel:
			c.FieldLabels[value] = struct{}{}
		case TermBlacklist:
			c.Blacklist[BlacklistEntry{Type: term.EntityType, Value: value}] = struct{}{}
		case TermLegalSuffix:
			c.LegalSuffixes = append(c.LegalSuffixes, value)
		case TermSenderLabel:
			c.SenderLabels = append(c.SenderLabels, value)
		case TermRecipientLabel:
			c.RecipientLabels = append(c.RecipientLabels, value)
		case TermHeaderLabel:
			c.HeaderLabels = append(c.HeaderLabels, value)
		}
	}
	if len(o.Patterns) > 0 {
		byType := map[EntityType][]EntityPattern{}
		for _, tp := range o.Patterns {
			byType[tp.EntityType] = append(byType[tp.EntityType], tp.Pattern)
		}
		for t, ps := range byType {
			c.Patterns[t] = append(ps, c.Patterns[t]...)
		}
	}
	return ignored
}
