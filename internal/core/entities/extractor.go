package entities

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

const maxAddressLineLength = 120

// Extractor produces raw typed spans from document text.
type Extractor struct {
	ner      ports.NERDetector
	address  ports.AddressParser
	observer ports.PipelineObserver
	logger   *slog.Logger
}

func NewExtractor(ner ports.NERDetector, address ports.AddressParser, observer ports.PipelineObserver, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{ner: ner, address: address, observer: observer, logger: logger}
}

// Extract runs NER and the deterministic matchers, then normalizes and deduplicates.
// Capability failures reduce recall but never fail the call.
func (e *Extractor) Extract(ctx context.Context, text, language string, cfg *domain.ScoringConfig) []domain.ExtractedEntity {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var raw []domain.ExtractedEntity
	raw = append(raw, e.nerEntities(ctx, text, language, cfg)...)
	raw = append(raw, e.addressEntities(ctx, text, language, cfg)...)
	raw = append(raw, headerEntities(text, cfg)...)
	raw = append(raw, contactEntities(text, cfg)...)

	out := make([]domain.ExtractedEntity, 0, len(raw))
	for _, ent := range raw {
		ent.NormalizedValue = Normalize(ent.Value, cfg)
		if ent.Type == domain.EntityEmail || ent.Type == domain.EntityURL {
			ent.NormalizedValue = strings.ToLower(ent.NormalizedValue)
		}
		if ent.NormalizedValue == "" {
			continue
		}
		out = append(out, ent)
	}
	return Deduplicate(out)
}

func (e *Extractor) nerEntities(ctx context.Context, text, language string, cfg *domain.ScoringConfig) []domain.ExtractedEntity {
	if e.ner == nil {
		e.fallback("ner")
		return nil
	}
	spans, err := e.ner.Detect(ctx, text, language)
	if err != nil {
		e.logger.Warn("ner unavailable, continuing with pattern matchers",
			"capability", "ner",
			"language", language,
			"error", err,
		)
		e.fallback("ner")
		return nil
	}

	defaultConf := cfg.Value(domain.KeyNERDefaultConfidence)
	out := make([]domain.ExtractedEntity, 0, len(spans))
	for _, s := range spans {
		t, ok := mapNERLabel(s.Label)
		if !ok {
			continue
		}
		conf := s.Confidence
		if conf <= 0 || conf > 1 {
			conf = defaultConf
		}
		ent := domain.ExtractedEntity{
			Type:             t,
			Value:            s.Text,
			Confidence:       conf,
			ExtractionMethod: domain.MethodNER,
		}
		if s.End > s.Start {
			ent.Span = &domain.Span{Start: s.Start, End: s.End}
		}
		out = append(out, ent)
	}
	return out
}

func mapNERLabel(label string) (domain.EntityType, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PER", "PERSON":
		return domain.EntityPerson, true
	case "ORG", "ORGANIZATION", "ORGANISATION":
		return domain.EntityOrganization, true
	case "LOC", "LOCATION", "GPE", "FAC":
		return domain.EntityLocation, true
	default:
		return "", false
	}
}

func (e *Extractor) addressEntities(ctx context.Context, text, language string, cfg *domain.ScoringConfig) []domain.ExtractedEntity {
	patterns := patternsFor(language)
	regexConf := cfg.Value(domain.KeyAddressRegexConfidence)

	var out []domain.ExtractedEntity
	for _, re := range patterns.postalCity {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, regexEntity(domain.EntityAddress, text, loc[0], loc[1], regexConf))
		}
	}

	if parsed, ok := e.parsedStreets(ctx, text, cfg); ok {
		return append(out, parsed...)
	}
	return append(out, regexStreets(text, patterns, regexConf)...)
}

// parsedStreets asks the address parser about every candidate line. It reports false
// when the parser is missing or fails, so the caller falls back to regex.
func (e *Extractor) parsedStreets(ctx context.Context, text string, cfg *domain.ScoringConfig) ([]domain.ExtractedEntity, bool) {
	if e.address == nil {
		return nil, false
	}
	conf := cfg.Value(domain.KeyAddressParserConfidence)
	var out []domain.ExtractedEntity
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		start := offset
		offset += len(line)
		trimmed := strings.TrimSpace(line)
		if !isAddressCandidate(trimmed) {
			continue
		}
		components, err := e.address.Parse(ctx, trimmed)
		if err != nil {
			e.logger.Warn("address parser unavailable, using regex",
				"capability", "address_parser",
				"error", err,
			)
			e.fallback("address_parser")
			return nil, false
		}
		road, house := "", ""
		for _, c := range components {
			switch c.Label {
			case "road":
				road = c.Value
			case "house_number":
				house = c.Value
			}
		}
		if road == "" || house == "" {
			continue
		}
		road = originalCase(trimmed, road)
		house = originalCase(trimmed, house)
		value := road + " " + house
		lower := strings.ToLower(trimmed)
		hi, ri := strings.Index(lower, strings.ToLower(house)), strings.Index(lower, strings.ToLower(road))
		if hi >= 0 && ri >= 0 && hi < ri {
			value = house + " " + road
		}
		ent := domain.ExtractedEntity{
			Type:             domain.EntityAddress,
			Value:            value,
			Confidence:       conf,
			ExtractionMethod: domain.MethodAddressParser,
		}
		if idx := strings.Index(line, trimmed); idx >= 0 {
			ent.Span = &domain.Span{Start: start + idx, End: start + idx + len(trimmed)}
		}
		out = append(out, ent)
	}
	return out, true
}

func regexStreets(text string, patterns languagePatterns, conf float64) []domain.ExtractedEntity {
	if patterns.street == nil {
		return nil
	}
	var out []domain.ExtractedEntity
	for _, m := range patterns.street.FindAllStringSubmatchIndex(text, -1) {
		if patterns.streetName == nil {
			out = append(out, regexEntity(domain.EntityAddress, text, m[0], m[1], conf))
			continue
		}
		name, ok := patterns.streetName(text[m[2]:m[3]])
		if !ok {
			continue
		}
		start := m[3] - len(name)
		out = append(out, regexEntity(domain.EntityAddress, text, start, m[1], conf))
	}
	return out
}

func isAddressCandidate(line string) bool {
	if line == "" || len(line) > maxAddressLineLength {
		return false
	}
	hasDigit, hasLetter := false, false
	for _, r := range line {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	return hasDigit && hasLetter
}

// originalCase recovers the casing used in line for a component an address parser
// returned normalized to lowercase.
func originalCase(line, component string) string {
	idx := strings.Index(strings.ToLower(line), strings.ToLower(component))
	if idx < 0 || idx+len(component) > len(line) {
		return component
	}
	candidate := line[idx : idx+len(component)]
	if strings.EqualFold(candidate, component) {
		return candidate
	}
	return component
}

func headerEntities(text string, cfg *domain.ScoringConfig) []domain.ExtractedEntity {
	if cfg == nil {
		return nil
	}
	var out []domain.ExtractedEntity
	groups := []struct {
		labels []string
		typ    domain.EntityType
		conf   float64
	}{
		{cfg.SenderLabels, domain.EntitySender, cfg.Value(domain.KeyHeaderPartyConfidence)},
		{cfg.RecipientLabels, domain.EntityRecipient, cfg.Value(domain.KeyHeaderPartyConfidence)},
		{cfg.HeaderLabels, domain.EntityHeaderField, cfg.Value(domain.KeyHeaderFieldConfidence)},
	}
	for _, g := range groups {
		re := labelPattern(g.labels)
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			if end-start > maxAddressLineLength {
				end = start + maxAddressLineLength
				for end > start && !utf8.RuneStart(text[end]) {
					end--
				}
			}
			ent := regexEntity(g.typ, text, start, end, g.conf)
			ent.ExtractionMethod = domain.MethodHeader
			out = append(out, ent)
		}
	}
	return out
}

func contactEntities(text string, cfg *domain.ScoringConfig) []domain.ExtractedEntity {
	var out []domain.ExtractedEntity
	var taken [][]int

	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		out = append(out, regexEntity(domain.EntityEmail, text, loc[0], loc[1], cfg.Value(domain.KeyEmailConfidence)))
		taken = append(taken, loc)
	}
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		if overlaps(taken, loc) {
			continue
		}
		out = append(out, regexEntity(domain.EntityURL, text, loc[0], loc[1], cfg.Value(domain.KeyURLConfidence)))
		taken = append(taken, loc)
	}
	for _, loc := range bareDomainPattern.FindAllStringIndex(text, -1) {
		if overlaps(taken, loc) {
			continue
		}
		out = append(out, regexEntity(domain.EntityURL, text, loc[0], loc[1], cfg.Value(domain.KeyBareDomainConfidence)))
	}
	return out
}

func overlaps(spans [][]int, loc []int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

func regexEntity(t domain.EntityType, text string, start, end int, conf float64) domain.ExtractedEntity {
	return domain.ExtractedEntity{
		Type:             t,
		Value:            text[start:end],
		Confidence:       conf,
		Span:             &domain.Span{Start: start, End: end},
		ExtractionMethod: domain.MethodRegex,
	}
}

func (e *Extractor) fallback(capability string) {
	if e.observer != nil {
		e.observer.ObserveFallback(capability)
	}
}
