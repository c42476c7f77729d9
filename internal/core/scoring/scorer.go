package scoring

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/lexicon"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

// Decision is the filter outcome of one scored entity.
type Decision string

const (
	DecisionAccepted   Decision = "accepted"
	DecisionConverted  Decision = "converted"
	DecisionFieldLabel Decision = "dropped_field_label"
	DecisionThreshold  Decision = "dropped_threshold"
	DecisionBlacklist  Decision = "dropped_blacklist"
)

// Explanation describes how one entity was scored and filtered.
type Explanation struct {
	Entity      domain.ExtractedEntity `json:"entity"`
	Strategy    string                 `json:"strategy"`
	Features    domain.FeatureVector   `json:"features"`
	Adjustments []Adjustment           `json:"adjustments,omitempty"`
	Score       float64                `json:"score"`
	Threshold   float64                `json:"threshold"`
	Decision    Decision               `json:"decision"`
}

// Scorer re-scores extracted entities and splits them into accepted entities
// and organization candidates that are demoted to keywords.
type Scorer struct {
	spell    ports.SpellChecker
	corpus   ports.CorpusStatsStore
	model    ports.ScoringModel
	observer ports.PipelineObserver
	logger   *slog.Logger
}

func NewScorer(spell ports.SpellChecker, corpus ports.CorpusStatsStore, model ports.ScoringModel, observer ports.PipelineObserver, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{spell: spell, corpus: corpus, model: model, observer: observer, logger: logger}
}

// Strategy selects the scoring strategy for the configured language.
func (s *Scorer) Strategy(cfg *domain.ScoringConfig) Strategy {
	cascade := NewRuleCascade(cfg)
	if s.model != nil && s.model.Available(cfg.Language) {
		return NewLearnedStrategy(s.model, cascade, s.observer, s.logger)
	}
	return cascade
}

// ExtractFeatures computes the feature vector for a single value.
func (s *Scorer) ExtractFeatures(ctx context.Context, value string, t domain.EntityType, base float64, cfg *domain.ScoringConfig) domain.FeatureVector {
	lk := s.lookup(ctx, []domain.ExtractedEntity{{Type: t, NormalizedValue: value}}, cfg)
	return extractFeatures(value, t, base, cfg, lk)
}

// Score replaces each entity's confidence with its quality score and filters the result.
func (s *Scorer) Score(ctx context.Context, entities []domain.ExtractedEntity, cfg *domain.ScoringConfig) domain.ScoredEntities {
	explained := s.Explain(ctx, entities, cfg)

	out := domain.ScoredEntities{
		Accepted:            []domain.ExtractedEntity{},
		RejectedForKeywords: []domain.RejectedEntity{},
	}
	dropped := 0
	for _, ex := range explained {
		switch ex.Decision {
		case DecisionAccepted:
			out.Accepted = append(out.Accepted, ex.Entity)
		case DecisionConverted:
			out.RejectedForKeywords = append(out.RejectedForKeywords, domain.RejectedEntity{
				Value:      ex.Entity.NormalizedValue,
				Type:       ex.Entity.Type,
				Confidence: ex.Entity.Confidence,
			})
		default:
			dropped++
			s.logger.Debug("entity dropped",
				"entity_type", ex.Entity.Type,
				"value", ex.Entity.NormalizedValue,
				"score", ex.Score,
				"decision", ex.Decision,
			)
		}
	}
	if s.observer != nil {
		s.observer.ObserveEntities(len(out.Accepted), len(out.RejectedForKeywords), dropped)
	}
	return out
}

// Explain scores and filters entities and reports the reasoning for each one.
func (s *Scorer) Explain(ctx context.Context, entities []domain.ExtractedEntity, cfg *domain.ScoringConfig) []Explanation {
	if len(entities) == 0 {
		return nil
	}
	started := time.Now()
	lk := s.lookup(ctx, entities, cfg)
	strategy := s.Strategy(cfg)
	cascade, isCascade := strategy.(*RuleCascade)

	out := make([]Explanation, 0, len(entities))
	for _, e := range entities {
		value := e.NormalizedValue
		if value == "" {
			value = e.Value
		}
		fv := extractFeatures(value, e.Type, e.Confidence, cfg, lk)
		ex := Explanation{Strategy: strategy.Name(), Features: fv}
		if isCascade {
			ex.Score, ex.Adjustments = cascade.Explain(fv)
		} else {
			score, err := strategy.Score(ctx, fv)
			if err != nil {
				score, ex.Adjustments = NewRuleCascade(cfg).Explain(fv)
			}
			ex.Score = score
		}
		e.Confidence = ex.Score
		ex.Entity = e
		ex.Threshold, ex.Decision = decide(e, cfg)
		out = append(out, ex)
	}
	if s.observer != nil {
		s.observer.ObserveStage("scoring", time.Since(started))
	}
	return out
}

// decide applies, in order: exact field-label drop, the per-type threshold with
// the organization conversion band, and the blacklist.
func decide(e domain.ExtractedEntity, cfg *domain.ScoringConfig) (float64, Decision) {
	threshold := cfg.Threshold(e.Type)
	if cfg.IsFieldLabel(e.NormalizedValue) {
		return threshold, DecisionFieldLabel
	}
	if e.Confidence < threshold {
		if e.Type == domain.EntityOrganization && e.Confidence >= cfg.Value(domain.KeyThresholdOrganizationConversion) {
			return threshold, DecisionConverted
		}
		return threshold, DecisionThreshold
	}
	if cfg.IsBlacklisted(e.Type, e.NormalizedValue) {
		return threshold, DecisionBlacklist
	}
	return threshold, DecisionAccepted
}

// lookup batches the spell-check and corpus queries for all entities.
func (s *Scorer) lookup(ctx context.Context, entities []domain.ExtractedEntity, cfg *domain.ScoringConfig) lookups {
	seen := map[string]struct{}{}
	var words []string
	var values []string
	seenValue := map[string]struct{}{}
	for _, e := range entities {
		v := e.NormalizedValue
		if v == "" {
			v = e.Value
		}
		for _, w := range dictionaryWords(v) {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
		if e.Type == domain.EntityEmail || e.Type == domain.EntityURL {
			continue
		}
		lower := strings.ToLower(v)
		if _, ok := seenValue[lower]; !ok {
			seenValue[lower] = struct{}{}
			values = append(values, lower)
		}
	}

	lk := lookups{misspelled: s.misspelled(ctx, words, cfg.Language)}
	if s.corpus != nil && len(values) > 0 {
		stats, err := s.corpus.Lookup(ctx, domain.GlobalScope(cfg.Language), values)
		if err != nil {
			s.logger.Warn("corpus statistics unavailable, skipping frequency penalty",
				"language", cfg.Language,
				"error", err,
			)
			if s.observer != nil {
				s.observer.ObserveFallback("corpus")
			}
		} else {
			lk.corpus = stats
		}
	}
	return lk
}

func (s *Scorer) misspelled(ctx context.Context, words []string, language string) map[string]struct{} {
	if len(words) == 0 {
		return nil
	}
	if s.spell != nil {
		bad, err := s.spell.Misspelled(ctx, words, language)
		if err == nil {
			return bad
		}
		s.logger.Warn("spell checker unavailable, using vowel heuristic",
			"language", language,
			"error", err,
		)
	}
	if s.observer != nil {
		s.observer.ObserveFallback("spellcheck")
	}
	return lexicon.Misspelled(words)
}
