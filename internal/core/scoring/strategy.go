package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/lexicon"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

// Strategy maps a feature vector to a quality score in [0,1].
type Strategy interface {
	Name() string
	Score(ctx context.Context, fv domain.FeatureVector) (float64, error)
}

// LearnedStrategy scores with a trained model and falls back to the rule cascade
// on any runtime failure of the model.
type LearnedStrategy struct {
	model    ports.ScoringModel
	fallback Strategy
	observer ports.PipelineObserver
	logger   *slog.Logger
}

func NewLearnedStrategy(model ports.ScoringModel, fallback Strategy, observer ports.PipelineObserver, logger *slog.Logger) *LearnedStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LearnedStrategy{model: model, fallback: fallback, observer: observer, logger: logger}
}

func (s *LearnedStrategy) Name() string { return "learned_model" }

func (s *LearnedStrategy) Score(ctx context.Context, fv domain.FeatureVector) (float64, error) {
	p, err := s.model.Predict(ctx, fv.Language, fv.Values())
	if err == nil && (math.IsNaN(p) || math.IsInf(p, 0)) {
		err = fmt.Errorf("model returned non-finite score %v", p)
	}
	if err != nil {
		s.logger.Warn("scoring model failed, using rule cascade",
			"language", fv.Language,
			"entity_type", fv.Type,
			"error", err,
		)
		if s.observer != nil {
			s.observer.ObserveFallback("scoring_model")
		}
		return s.fallback.Score(ctx, fv)
	}
	return lexicon.Clamp01(p), nil
}
