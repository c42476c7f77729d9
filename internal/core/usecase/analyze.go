package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/keywords"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/scoring"
)

type TextAcquirer interface {
	Acquire(ctx context.Context, data []byte, mimeType, language string) domain.OCRRecord
}

type EntityExtractor interface {
	Extract(ctx context.Context, text, language string, cfg *domain.ScoringConfig) []domain.ExtractedEntity
}

type EntityScorer interface {
	Score(ctx context.Context, entities []domain.ExtractedEntity, cfg *domain.ScoringConfig) domain.ScoredEntities
}

// EntityExplainer is implemented by scorers that can report their reasoning.
type EntityExplainer interface {
	Explain(ctx context.Context, entities []domain.ExtractedEntity, cfg *domain.ScoringConfig) []scoring.Explanation
}

type KeywordExtractor interface {
	Extract(ctx context.Context, req keywords.Request, cfg *domain.ScoringConfig) keywords.Result
	CommitStatistics(ctx context.Context, language, userID string, tokens []string, cfg *domain.ScoringConfig) error
}

// AnalyzeDocumentUseCase runs acquisition, extraction, scoring and keywording
// strictly in sequence. Corpus statistics are written only after the keyword
// list is complete.
type AnalyzeDocumentUseCase struct {
	dictionary      ports.DictionaryProvider
	acquirer        TextAcquirer
	extractor       EntityExtractor
	scorer          EntityScorer
	keywords        KeywordExtractor
	observer        ports.PipelineObserver
	defaultLanguage string
	logger          *slog.Logger
}

func NewAnalyzeDocumentUseCase(
	dictionary ports.DictionaryProvider,
	acquirer TextAcquirer,
	extractor EntityExtractor,
	scorer EntityScorer,
	keywordExtractor KeywordExtractor,
	observer ports.PipelineObserver,
	defaultLanguage string,
	logger *slog.Logger,
) *AnalyzeDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLanguage == "" {
		defaultLanguage = "de"
	}
	return &AnalyzeDocumentUseCase{
		dictionary:      dictionary,
		acquirer:        acquirer,
		extractor:       extractor,
		scorer:          scorer,
		keywords:        keywordExtractor,
		observer:        observer,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// Analyze always returns a result for a live context. Only cancellation is
// reported as an error.
func (uc *AnalyzeDocumentUseCase) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang := NormalizeLanguage(req.Language, uc.defaultLanguage)
	cfg := uc.loadConfig(ctx, lang)

	started := time.Now()
	record := uc.acquirer.Acquire(ctx, req.Data, req.MimeType, lang)
	uc.stage("acquisition", started)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started = time.Now()
	extracted := uc.extractor.Extract(ctx, record.Text, lang, cfg)
	uc.stage("extraction", started)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := uc.scorer.Score(ctx, extracted, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kw := uc.keywords.Extract(ctx, keywords.Request{
		Text:         record.Text,
		Language:     lang,
		UserID:       req.UserID,
		MustKeep:     req.MustKeep,
		MinFrequency: req.MinFrequency,
		Rejected:     scored.RejectedForKeywords,
	}, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := uc.keywords.CommitStatistics(ctx, lang, req.UserID, kw.Tokens, cfg); err != nil {
		uc.logger.Warn("corpus statistics update failed",
			"language", lang,
			"user_id", req.UserID,
			"error", err,
		)
	}

	entities := scored.Accepted
	if entities == nil {
		entities = []domain.ExtractedEntity{}
	}
	keywordList := kw.Keywords
	if keywordList == nil {
		keywordList = []domain.Keyword{}
	}
	return &domain.AnalysisResult{
		Language: lang,
		Entities: entities,
		Keywords: keywordList,
		OCR:      record,
	}, nil
}

// Explain runs acquisition and extraction and reports how every extracted
// entity was scored. It never touches corpus statistics.
func (uc *AnalyzeDocumentUseCase) Explain(ctx context.Context, req domain.AnalyzeRequest) ([]scoring.Explanation, error) {
	explainer, ok := uc.scorer.(EntityExplainer)
	if !ok {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "explain", errors.New("scorer cannot explain decisions"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang := NormalizeLanguage(req.Language, uc.defaultLanguage)
	cfg := uc.loadConfig(ctx, lang)

	record := uc.acquirer.Acquire(ctx, req.Data, req.MimeType, lang)
	extracted := uc.extractor.Extract(ctx, record.Text, lang, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return explainer.Explain(ctx, extracted, cfg), nil
}

// loadConfig falls back to the built-in defaults when the provider fails.
func (uc *AnalyzeDocumentUseCase) loadConfig(ctx context.Context, lang string) *domain.ScoringConfig {
	if uc.dictionary != nil {
		cfg, err := uc.dictionary.Load(ctx, lang)
		if err == nil && cfg != nil {
			return cfg
		}
		uc.logger.Warn("dictionary provider failed, using built-in defaults",
			"language", lang,
			"error", err,
		)
	}
	return domain.NewScoringConfig(lang)
}

func (uc *AnalyzeDocumentUseCase) stage(name string, started time.Time) {
	if uc.observer != nil {
		uc.observer.ObserveStage(name, time.Since(started))
	}
}

// NormalizeLanguage reduces a language tag to its base subtag, e.g. "de-AT" to "de".
func NormalizeLanguage(tag, fallback string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fallback
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return fallback
	}
	base, confidence := parsed.Base()
	if confidence == language.No {
		return fallback
	}
	return base.String()
}
