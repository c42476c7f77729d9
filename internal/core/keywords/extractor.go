package keywords

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/lexicon"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

// Request is the input of one keyword extraction.
type Request struct {
	Text         string
	Language     string
	UserID       string
	// MustKeep terms are tokenized like the text, so words shorter than
	// three letters (e.g. "EU") cannot match and are skipped.
	MustKeep     []string
	MinFrequency int
	Rejected     []domain.RejectedEntity
}

// Result carries the ranked keywords and the distinct surviving tokens that
// CommitStatistics counts once the whole document succeeded.
type Result struct {
	Keywords []domain.Keyword
	Tokens   []string
}

type Extractor struct {
	spell    ports.SpellChecker
	corpus   ports.CorpusStatsStore
	observer ports.PipelineObserver
	logger   *slog.Logger
}

func NewExtractor(spell ports.SpellChecker, corpus ports.CorpusStatsStore, observer ports.PipelineObserver, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{spell: spell, corpus: corpus, observer: observer, logger: logger}
}

// Extract ranks document vocabulary by hybrid TF-IDF and appends keywords for
// organization candidates demoted by the scorer. It only reads corpus statistics.
func (e *Extractor) Extract(ctx context.Context, req Request, cfg *domain.ScoringConfig) Result {
	started := time.Now()
	minFreq := req.MinFrequency
	if minFreq <= 0 {
		minFreq = cfg.Int(domain.KeyKeywordMinFrequency)
	}
	mustKeep := e.mustKeepSet(req.MustKeep, req.Language)

	var tokens []string
	for _, tok := range Tokenize(NormalizeText(req.Text, req.Language)) {
		if _, keep := mustKeep[tok]; keep || !cfg.IsStopword(tok) {
			tokens = append(tokens, tok)
		}
	}
	tokens = e.spellFilter(ctx, tokens, mustKeep, minFreq, req.Language, cfg)

	counts := map[string]int{}
	for _, tok := range tokens {
		counts[tok]++
	}
	distinct := make([]string, 0, len(counts))
	for tok := range counts {
		distinct = append(distinct, tok)
	}
	sort.Strings(distinct)

	effectiveMin := minFreq
	if len(tokens) < cfg.Int(domain.KeyKeywordShortDocumentTokens) {
		effectiveMin = 1
	}

	idf := e.idf(ctx, distinct, req.Language, req.UserID, cfg)
	total := float64(len(tokens))
	mustKeepMultiplier := cfg.Value(domain.KeyKeywordMustKeepMultiplier)

	var out []domain.Keyword
	for _, tok := range distinct {
		_, keep := mustKeep[tok]
		if counts[tok] < effectiveMin && !keep {
			continue
		}
		relevance := 100 * (float64(counts[tok]) / total) * idf(tok)
		if keep {
			relevance *= mustKeepMultiplier
		}
		out = append(out, domain.Keyword{
			Term:           tok,
			Frequency:      counts[tok],
			RelevanceScore: round4(relevance),
			MustKeep:       keep,
		})
	}
	out = append(out, conversions(req.Rejected, counts, req.Language, cfg)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})

	limit := cfg.Int(domain.KeyKeywordMaxResults)
	kept := make([]domain.Keyword, 0, len(out))
	for _, kw := range out {
		if len(kept) < limit || kw.MustKeep || kw.FromEntity {
			kept = append(kept, kw)
		}
	}

	if e.observer != nil {
		e.observer.ObserveKeywords(len(kept))
		e.observer.ObserveStage("keywords", time.Since(started))
	}
	return Result{Keywords: kept, Tokens: distinct}
}

// CommitStatistics counts one processed document in the user's corpus and, once
// enough users are active, in the global corpus.
func (e *Extractor) CommitStatistics(ctx context.Context, lang, userID string, tokens []string, cfg *domain.ScoringConfig) error {
	if e.corpus == nil || len(tokens) == 0 {
		return nil
	}
	var errs []error
	if userID != "" {
		if err := e.corpus.RecordDocument(ctx, domain.UserScope(lang, userID), tokens); err != nil {
			errs = append(errs, fmt.Errorf("record user corpus: %w", err))
		}
	}

	users, err := e.corpus.ActiveUsers(ctx)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("count active users: %w", err))
	case users >= int64(cfg.Int(domain.KeyGlobalCorpusMinUsers)):
		if err := e.corpus.RecordDocument(ctx, domain.GlobalScope(lang), tokens); err != nil {
			errs = append(errs, fmt.Errorf("record global corpus: %w", err))
		}
	default:
		e.logger.Debug("global corpus update skipped below privacy threshold",
			"language", lang,
			"active_users", users,
		)
	}
	return errors.Join(errs...)
}

// spellFilter drops apparent OCR garbage. Must-keep tokens and tokens more
// frequent than twice the minimum frequency are exempt.
func (e *Extractor) spellFilter(ctx context.Context, tokens []string, mustKeep map[string]struct{}, minFreq int, lang string, cfg *domain.ScoringConfig) []string {
	if !cfg.Bool(domain.KeyKeywordSpellFilterEnabled) || len(tokens) == 0 {
		return tokens
	}
	counts := map[string]int{}
	for _, tok := range tokens {
		counts[tok]++
	}
	var candidates []string
	for tok, n := range counts {
		if _, keep := mustKeep[tok]; keep || n > 2*minFreq {
			continue
		}
		candidates = append(candidates, tok)
	}
	if len(candidates) == 0 {
		return tokens
	}
	sort.Strings(candidates)

	bad := lexicon.Misspelled(candidates)
	if e.spell != nil {
		checked, err := e.spell.Misspelled(ctx, candidates, lang)
		if err == nil {
			bad = checked
		} else {
			e.logger.Warn("spell checker unavailable, using vowel heuristic for keywords",
				"language", lang,
				"error", err,
			)
			e.fallback("spellcheck")
		}
	} else {
		e.fallback("spellcheck")
	}

	out := tokens[:0]
	for _, tok := range tokens {
		if _, drop := bad[tok]; !drop {
			out = append(out, tok)
		}
	}
	return out
}

// idf returns the hybrid inverse document frequency for the document's words.
// A corpus failure degrades to the neutral IDF.
func (e *Extractor) idf(ctx context.Context, words []string, lang, userID string, cfg *domain.ScoringConfig) func(string) float64 {
	neutral := cfg.Value(domain.KeyIDFNeutral)
	if !cfg.Bool(domain.KeyTFIDFEnabled) || e.corpus == nil || len(words) == 0 {
		return func(string) float64 { return neutral }
	}

	global, err := e.scopeIDF(ctx, domain.GlobalScope(lang), words, cfg)
	if err != nil {
		e.logger.Warn("corpus statistics unavailable, using neutral idf",
			"language", lang,
			"error", err,
		)
		e.fallback("corpus")
		return func(string) float64 { return neutral }
	}
	if userID == "" {
		return global.idf
	}
	user, err := e.scopeIDF(ctx, domain.UserScope(lang, userID), words, cfg)
	if err != nil {
		e.logger.Warn("user corpus unavailable, using global idf only",
			"language", lang,
			"error", err,
		)
		e.fallback("corpus")
		return global.idf
	}

	alpha := hybridAlpha(user.total, cfg)
	return func(w string) float64 {
		return alpha*global.idf(w) + (1-alpha)*user.idf(w)
	}
}

type scopeStats struct {
	total     int64
	stats     map[string]domain.CorpusStat
	smoothing float64
	unknown   float64
}

// idf uses the total read together with the word's count. Counts above the
// total are clamped so the result never goes negative.
func (s scopeStats) idf(word string) float64 {
	stat, ok := s.stats[word]
	if !ok || stat.DocumentCount <= 0 {
		return s.unknown
	}
	n := stat.TotalDocuments
	if n <= 0 {
		n = s.total
	}
	df := min(stat.DocumentCount, n)
	return math.Log((float64(n) + s.smoothing) / (float64(df) + s.smoothing))
}

func (e *Extractor) scopeIDF(ctx context.Context, scope domain.CorpusScope, words []string, cfg *domain.ScoringConfig) (scopeStats, error) {
	total, err := e.corpus.Totals(ctx, scope)
	if err != nil {
		return scopeStats{}, err
	}
	stats, err := e.corpus.Lookup(ctx, scope, words)
	if err != nil {
		return scopeStats{}, err
	}
	return scopeStats{
		total:     total,
		stats:     stats,
		smoothing: cfg.Value(domain.KeyIDFSmoothing),
		unknown:   cfg.Value(domain.KeyIDFUnknown),
	}, nil
}

// hybridAlpha decays linearly from start to floor as the user's corpus grows.
func hybridAlpha(userDocuments int64, cfg *domain.ScoringConfig) float64 {
	start := cfg.Value(domain.KeyHybridAlphaStart)
	floor := cfg.Value(domain.KeyHybridAlphaFloor)
	decay := cfg.Value(domain.KeyHybridAlphaDecayDocuments)
	progress := 1.0
	if decay > 0 {
		progress = math.Min(1, float64(userDocuments)/decay)
	}
	return start - (start-floor)*progress
}

// conversions emits frequency-one keywords for organization candidates inside the
// conversion band, skipping terms the document already produced.
func conversions(rejected []domain.RejectedEntity, present map[string]int, lang string, cfg *domain.ScoringConfig) []domain.Keyword {
	low := cfg.Value(domain.KeyThresholdOrganizationConversion)
	high := cfg.Threshold(domain.EntityOrganization)
	relLow := cfg.Value(domain.KeyConversionRelevanceLow)
	relHigh := cfg.Value(domain.KeyConversionRelevanceHigh)

	seen := map[string]struct{}{}
	var out []domain.Keyword
	for _, r := range rejected {
		if r.Type != domain.EntityOrganization || r.Confidence < low || r.Confidence >= high {
			continue
		}
		term := strings.Join(Tokenize(NormalizeText(r.Value, lang)), " ")
		if term == "" {
			continue
		}
		if _, ok := present[term]; ok {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}

		position := 0.0
		if high > low {
			position = (r.Confidence - low) / (high - low)
		}
		out = append(out, domain.Keyword{
			Term:           term,
			Frequency:      1,
			RelevanceScore: round4(relLow + (relHigh-relLow)*position),
			FromEntity:     true,
		})
	}
	return out
}

func (e *Extractor) mustKeepSet(terms []string, lang string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, term := range terms {
		toks := Tokenize(NormalizeText(term, lang))
		if len(toks) == 0 {
			e.logger.Debug("must-keep term yields no tokens", "term", term, "language", lang)
			continue
		}
		for _, tok := range toks {
			out[tok] = struct{}{}
		}
	}
	return out
}

func (e *Extractor) fallback(capability string) {
	if e.observer != nil {
		e.observer.ObserveFallback(capability)
	}
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
