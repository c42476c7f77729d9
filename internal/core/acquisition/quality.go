package acquisition

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/lexicon"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

const (
	minCharRatio      = 0.7
	maxSampledWords   = 100
	charRatioWeight   = 0.2
	spellingWeight    = 0.8
	fallbackSpellName = "spellcheck"
)

// QualityAssessor estimates how trustworthy extracted text is.
type QualityAssessor struct {
	spell    ports.SpellChecker
	observer ports.PipelineObserver
	logger   *slog.Logger
}

func NewQualityAssessor(spell ports.SpellChecker, observer ports.PipelineObserver, logger *slog.Logger) *QualityAssessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &QualityAssessor{spell: spell, observer: observer, logger: logger}
}

// Assess returns a score in [0,1] and the metrics it was derived from. It never fails.
func (q *QualityAssessor) Assess(ctx context.Context, text, language string) (float64, domain.QualityMetrics) {
	total := 0
	valid := 0
	for _, r := range text {
		total++
		if isExpectedChar(r) {
			valid++
		}
	}
	if total == 0 {
		return 0, domain.QualityMetrics{Method: domain.QualityEmpty}
	}

	m := domain.QualityMetrics{CharRatio: float64(valid) / float64(total)}
	if m.CharRatio < minCharRatio {
		m.Method = domain.QualityCharRatio
		m.Score = charRatioWeight * m.CharRatio
		return m.Score, m
	}

	words := sampleWords(text, maxSampledWords)
	m.SampledWords = len(words)
	if len(words) == 0 {
		m.Method = domain.QualityHeuristic
		m.Score = charRatioWeight * m.CharRatio
		return m.Score, m
	}

	misspelled, method := q.misspelled(ctx, words, language)
	m.Method = method
	m.Misspelled = misspelled
	m.ErrorRate = float64(misspelled) / float64(len(words))
	m.SpellingScore = spellingScore(m.ErrorRate)
	m.Score = lexicon.Clamp01(charRatioWeight*m.CharRatio + spellingWeight*m.SpellingScore)
	return m.Score, m
}

func (q *QualityAssessor) misspelled(ctx context.Context, words []string, language string) (int, string) {
	if q.spell != nil {
		bad, err := q.spell.Misspelled(ctx, words, language)
		if err == nil {
			n := 0
			for _, w := range words {
				if _, ok := bad[w]; ok {
					n++
				}
			}
			return n, domain.QualityDictionary
		}
		q.logger.Warn("spell check unavailable, using vowel heuristic",
			"capability", fallbackSpellName,
			"language", language,
			"error", err,
		)
	}
	if q.observer != nil {
		q.observer.ObserveFallback(fallbackSpellName)
	}
	return len(lexicon.Misspelled(words)), domain.QualityHeuristic
}

// spellingScore maps an error rate onto [0,1]; it is monotonically non-increasing.
func spellingScore(errorRate float64) float64 {
	e := errorRate
	switch {
	case e <= 0.05:
		return 1.0
	case e <= 0.15:
		return 1.0 - (e-0.05)*0.5
	case e <= 0.30:
		return 0.95 - (e-0.15)*(0.35/0.15)
	case e <= 0.50:
		return 0.60 - (e-0.30)*(0.50/0.20)
	default:
		return lexicon.Clamp01(0.10 - (e-0.50)*0.5)
	}
}

func isExpectedChar(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r), unicode.IsPunct(r):
		return true
	case unicode.Is(unicode.Sc, r), unicode.Is(unicode.Sm, r):
		return true
	default:
		return false
	}
}

// sampleWords returns up to limit distinct lowercase alphabetic words in order of appearance.
func sampleWords(text string, limit int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, w := range lexicon.Words(text) {
		if len([]rune(w)) < 2 {
			continue
		}
		w = strings.ToLower(w)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
