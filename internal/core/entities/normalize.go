package entities

import (
	"strings"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

const trailingPunctuation = ".,;:!?-–—\"'`"

// Normalize collapses whitespace, strips trailing punctuation and at most one
// trailing field-label word.
func Normalize(value string, cfg *domain.ScoringConfig) string {
	v := strings.Join(strings.Fields(value), " ")
	v = strings.TrimRight(v, trailingPunctuation)

	fields := strings.Fields(v)
	if len(fields) > 1 && cfg.IsFieldLabel(strings.Trim(fields[len(fields)-1], trailingPunctuation)) {
		v = strings.Join(fields[:len(fields)-1], " ")
		v = strings.TrimRight(v, trailingPunctuation+" ")
	}
	return strings.TrimSpace(v)
}

// Deduplicate keeps one entity per (type, lowercase normalized value), the one with
// the highest confidence, at the position of the first occurrence.
func Deduplicate(in []domain.ExtractedEntity) []domain.ExtractedEntity {
	index := make(map[string]int, len(in))
	out := make([]domain.ExtractedEntity, 0, len(in))
	for _, e := range in {
		key := e.Key()
		if i, ok := index[key]; ok {
			if e.Confidence > out[i].Confidence {
				out[i] = e
			}
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}
