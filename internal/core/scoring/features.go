package scoring

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/lexicon"
)

var mixedCaseChaos = regexp.MustCompile(`\p{Ll}\p{Lu}\p{Ll}`)

// lookups carries the batched capability answers feature extraction needs.
type lookups struct {
	misspelled map[string]struct{}
	corpus     map[string]domain.CorpusStat
}

// extractFeatures computes the feature vector of one entity value. All gates of the
// rule cascade are derived here from the value itself, never from an adjusted score.
func extractFeatures(value string, t domain.EntityType, base float64, cfg *domain.ScoringConfig, lk lookups) domain.FeatureVector {
	fv := domain.FeatureVector{
		Type:           t,
		Language:       cfg.Language,
		BaseConfidence: base,
	}
	runes := []rune(value)
	fv.Length = float64(len(runes))
	if len(runes) == 0 {
		return fv
	}

	var letters, vowels, digits, special, upper, lower int
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
			if lexicon.IsVowel(r) {
				vowels++
			}
			if unicode.IsUpper(r) {
				upper++
			} else if unicode.IsLower(r) {
				lower++
			}
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r):
		default:
			special++
		}
	}
	fv.LetterCount = float64(letters)
	if letters > 0 {
		fv.VowelRatio = float64(vowels) / float64(letters)
		fv.ConsonantRatio = float64(letters-vowels) / float64(letters)
	}
	fv.DigitRatio = float64(digits) / fv.Length
	fv.SpecialCharRatio = float64(special) / fv.Length
	fv.RepetitiveCharScore = float64(longestRun(runes))

	words := strings.Fields(value)
	fv.WordCount = float64(len(words))
	fv.AllCaps = letters >= 2 && lower == 0
	fv.MixedCaseChaos = mixedCaseChaos.MatchString(value)
	fv.ProperMixedCase = upper > 0 && lower > 0 && !fv.MixedCaseChaos && startsUpper(value)

	var stop, capitalized, titled, alphaWords int
	for _, w := range words {
		clean := strings.ToLower(strings.Trim(w, ".,;:()\"'"))
		if cfg.IsStopword(clean) {
			stop++
		}
		if cfg.IsFieldLabel(clean) {
			fv.HasFieldLabelSubstring = true
		}
		if !startsWithLetter(w) {
			continue
		}
		alphaWords++
		if startsUpper(w) {
			capitalized++
			if hasLower(w) {
				titled++
			}
		}
	}
	if len(words) > 0 {
		fv.StopWordRatio = float64(stop) / float64(len(words))
	}
	fv.CapitalizedWords = float64(capitalized)
	fv.TitleCase = alphaWords > 0 && titled == alphaWords
	fv.IsSingleStopword = len(words) == 1 && stop == 1
	if len(words) > 1 {
		fv.HasFieldLabelSuffix = cfg.IsFieldLabel(strings.Trim(words[len(words)-1], ".,;:"))
	}
	fv.HasLegalSuffix = cfg.HasLegalSuffix(value)
	if p, ok := cfg.MatchPattern(t, value); ok {
		fv.PatternWeightKey = p.WeightKey
		if fv.PatternWeightKey == "" {
			fv.PatternWeightKey = domain.KeyPatternDefaultMultiplier
		}
	}

	fv.DictValidRatio = dictValidRatio(value, lk.misspelled)

	if t != domain.EntityEmail && t != domain.EntityURL {
		if stat, ok := lk.corpus[strings.ToLower(value)]; ok && stat.TotalDocuments >= int64(cfg.Int(domain.KeyCorpusMinDocuments)) {
			fv.CorpusDocumentRatio = stat.DocumentRatio()
		}
	}
	return fv
}

// dictionaryWords are the words of a value that take part in the dictionary check.
func dictionaryWords(value string) []string {
	var out []string
	for _, w := range lexicon.Words(value) {
		if len([]rune(w)) < 2 {
			continue
		}
		out = append(out, strings.ToLower(w))
	}
	return out
}

func dictValidRatio(value string, misspelled map[string]struct{}) float64 {
	words := dictionaryWords(value)
	if len(words) == 0 {
		return 0
	}
	valid := 0
	for _, w := range words {
		if _, bad := misspelled[w]; !bad {
			valid++
		}
	}
	return float64(valid) / float64(len(words))
}

// longestRun is the longest run of one repeated non-digit, non-space character, case-insensitive.
func longestRun(runes []rune) int {
	best, cur := 0, 0
	var prev rune
	for i, r := range runes {
		r = unicode.ToLower(r)
		if unicode.IsDigit(r) || unicode.IsSpace(r) {
			cur = 0
			prev = 0
			continue
		}
		if i > 0 && r == prev {
			cur++
		} else {
			cur = 1
		}
		prev = r
		if cur > best {
			best = cur
		}
	}
	return best
}

func startsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}
