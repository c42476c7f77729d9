package keywords

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const minTokenLength = 3

var punctuationRun = regexp.MustCompile(`([\p{P}\p{S}])[\p{P}\p{S}]+`)

// NormalizeText folds compatibility forms, strips control characters, collapses
// punctuation runs and whitespace, and lowercases with the language's rules.
func NormalizeText(text, lang string) string {
	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	text = punctuationRun.ReplaceAllString(text, "$1")
	text = strings.Join(strings.Fields(text), " ")
	return lowerCaser(lang).String(text)
}

// Tokenize splits normalized text into alphabetic runs of at least three characters.
func Tokenize(text string) []string {
	runs := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
	})
	out := runs[:0]
	for _, r := range runs {
		if len([]rune(r)) >= minTokenLength {
			out = append(out, r)
		}
	}
	return out
}

func lowerCaser(lang string) cases.Caser {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return cases.Lower(tag)
}
