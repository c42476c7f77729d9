// Package lexicon holds small character-class helpers shared by the pipeline stages.
package lexicon

import (
	"strings"
	"unicode"
)

const vowels = "aeiouyäöüàáâãåæèéêëìíîïòóôõøùúûýÿœ"

func IsVowel(r rune) bool {
	return strings.ContainsRune(vowels, unicode.ToLower(r))
}

// HasVowel is the dictionary-free plausibility check for a word.
func HasVowel(word string) bool {
	for _, r := range word {
		if IsVowel(r) {
			return true
		}
	}
	return false
}

// Words splits text into runs of letters.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
}

// Misspelled applies the vowel heuristic to words and returns the implausible ones.
func Misspelled(words []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range words {
		if !HasVowel(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
