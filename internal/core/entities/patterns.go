package entities

import (
	"regexp"
	"sort"
	"strings"
)

type languagePatterns struct {
	postalCity []*regexp.Regexp
	// street matches candidates; when streetName is set, group 1 is the name part,
	// group 2 the house number, and streetName trims the name or rejects the match.
	street     *regexp.Regexp
	streetName func(name string) (string, bool)
}

var germanStreetSuffixes = []string{
	"straße", "strasse", "str.", "weg", "platz", "allee", "gasse",
	"ring", "damm", "ufer", "chaussee", "steig", "pfad",
}

var patternsByLanguage = map[string]languagePatterns{
	"de": {
		postalCity: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:D-)?\d{5}[ \t]+\p{Lu}[\p{Ll}ß]+(?:[ -]\p{Lu}[\p{Ll}ß]+)?`),
		},
		street:     regexp.MustCompile(`(\p{Lu}[\p{L}.-]*(?:[ \t]+\p{Lu}[\p{L}.-]*)*)[ \t]+(\d{1,4}[ \t]?[a-zA-Z]?)\b`),
		streetName: germanStreetName,
	},
	"en": {
		postalCity: []*regexp.Regexp{
			regexp.MustCompile(`\b\p{Lu}[a-z]+(?:[ \t]\p{Lu}[a-z]+)*,?[ \t]+[A-Z]{2}[ \t]+\d{5}(?:-\d{4})?\b`),
			regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?[ \t]?\d[A-Z]{2}\b`),
		},
		street: regexp.MustCompile(`\b\d{1,5}[ \t]+(?:\p{Lu}[a-z]+[ \t]){1,3}(?:Street|St\.?|Avenue|Ave\.?|Road|Rd\.?|Boulevard|Blvd\.?|Lane|Ln\.?|Drive|Dr\.?|Way|Court|Ct\.?|Place|Pl\.?)`),
	},
	"fr": {
		postalCity: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{5}[ \t]+\p{Lu}[\p{L}-]+(?:[ \t]\p{Lu}[\p{L}-]+)?`),
		},
		street: regexp.MustCompile(`(?i)\b\d{1,4}(?:[ \t]?(?:bis|ter))?,?[ \t]+(?:rue|avenue|boulevard|place|chemin|allée|impasse|quai|route)(?:[ \t]+(?:de|du|des|la|le)?[ \t]*\p{L}[\p{L}'-]+){1,4}`),
	},
}

func patternsFor(language string) languagePatterns {
	if p, ok := patternsByLanguage[language]; ok {
		return p
	}
	return patternsByLanguage["en"]
}

// germanStreetName keeps the word carrying the street suffix, plus the preceding
// word when the suffix stands alone ("Berliner Straße").
func germanStreetName(name string) (string, bool) {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "", false
	}
	last := strings.ToLower(words[len(words)-1])
	for _, suffix := range germanStreetSuffixes {
		if last == suffix {
			if len(words) < 2 {
				return "", false
			}
			return words[len(words)-2] + " " + words[len(words)-1], true
		}
	}
	for _, suffix := range germanStreetSuffixes {
		if strings.HasSuffix(last, suffix) || strings.HasSuffix(last, "-"+suffix) {
			return words[len(words)-1], true
		}
	}
	return "", false
}

var (
	emailPattern      = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	urlPattern        = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"'\])]+`)
	bareDomainPattern = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+(?:com|de|org|net|eu|info|io|fr|uk|ch|at|nl|be|it|es|biz|gov|edu)\b`)
)

// labelPattern matches "Label: value" lines for any of the given labels,
// preferring longer labels so "bill to" wins over "to".
func labelPattern(labels []string) *regexp.Regexp {
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(l), " ", `[ \t]+`))
	}
	if len(quoted) == 0 {
		return nil
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return regexp.MustCompile(`(?mi)^[ \t]*(?:` + strings.Join(quoted, "|") + `)[ \t]*:[ \t]*(\S.*)$`)
}
