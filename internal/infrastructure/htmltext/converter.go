// Package htmltext reduces HTML documents to plain text.
package htmltext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	blockBoundary = regexp.MustCompile(`(?i)<\s*(br\s*/?|/?(p|div|li|ul|ol|tr|table|h[1-6]|section|article|header|footer|blockquote|pre))(\s[^>]*)?>`)
	cellBoundary  = regexp.MustCompile(`(?i)</\s*t[dh]\s*>`)
	spaceRun      = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines    = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Converter strips every tag with bluemonday's strict policy after turning
// block boundaries into line breaks. Script and style bodies are dropped.
type Converter struct {
	policy *bluemonday.Policy
}

func New() *Converter {
	return &Converter{policy: bluemonday.StrictPolicy()}
}

func (c *Converter) ToText(markup string) string {
	marked := blockBoundary.ReplaceAllString(markup, "\n$0")
	marked = cellBoundary.ReplaceAllString(marked, "$0\t")
	text := html.UnescapeString(c.policy.Sanitize(marked))
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
