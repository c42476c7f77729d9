// Package chunking cuts long document text into overlapping windows for
// capabilities with request size limits.
package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunk is a window of the source text; Offset is its byte position there.
type Chunk struct {
	Text   string
	Offset int
}

type Splitter struct {
	ChunkSize int // runes
	Overlap   int // runes
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 4000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Fits reports whether text can be sent as a single chunk.
func (s *Splitter) Fits(text string) bool {
	return utf8.RuneCountInString(text) <= s.ChunkSize
}

// Split prefers to end a window at a line break, then at whitespace, as long
// as the cut keeps at least half the window. Offsets always land on rune
// boundaries, so callers can shift spans back into the source text.
func (s *Splitter) Split(text string) []Chunk {
	if text == "" {
		return nil
	}
	// byte offset of every rune, plus the end of text
	bounds := make([]int, 0, len(text)+1)
	for i := range text {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(text))
	runes := len(bounds) - 1

	var out []Chunk
	for start := 0; start < runes; {
		end := start + s.ChunkSize
		if end >= runes {
			end = runes
		} else {
			end = s.cut(text, bounds, start, end)
		}

		chunk := text[bounds[start]:bounds[end]]
		if strings.TrimSpace(chunk) != "" {
			out = append(out, Chunk{Text: chunk, Offset: bounds[start]})
		}
		if end == runes {
			break
		}
		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func (s *Splitter) cut(text string, bounds []int, start, end int) int {
	floor := start + s.ChunkSize/2
	space := -1
	for i := end; i > floor; i-- {
		r, _ := utf8.DecodeRuneInString(text[bounds[i-1]:])
		if r == '\n' {
			return i
		}
		if space < 0 && unicode.IsSpace(r) {
			space = i
		}
	}
	if space > 0 {
		return space
	}
	return end
}
