// Package httpner talks to a NER sidecar that serves per-language models over HTTP.
//
//	POST /ner {"text": "...", "language": "de"}
//	-> {"entities": [{"label": "ORG", "text": "...", "start": 0, "end": 11, "score": 0.93}]}
package httpner

import (
	"context"
	"strings"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/chunking"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/httpjson"
)

type Detector struct {
	client   *httpjson.Client
	splitter *chunking.Splitter
}

// New sends texts longer than one splitter window in overlapping chunks. A nil
// splitter sends every text in one request.
func New(client *httpjson.Client, splitter *chunking.Splitter) *Detector {
	return &Detector{client: client, splitter: splitter}
}

type detectRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type detectResponse struct {
	Entities []struct {
		Label string  `json:"label"`
		Text  string  `json:"text"`
		Start int     `json:"start"`
		End   int     `json:"end"`
		Score float64 `json:"score"`
	} `json:"entities"`
}

func (d *Detector) Detect(ctx context.Context, text, language string) ([]domain.NERSpan, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if d.splitter == nil || d.splitter.Fits(text) {
		return d.detect(ctx, text, language)
	}

	type spanKey struct {
		label, text string
		start, end  int
	}
	var out []domain.NERSpan
	seen := make(map[spanKey]struct{})
	for _, chunk := range d.splitter.Split(text) {
		spans, err := d.detect(ctx, chunk.Text, language)
		if err != nil {
			return nil, err
		}
		for _, s := range spans {
			if s.End > s.Start {
				s.Start += chunk.Offset
				s.End += chunk.Offset
			}
			k := spanKey{s.Label, s.Text, s.Start, s.End}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, s)
		}
	}
	return out, nil
}

func (d *Detector) detect(ctx context.Context, text, language string) ([]domain.NERSpan, error) {
	var resp detectResponse
	if err := d.client.PostJSON(ctx, "/ner", detectRequest{Text: text, Language: language}, &resp, "detect"); err != nil {
		return nil, err
	}

	spans := make([]domain.NERSpan, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		value := e.Text
		if value == "" && e.Start >= 0 && e.End > e.Start && e.End <= len(text) {
			value = text[e.Start:e.End]
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		spans = append(spans, domain.NERSpan{
			Label:      strings.ToUpper(e.Label),
			Text:       value,
			Start:      e.Start,
			End:        e.End,
			Confidence: e.Score,
		})
	}
	return spans, nil
}
