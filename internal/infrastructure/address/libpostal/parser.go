// Package libpostal parses address lines through a libpostal REST service
// (GET /parse?address=... returning [{"label": "road", "value": "..."}]).
package libpostal

import (
	"context"
	"net/url"
	"strings"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/httpjson"
)

type Parser struct {
	client *httpjson.Client
}

func New(client *httpjson.Client) *Parser {
	return &Parser{client: client}
}

type component struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (p *Parser) Parse(ctx context.Context, line string) ([]domain.AddressComponent, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	var resp []component
	if err := p.client.GetJSON(ctx, "/parse", url.Values{"address": {line}}, &resp, "parse"); err != nil {
		return nil, err
	}
	out := make([]domain.AddressComponent, 0, len(resp))
	for _, c := range resp {
		if c.Value == "" {
			continue
		}
		out = append(out, domain.AddressComponent{Value: c.Value, Label: strings.ToLower(c.Label)})
	}
	return out, nil
}
