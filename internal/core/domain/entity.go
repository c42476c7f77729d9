package domain

import "strings"

type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityAddress      EntityType = "ADDRESS"
	EntityEmail        EntityType = "EMAIL"
	EntityURL          EntityType = "URL"
	EntitySender       EntityType = "SENDER"
	EntityRecipient    EntityType = "RECIPIENT"
	EntityHeaderField  EntityType = "HEADER_FIELD"
)

// EntityTypes lists every type in one-hot feature order.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityOrganization,
	EntityLocation,
	EntityAddress,
	EntityEmail,
	EntityURL,
	EntitySender,
	EntityRecipient,
	EntityHeaderField,
}

func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range EntityTypes {
		if known == t {
			return t, true
		}
	}
	return "", false
}

// Extraction methods recorded on entities.
const (
	MethodNER           = "ner"
	MethodAddressParser = "address_parser"
	MethodRegex         = "regex"
	MethodHeader        = "header"
)

type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type ExtractedEntity struct {
	Type             EntityType `json:"type"`
	Value            string     `json:"value"`
	NormalizedValue  string     `json:"normalized_value"`
	Confidence       float64    `json:"confidence"`
	Span             *Span      `json:"span,omitempty"`
	ExtractionMethod string     `json:"extraction_method"`
}

// Key is the deduplication key of the entity.
func (e ExtractedEntity) Key() string {
	return string(e.Type) + "\x00" + strings.ToLower(e.NormalizedValue)
}

// RejectedEntity is a scored entity handed over to keyword extraction.
type RejectedEntity struct {
	Value      string     `json:"value"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"`
}

type ScoredEntities struct {
	Accepted            []ExtractedEntity `json:"accepted"`
	RejectedForKeywords []RejectedEntity  `json:"rejected_for_keywords"`
}

// NERSpan is a raw span reported by a named entity recognizer.
type NERSpan struct {
	Label      string  `json:"label"`
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// AddressComponent is one labeled piece of a parsed address line.
type AddressComponent struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
