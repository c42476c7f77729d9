package domain

type Keyword struct {
	Term           string  `json:"term"`
	Frequency      int     `json:"frequency"`
	RelevanceScore float64 `json:"relevance_score"`
	MustKeep       bool    `json:"must_keep,omitempty"`
	FromEntity     bool    `json:"from_entity,omitempty"`
}
