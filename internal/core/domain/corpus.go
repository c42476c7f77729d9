package domain

// CorpusScope selects the global corpus (empty UserID) or one user's corpus.
type CorpusScope struct {
	Language string
	UserID   string
}

func GlobalScope(language string) CorpusScope {
	return CorpusScope{Language: language}
}

func UserScope(language, userID string) CorpusScope {
	return CorpusScope{Language: language, UserID: userID}
}

func (s CorpusScope) IsGlobal() bool { return s.UserID == "" }

type CorpusStat struct {
	Word           string `json:"word"`
	Language       string `json:"language"`
	DocumentCount  int64  `json:"document_count"`
	TotalDocuments int64  `json:"total_documents"`
}

// DocumentRatio is the share of documents containing the word, at most 1.
func (s CorpusStat) DocumentRatio() float64 {
	if s.TotalDocuments <= 0 {
		return 0
	}
	return min(1, float64(s.DocumentCount)/float64(s.TotalDocuments))
}
