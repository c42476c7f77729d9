package domain

import "time"

// DocumentJob is the unit of work handed to the worker.
type DocumentJob struct {
	JobID        string    `json:"job_id"`
	DocumentID   string    `json:"document_id"`
	StorageKey   string    `json:"storage_key"`
	Filename     string    `json:"filename,omitempty"`
	MimeType     string    `json:"mime_type"`
	Language     string    `json:"language"`
	UserID       string    `json:"user_id,omitempty"`
	MustKeep     []string  `json:"must_keep,omitempty"`
	MinFrequency int       `json:"min_frequency,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// JobResult is published once a job has been analyzed.
type JobResult struct {
	JobID      string          `json:"job_id"`
	DocumentID string          `json:"document_id"`
	Result     *AnalysisResult `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// AnalyzeRequest carries everything one pipeline invocation needs.
type AnalyzeRequest struct {
	Data         []byte
	MimeType     string
	Language     string
	UserID       string
	MustKeep     []string
	MinFrequency int
}

// AnalysisResult is the output contract of the pipeline.
type AnalysisResult struct {
	Language string            `json:"language"`
	Entities []ExtractedEntity `json:"entities"`
	Keywords []Keyword         `json:"keywords"`
	OCR      OCRRecord         `json:"ocr"`
}
