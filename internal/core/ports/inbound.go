package ports

import (
	"context"
	"io"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract of the document intelligence pipeline.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error)
}

// DocumentSubmitter stores a document and enqueues it for asynchronous analysis.
type DocumentSubmitter interface {
	Submit(ctx context.Context, req SubmitRequest, body io.Reader) (*domain.DocumentJob, error)
}

type SubmitRequest struct {
	Filename     string
	MimeType     string
	Language     string
	UserID       string
	MustKeep     []string
	MinFrequency int
}
