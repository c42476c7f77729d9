package ports

import (
	"context"
	"io"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// JobQueue publishes/consumes analysis jobs and their results.
type JobQueue interface {
	PublishJob(ctx context.Context, job domain.DocumentJob) error
	SubscribeJobs(ctx context.Context, handler func(context.Context, domain.DocumentJob) error) error
	PublishResult(ctx context.Context, result domain.JobResult) error
}

// NERDetector finds PERSON/ORGANIZATION/LOCATION-like spans.
type NERDetector interface {
	Detect(ctx context.Context, text, language string) ([]domain.NERSpan, error)
}

// SpellChecker returns the subset of words it does not recognize.
type SpellChecker interface {
	Misspelled(ctx context.Context, words []string, language string) (map[string]struct{}, error)
}

// AddressParser splits one address line into labeled components.
type AddressParser interface {
	Parse(ctx context.Context, line string) ([]domain.AddressComponent, error)
}

// OCREngine recognizes text on page images.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte, language string) (domain.OCRText, error)
	DetectOrientation(ctx context.Context, image []byte) (domain.Orientation, error)
}

// PageInspector reports structural signals for every page of a PDF.
type PageInspector interface {
	Inspect(ctx context.Context, pdf []byte) ([]domain.PageInfo, error)
}

// PageRenderer rasterizes PDF pages or pulls their embedded images.
type PageRenderer interface {
	RenderPage(ctx context.Context, pdf []byte, page, dpi int) ([]byte, error)
	ExtractImage(ctx context.Context, pdf []byte, page int) ([]byte, error)
}

// ImageProcessor prepares page images for OCR.
type ImageProcessor interface {
	Dimensions(image []byte) (width, height int, err error)
	Preprocess(image []byte) ([]byte, error)
	Rotate(image []byte, degrees int) ([]byte, error)
	Resample(image []byte, scale float64) ([]byte, error)
}

// HTMLTextConverter reduces markup to plain text.
type HTMLTextConverter interface {
	ToText(html string) string
}

// ScoringModel is a per-language learned entity scorer.
type ScoringModel interface {
	Available(language string) bool
	Predict(ctx context.Context, language string, features []float32) (float64, error)
}

// DictionaryProvider supplies the per-language scoring configuration.
type DictionaryProvider interface {
	Load(ctx context.Context, language string) (*domain.ScoringConfig, error)
}

// ScoringOverrideStore is the external store behind the dictionary provider.
type ScoringOverrideStore interface {
	LoadOverrides(ctx context.Context, language string) (*domain.ScoringOverrides, error)
}

// CorpusStatsStore keeps global and per-user document-frequency counters.
type CorpusStatsStore interface {
	Lookup(ctx context.Context, scope domain.CorpusScope, words []string) (map[string]domain.CorpusStat, error)
	Totals(ctx context.Context, scope domain.CorpusScope) (int64, error)
	// RecordDocument atomically counts one document: total_documents and every
	// distinct word in words each grow by exactly one.
	RecordDocument(ctx context.Context, scope domain.CorpusScope, words []string) error
	ActiveUsers(ctx context.Context) (int64, error)
}

// PipelineObserver receives pipeline telemetry.
type PipelineObserver interface {
	ObservePage(route string)
	ObserveFallback(capability string)
	ObserveStage(stage string, duration time.Duration)
	ObserveEntities(accepted, converted, dropped int)
	ObserveKeywords(count int)
}
