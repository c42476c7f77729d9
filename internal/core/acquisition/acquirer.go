package acquisition

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

type Config struct {
	TargetDPI          int     // render resolution for low-resolution scans, default 300
	RasterDPIThreshold float64 // rasters at or above this are OCRed untouched, default 200
	DominantImageShare float64 // area share that makes one image dominant, default 0.8
	OSDMinChars        int     // native text length that triggers orientation detection, default 50
	OSDMinConfidence   float64 // orientation confidence required to re-OCR, default 2.0
	OCRWeight          float64 // engine confidence weight in OCR page confidence, default 0.7
}

func (c Config) normalize() Config {
	out := c
	if out.TargetDPI <= 0 {
		out.TargetDPI = 300
	}
	if out.RasterDPIThreshold <= 0 {
		out.RasterDPIThreshold = 200
	}
	if out.DominantImageShare <= 0 || out.DominantImageShare > 1 {
		out.DominantImageShare = 0.8
	}
	if out.OSDMinChars <= 0 {
		out.OSDMinChars = 50
	}
	if out.OSDMinConfidence <= 0 {
		out.OSDMinConfidence = 2.0
	}
	if out.OCRWeight <= 0 || out.OCRWeight > 1 {
		out.OCRWeight = 0.7
	}
	return out
}

// Deps are the optional capabilities the acquirer routes through. Nil members degrade
// the corresponding route to an empty page instead of failing.
type Deps struct {
	Inspector ports.PageInspector
	Renderer  ports.PageRenderer
	OCR       ports.OCREngine
	Images    ports.ImageProcessor
	HTML      ports.HTMLTextConverter
	Quality   *QualityAssessor
	Observer  ports.PipelineObserver
}

// Acquirer turns document bytes into text plus an OCR quality record.
type Acquirer struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
}

func NewAcquirer(cfg Config, deps Deps, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Quality == nil {
		deps.Quality = NewQualityAssessor(nil, deps.Observer, logger)
	}
	return &Acquirer{cfg: cfg.normalize(), deps: deps, logger: logger}
}

// Acquire never returns an error for bad input: unsupported or corrupt documents
// produce an empty record with zero confidence.
func (a *Acquirer) Acquire(ctx context.Context, data []byte, mimeType, language string) domain.OCRRecord {
	if len(data) == 0 {
		return emptyRecord()
	}
	mt := NormalizeMimeType(mimeType, data)
	switch {
	case mt == "application/pdf":
		return a.acquirePDF(ctx, data, language)
	case strings.HasPrefix(mt, "image/"):
		return a.acquireImage(ctx, data, language)
	case mt == "text/plain":
		if !utf8.Valid(data) {
			a.logger.Warn("plain text is not valid utf-8", "mime_type", mt)
			return emptyRecord()
		}
		return a.textRecord(ctx, strings.TrimSpace(string(data)), language, domain.RoutePlainText)
	case mt == "text/html":
		if a.deps.HTML == nil || !utf8.Valid(data) {
			return emptyRecord()
		}
		return a.textRecord(ctx, strings.TrimSpace(a.deps.HTML.ToText(string(data))), language, domain.RouteHTML)
	default:
		a.logger.Warn("unsupported mime type", "mime_type", mt)
		return emptyRecord()
	}
}

// ClassifyPages inspects a PDF and classifies each page.
func (a *Acquirer) ClassifyPages(ctx context.Context, data []byte) ([]domain.PageClass, error) {
	if a.deps.Inspector == nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "classify pages", errNoInspector)
	}
	pages, err := a.deps.Inspector.Inspect(ctx, data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "classify pages", err)
	}
	out := make([]domain.PageClass, 0, len(pages))
	for _, p := range pages {
		out = append(out, Classify(p.Signals()))
	}
	return out, nil
}

// NormalizeMimeType strips parameters and sniffs the content when the declared type is generic.
func NormalizeMimeType(declared string, data []byte) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if mt == "" || mt == "application/octet-stream" {
		sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
		mt = sniffed
	}
	if mt == "image/jpg" {
		mt = "image/jpeg"
	}
	return mt
}

func (a *Acquirer) textRecord(ctx context.Context, text, language, route string) domain.OCRRecord {
	if text == "" {
		return emptyRecord()
	}
	score, metrics := a.deps.Quality.Assess(ctx, text, language)
	a.observePage(route)
	return domain.OCRRecord{
		Text:       text,
		Confidence: score,
		Quality:    metrics,
		Pages: []domain.PageRecord{{
			Number:         1,
			Route:          route,
			Classification: 1.0,
			Confidence:     score,
			Characters:     utf8.RuneCountInString(text),
		}},
	}
}

func (a *Acquirer) observePage(route string) {
	if a.deps.Observer != nil {
		a.deps.Observer.ObservePage(route)
	}
}

func (a *Acquirer) fallback(capability string) {
	if a.deps.Observer != nil {
		a.deps.Observer.ObserveFallback(capability)
	}
}

func emptyRecord() domain.OCRRecord {
	return domain.OCRRecord{Quality: domain.QualityMetrics{Method: domain.QualityEmpty}}
}
