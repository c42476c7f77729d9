package acquisition

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

var (
	errNoInspector = errors.New("no page inspector configured")
	errNoOCR       = errors.New("no ocr engine configured")
)

type pageResult struct {
	text   string
	record domain.PageRecord
}

func (a *Acquirer) acquirePDF(ctx context.Context, data []byte, language string) domain.OCRRecord {
	if a.deps.Inspector == nil {
		a.logger.Warn("pdf received without page inspector")
		a.fallback("page_inspector")
		return emptyRecord()
	}
	pages, err := a.deps.Inspector.Inspect(ctx, data)
	if err != nil {
		a.logger.Warn("pdf inspection failed", "error", err)
		return emptyRecord()
	}

	results := make([]pageResult, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return emptyRecord()
		}
		cls := Classify(page.Signals())
		var res pageResult
		if cls.IsScanned {
			res = a.scannedPage(ctx, data, page, language)
		} else {
			res = a.nativePage(ctx, data, page, language)
		}
		res.record.Number = page.Number
		res.record.IsScanned = cls.IsScanned
		res.record.Classification = cls.Confidence
		res.record.Characters = utf8.RuneCountInString(res.text)
		a.observePage(res.record.Route)
		results = append(results, res)
	}
	return a.combine(ctx, results, language)
}

func (a *Acquirer) nativePage(ctx context.Context, data []byte, page domain.PageInfo, language string) pageResult {
	text := strings.TrimSpace(page.Text)
	if utf8.RuneCountInString(text) > a.cfg.OSDMinChars {
		if res, ok := a.rotatedPage(ctx, data, page, language); ok {
			return res
		}
	}
	score, _ := a.deps.Quality.Assess(ctx, text, language)
	return pageResult{
		text:   text,
		record: domain.PageRecord{Route: domain.RouteNative, Confidence: score},
	}
}

// rotatedPage re-OCRs a native page when orientation detection is confident it is rotated.
func (a *Acquirer) rotatedPage(ctx context.Context, data []byte, page domain.PageInfo, language string) (pageResult, bool) {
	if a.deps.OCR == nil || a.deps.Renderer == nil || a.deps.Images == nil {
		return pageResult{}, false
	}
	img, err := a.deps.Renderer.RenderPage(ctx, data, page.Number, a.cfg.TargetDPI)
	if err != nil {
		a.logger.Debug("render for orientation detection failed", "page", page.Number, "error", err)
		return pageResult{}, false
	}
	orientation, err := a.deps.OCR.DetectOrientation(ctx, img)
	if err != nil {
		a.logger.Debug("orientation detection failed", "page", page.Number, "error", err)
		a.fallback("osd")
		return pageResult{}, false
	}
	degrees := normalizeDegrees(orientation.RotateDegrees)
	if degrees == 0 || orientation.Confidence < a.cfg.OSDMinConfidence {
		return pageResult{}, false
	}
	rotated, err := a.deps.Images.Rotate(img, degrees)
	if err != nil {
		a.logger.Warn("rotate page image failed", "page", page.Number, "degrees", degrees, "error", err)
		return pageResult{}, false
	}
	res, ok := a.ocrImage(ctx, rotated, language, domain.RouteNativeOSD)
	if !ok || res.text == "" {
		return pageResult{}, false
	}
	a.logger.Info("page orientation corrected",
		"page", page.Number,
		"degrees", degrees,
		"osd_confidence", orientation.Confidence,
	)
	res.record.RotationDegrees = degrees
	return res, true
}

func (a *Acquirer) scannedPage(ctx context.Context, data []byte, page domain.PageInfo, language string) pageResult {
	if img, ok := dominantImage(page.Images, a.cfg.DominantImageShare); ok {
		dpi, fellBack := EffectiveDPI(img, page.WidthPt, page.HeightPt)
		if fellBack {
			a.logger.Debug("page size metadata unusable, assuming standard size",
				"page", page.Number,
				"width_pt", page.WidthPt,
				"height_pt", page.HeightPt,
			)
		}
		if dpi >= a.cfg.RasterDPIThreshold && a.deps.Renderer != nil {
			raster, err := a.deps.Renderer.ExtractImage(ctx, data, page.Number)
			if err == nil {
				if res, ok := a.ocrImage(ctx, raster, language, domain.RouteRasterDirect); ok {
					res.record.EffectiveDPI = dpi
					return res
				}
			} else {
				a.logger.Warn("raster extraction failed, rendering page", "page", page.Number, "error", err)
			}
		}
	}

	if a.deps.Renderer == nil {
		a.fallback("renderer")
		return pageResult{record: domain.PageRecord{Route: domain.RouteEmpty}}
	}
	img, err := a.deps.Renderer.RenderPage(ctx, data, page.Number, a.cfg.TargetDPI)
	if err != nil {
		a.logger.Warn("render page failed", "page", page.Number, "error", err)
		return pageResult{record: domain.PageRecord{Route: domain.RouteEmpty}}
	}
	res, ok := a.ocrImage(ctx, a.preprocess(img), language, domain.RouteRendered)
	if !ok {
		return pageResult{record: domain.PageRecord{Route: domain.RouteEmpty}}
	}
	res.record.EffectiveDPI = float64(a.cfg.TargetDPI)
	return res
}

func (a *Acquirer) preprocess(img []byte) []byte {
	if a.deps.Images == nil {
		return img
	}
	out, err := a.deps.Images.Preprocess(img)
	if err != nil {
		a.logger.Warn("image preprocessing failed, using raw render", "error", err)
		return img
	}
	return out
}

func (a *Acquirer) ocrImage(ctx context.Context, img []byte, language, route string) (pageResult, bool) {
	if a.deps.OCR == nil {
		a.logger.Warn("ocr requested without engine", "error", errNoOCR)
		a.fallback("ocr")
		return pageResult{}, false
	}
	out, err := a.deps.OCR.Recognize(ctx, img, language)
	if err != nil {
		a.logger.Warn("ocr failed", "route", route, "error", err)
		return pageResult{}, false
	}
	text := strings.TrimSpace(out.Text)
	quality, _ := a.deps.Quality.Assess(ctx, text, language)
	conf := quality
	if out.Confidence > 0 {
		conf = a.cfg.OCRWeight*out.Confidence + (1-a.cfg.OCRWeight)*quality
	}
	return pageResult{
		text:   text,
		record: domain.PageRecord{Route: route, Confidence: conf},
	}, true
}

// combine joins page texts with form feeds and weights page confidences by length.
func (a *Acquirer) combine(ctx context.Context, results []pageResult, language string) domain.OCRRecord {
	var (
		texts    []string
		weighted float64
		chars    int
		scanned  int
		rotation int
		records  = make([]domain.PageRecord, 0, len(results))
	)
	for _, r := range results {
		records = append(records, r.record)
		if r.record.IsScanned {
			scanned++
		}
		if rotation == 0 && r.record.RotationDegrees != 0 {
			rotation = r.record.RotationDegrees
		}
		if r.text == "" {
			continue
		}
		texts = append(texts, r.text)
		weighted += r.record.Confidence * float64(r.record.Characters)
		chars += r.record.Characters
	}

	rec := domain.OCRRecord{
		IsScanned:       len(results) > 0 && scanned*2 > len(results),
		RotationDegrees: rotation,
		Pages:           records,
	}
	if chars == 0 {
		rec.Quality = domain.QualityMetrics{Method: domain.QualityEmpty}
		return rec
	}
	rec.Text = strings.Join(texts, "\n\f\n")
	rec.Confidence = weighted / float64(chars)
	_, rec.Quality = a.deps.Quality.Assess(ctx, rec.Text, language)
	return rec
}

func normalizeDegrees(d int) int {
	d %= 360
	if d < 0 {
		d += 360
	}
	return d
}
