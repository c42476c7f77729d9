package acquisition

import (
	"context"
	"unicode/utf8"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// acquireImage treats a standalone image as one scanned page of unknown physical size.
func (a *Acquirer) acquireImage(ctx context.Context, data []byte, language string) domain.OCRRecord {
	route := domain.RouteRasterDirect
	img := data
	var dpi float64

	if a.deps.Images != nil {
		w, h, err := a.deps.Images.Dimensions(data)
		if err != nil {
			a.logger.Warn("undecodable image", "error", err)
			return emptyRecord()
		}
		dpi, _ = EffectiveDPI(domain.RasterImage{Width: w, Height: h}, 0, 0)
		if dpi > 0 && dpi < a.cfg.RasterDPIThreshold {
			route = domain.RouteRendered
			scale := float64(a.cfg.TargetDPI) / dpi
			if resampled, err := a.deps.Images.Resample(data, scale); err == nil {
				img = resampled
				dpi = float64(a.cfg.TargetDPI)
			} else {
				a.logger.Warn("image resample failed", "scale", scale, "error", err)
			}
			img = a.preprocess(img)
		}
	}

	res, ok := a.ocrImage(ctx, img, language, route)
	if !ok || res.text == "" {
		return emptyRecord()
	}
	res.record.Number = 1
	res.record.IsScanned = true
	res.record.Classification = 1.0
	res.record.EffectiveDPI = dpi
	res.record.Characters = utf8.RuneCountInString(res.text)
	a.observePage(route)

	_, quality := a.deps.Quality.Assess(ctx, res.text, language)
	return domain.OCRRecord{
		Text:       res.text,
		Confidence: res.record.Confidence,
		IsScanned:  true,
		Quality:    quality,
		Pages:      []domain.PageRecord{res.record},
	}
}
