package acquisition

import (
	"math"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

const pointsPerInch = 72.0

type pageSize struct {
	name     string
	widthPt  float64
	heightPt float64
}

// Portrait sizes in points; the first closest match wins.
var standardPageSizes = []pageSize{
	{"A4", 595, 842},
	{"Letter", 612, 792},
	{"Legal", 612, 1008},
	{"A5", 420, 595},
	{"A3", 842, 1191},
	{"B5", 499, 709},
}

// maxAspectDrift is the tolerated relative difference between raster and page aspect ratios.
const maxAspectDrift = 0.15

const aspectTieTolerance = 0.005

// EffectiveDPI computes the raster resolution of img placed on a page of the given size.
// When the page size is missing, implausible, or disagrees with the raster's aspect ratio,
// the closest standard page size is used instead and fallback is true.
func EffectiveDPI(img domain.RasterImage, widthPt, heightPt float64) (dpi float64, fallback bool) {
	if img.Width <= 0 || img.Height <= 0 {
		return 0, false
	}
	if !plausiblePage(img, widthPt, heightPt) {
		size := closestStandardSize(img)
		widthPt, heightPt = size.widthPt, size.heightPt
		if img.Width > img.Height {
			widthPt, heightPt = heightPt, widthPt
		}
		fallback = true
	}
	dpiX := float64(img.Width) / (widthPt / pointsPerInch)
	dpiY := float64(img.Height) / (heightPt / pointsPerInch)
	return math.Min(dpiX, dpiY), fallback
}

func plausiblePage(img domain.RasterImage, widthPt, heightPt float64) bool {
	for _, v := range []float64{widthPt, heightPt} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < pointsPerInch || v > 200*pointsPerInch {
			return false
		}
	}
	pageAspect := aspect(widthPt, heightPt)
	rasterAspect := aspect(float64(img.Width), float64(img.Height))
	if (widthPt > heightPt) != (img.Width > img.Height) && math.Abs(widthPt-heightPt) > 1 {
		return false
	}
	return math.Abs(rasterAspect-pageAspect)/pageAspect <= maxAspectDrift
}

func closestStandardSize(img domain.RasterImage) pageSize {
	target := aspect(float64(img.Width), float64(img.Height))
	bestDiff := math.Inf(1)
	for _, s := range standardPageSizes {
		bestDiff = math.Min(bestDiff, math.Abs(aspect(s.widthPt, s.heightPt)-target))
	}
	// ISO A sizes share one aspect ratio, so near ties go to the earlier, more common size.
	for _, s := range standardPageSizes {
		if math.Abs(aspect(s.widthPt, s.heightPt)-target) <= bestDiff+aspectTieTolerance {
			return s
		}
	}
	return standardPageSizes[0]
}

// aspect is short side over long side, orientation independent.
func aspect(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return math.Min(a, b) / math.Max(a, b)
}

// dominantImage returns the page's single raster, or the one covering at least
// minShare of the total image area.
func dominantImage(images []domain.RasterImage, minShare float64) (domain.RasterImage, bool) {
	if len(images) == 0 {
		return domain.RasterImage{}, false
	}
	if len(images) == 1 {
		return images[0], true
	}
	var total float64
	best := images[0]
	for _, img := range images {
		area := float64(img.Width) * float64(img.Height)
		total += area
		if area > float64(best.Width)*float64(best.Height) {
			best = img
		}
	}
	if total <= 0 {
		return domain.RasterImage{}, false
	}
	if float64(best.Width)*float64(best.Height)/total >= minShare {
		return best, true
	}
	return domain.RasterImage{}, false
}
