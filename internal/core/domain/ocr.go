package domain

// Page routes recorded per page.
const (
	RouteNative       = "native"
	RouteNativeOSD    = "native_rotated_ocr"
	RouteRasterDirect = "raster_direct"
	RouteRendered     = "rendered_preprocessed"
	RoutePlainText    = "plain_text"
	RouteHTML         = "html"
	RouteEmpty        = "empty"
)

// OCRRecord is the quality record of text acquisition.
type OCRRecord struct {
	Text            string         `json:"-"`
	Confidence      float64        `json:"confidence"`
	IsScanned       bool           `json:"is_scanned"`
	RotationDegrees int            `json:"rotation_degrees"`
	Quality         QualityMetrics `json:"quality"`
	Pages           []PageRecord   `json:"pages,omitempty"`
}

type PageRecord struct {
	Number          int     `json:"number"`
	Route           string  `json:"route"`
	IsScanned       bool    `json:"is_scanned"`
	Classification  float64 `json:"classification_confidence"`
	Confidence      float64 `json:"confidence"`
	EffectiveDPI    float64 `json:"effective_dpi,omitempty"`
	RotationDegrees int     `json:"rotation_degrees,omitempty"`
	Characters      int     `json:"characters"`
}

// PageSignals are the structural introspection signals of one page.
type PageSignals struct {
	FontCount      int
	TextBlockCount int
	TextChars      int
	ImageCount     int
}

type PageClass struct {
	IsScanned  bool    `json:"is_scanned"`
	Confidence float64 `json:"confidence"`
}

// RasterImage is an embedded image object with its pixel dimensions.
type RasterImage struct {
	ObjectNumber int
	Width        int
	Height       int
}

// PageInfo is what a page inspector reports about one PDF page.
type PageInfo struct {
	Number         int
	FontCount      int
	TextBlockCount int
	Text           string
	Images         []RasterImage
	WidthPt        float64
	HeightPt       float64
}

func (p PageInfo) Signals() PageSignals {
	return PageSignals{
		FontCount:      p.FontCount,
		TextBlockCount: p.TextBlockCount,
		TextChars:      len([]rune(p.Text)),
		ImageCount:     len(p.Images),
	}
}

type Orientation struct {
	RotateDegrees int     `json:"rotate_degrees"`
	Confidence    float64 `json:"confidence"`
}

// OCRText is recognized text with the engine's mean word confidence in [0,1].
type OCRText struct {
	Text       string
	Confidence float64
}

// Quality assessment methods.
const (
	QualityDictionary = "dictionary"
	QualityHeuristic  = "vowel_heuristic"
	QualityCharRatio  = "char_ratio"
	QualityEmpty      = "empty"
)

type QualityMetrics struct {
	Method        string  `json:"method"`
	CharRatio     float64 `json:"char_ratio"`
	SampledWords  int     `json:"sampled_words"`
	Misspelled    int     `json:"misspelled"`
	ErrorRate     float64 `json:"error_rate"`
	SpellingScore float64 `json:"spelling_score"`
	Score         float64 `json:"score"`
}
