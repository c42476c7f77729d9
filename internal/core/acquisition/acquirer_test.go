package acquisition

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type inspectorFake struct {
	pages []domain.PageInfo
	err   error
}

func (f *inspectorFake) Inspect(context.Context, []byte) ([]domain.PageInfo, error) {
	return f.pages, f.err
}

type rendererFake struct {
	renderCalls  []int
	extractCalls []int
}

func (f *rendererFake) RenderPage(_ context.Context, _ []byte, page, dpi int) ([]byte, error) {
	f.renderCalls = append(f.renderCalls, dpi)
	return []byte("rendered"), nil
}

func (f *rendererFake) ExtractImage(_ context.Context, _ []byte, page int) ([]byte, error) {
	f.extractCalls = append(f.extractCalls, page)
	return []byte("raster"), nil
}

type ocrFake struct {
	text        string
	confidence  float64
	orientation domain.Orientation
	seen        []string
}

func (f *ocrFake) Recognize(_ context.Context, image []byte, _ string) (domain.OCRText, error) {
	f.seen = append(f.seen, string(image))
	return domain.OCRText{Text: f.text, Confidence: f.confidence}, nil
}

func (f *ocrFake) DetectOrientation(context.Context, []byte) (domain.Orientation, error) {
	return f.orientation, nil
}

type imagesFake struct {
	width, height int
	preprocessed  int
	rotated       []int
	scales        []float64
}

func (f *imagesFake) Dimensions([]byte) (int, int, error) {
	if f.width == 0 {
		return 0, 0, errors.New("unknown format")
	}
	return f.width, f.height, nil
}

func (f *imagesFake) Preprocess(img []byte) ([]byte, error) {
	f.preprocessed++
	return append([]byte("clean:"), img...), nil
}

func (f *imagesFake) Rotate(img []byte, degrees int) ([]byte, error) {
	f.rotated = append(f.rotated, degrees)
	return append([]byte("rotated:"), img...), nil
}

func (f *imagesFake) Resample(img []byte, scale float64) ([]byte, error) {
	f.scales = append(f.scales, scale)
	return append([]byte("resampled:"), img...), nil
}

const invoiceText = "Rechnung für Beratungsleistungen im Oktober, zahlbar innerhalb von vierzehn Tagen."

func TestAcquireHighResolutionScanSkipsPreprocessing(t *testing.T) {
	renderer := &rendererFake{}
	images := &imagesFake{}
	ocr := &ocrFake{text: invoiceText, confidence: 0.9}
	a := NewAcquirer(Config{}, Deps{
		Inspector: &inspectorFake{pages: []domain.PageInfo{{
			Number:   1,
			Images:   []domain.RasterImage{{ObjectNumber: 7, Width: 2067, Height: 2923}},
			WidthPt:  595,
			HeightPt: 842,
		}}},
		Renderer: renderer,
		OCR:      ocr,
		Images:   images,
	}, nil)

	rec := a.Acquire(context.Background(), []byte("%PDF-1.7"), "application/pdf", "de")

	if images.preprocessed != 0 {
		t.Fatalf("high resolution raster must not be preprocessed")
	}
	if len(renderer.extractCalls) != 1 || len(renderer.renderCalls) != 0 {
		t.Fatalf("expected direct raster extraction, got extract=%v render=%v", renderer.extractCalls, renderer.renderCalls)
	}
	if len(ocr.seen) != 1 || ocr.seen[0] != "raster" {
		t.Fatalf("OCR should run on the raw raster, saw %v", ocr.seen)
	}
	if !rec.IsScanned || rec.Text != invoiceText {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Pages[0].Route != domain.RouteRasterDirect || rec.Pages[0].EffectiveDPI < 249 {
		t.Fatalf("unexpected page record %+v", rec.Pages[0])
	}
	if rec.Confidence <= 0 || rec.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", rec.Confidence)
	}
}

func TestAcquireLowResolutionScanRendersAndPreprocesses(t *testing.T) {
	renderer := &rendererFake{}
	images := &imagesFake{}
	ocr := &ocrFake{text: invoiceText}
	a := NewAcquirer(Config{TargetDPI: 300}, Deps{
		Inspector: &inspectorFake{pages: []domain.PageInfo{{
			Number:   1,
			Images:   []domain.RasterImage{{Width: 1000, Height: 1414}},
			WidthPt:  595,
			HeightPt: 842,
		}}},
		Renderer: renderer,
		OCR:      ocr,
		Images:   images,
	}, nil)

	rec := a.Acquire(context.Background(), []byte("%PDF-1.4"), "application/pdf", "de")

	if images.preprocessed != 1 {
		t.Fatalf("expected preprocessing once, got %d", images.preprocessed)
	}
	if len(renderer.renderCalls) != 1 || renderer.renderCalls[0] != 300 {
		t.Fatalf("expected one render at 300 dpi, got %v", renderer.renderCalls)
	}
	if ocr.seen[0] != "clean:rendered" {
		t.Fatalf("OCR should see the preprocessed render, saw %q", ocr.seen[0])
	}
	if rec.Pages[0].Route != domain.RouteRendered {
		t.Fatalf("route = %s", rec.Pages[0].Route)
	}
}

func TestAcquireNativePageKeepsEmbeddedText(t *testing.T) {
	ocr := &ocrFake{orientation: domain.Orientation{RotateDegrees: 0, Confidence: 9}}
	images := &imagesFake{}
	a := NewAcquirer(Config{}, Deps{
		Inspector: &inspectorFake{pages: []domain.PageInfo{{
			Number:         1,
			FontCount:      2,
			TextBlockCount: 5,
			Text:           invoiceText,
		}}},
		Renderer: &rendererFake{},
		OCR:      ocr,
		Images:   images,
	}, nil)

	rec := a.Acquire(context.Background(), []byte("%PDF"), "application/pdf; charset=binary", "de")

	if rec.IsScanned {
		t.Fatalf("native page reported as scanned")
	}
	if rec.Text != invoiceText {
		t.Fatalf("text = %q", rec.Text)
	}
	if len(ocr.seen) != 0 || len(images.rotated) != 0 {
		t.Fatalf("upright page must not be re-OCRed")
	}
	if rec.Pages[0].Route != domain.RouteNative || rec.Pages[0].Classification != 1.0 {
		t.Fatalf("unexpected page record %+v", rec.Pages[0])
	}
}

func TestAcquireRotatedNativePageIsReOCRed(t *testing.T) {
	ocr := &ocrFake{
		text:        "Upright text recovered from the rotated page image with tesseract.",
		confidence:  0.8,
		orientation: domain.Orientation{RotateDegrees: 90, Confidence: 6.5},
	}
	images := &imagesFake{}
	a := NewAcquirer(Config{}, Deps{
		Inspector: &inspectorFake{pages: []domain.PageInfo{{
			Number:         1,
			FontCount:      1,
			TextBlockCount: 6,
			Text:           strings.Repeat("sdrawkcab ", 10),
		}}},
		Renderer: &rendererFake{},
		OCR:      ocr,
		Images:   images,
	}, nil)

	rec := a.Acquire(context.Background(), []byte("%PDF"), "application/pdf", "en")

	if len(images.rotated) != 1 || images.rotated[0] != 90 {
		t.Fatalf("expected one rotation by 90, got %v", images.rotated)
	}
	if rec.RotationDegrees != 90 || rec.Pages[0].Route != domain.RouteNativeOSD {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Text != ocr.text {
		t.Fatalf("text = %q", rec.Text)
	}
}

func TestAcquireLowResolutionImageIsResampled(t *testing.T) {
	images := &imagesFake{width: 620, height: 877}
	ocr := &ocrFake{text: invoiceText, confidence: 0.5}
	a := NewAcquirer(Config{TargetDPI: 300}, Deps{OCR: ocr, Images: images}, nil)

	rec := a.Acquire(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png", "de")

	if len(images.scales) != 1 || images.scales[0] < 3.9 || images.scales[0] > 4.1 {
		t.Fatalf("expected ~4x resample, got %v", images.scales)
	}
	if images.preprocessed != 1 {
		t.Fatalf("expected preprocessing")
	}
	if !rec.IsScanned || rec.Pages[0].Route != domain.RouteRendered {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestAcquireDegradesOnBadInput(t *testing.T) {
	a := NewAcquirer(Config{}, Deps{
		Inspector: &inspectorFake{err: errors.New("not a pdf")},
	}, nil)

	cases := []struct {
		name string
		data []byte
		mime string
	}{
		{"empty", nil, "application/pdf"},
		{"corrupt pdf", []byte("garbage"), "application/pdf"},
		{"unsupported", []byte("PK\x03\x04"), "application/zip"},
		{"binary plain text", []byte{0xff, 0xfe, 0xfd}, "text/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.Acquire(context.Background(), tc.data, tc.mime, "en")
			if rec.Text != "" || rec.Confidence != 0 {
				t.Fatalf("expected empty record, got %+v", rec)
			}
		})
	}
}

func TestAcquirePlainText(t *testing.T) {
	a := NewAcquirer(Config{}, Deps{}, nil)
	rec := a.Acquire(context.Background(), []byte("  Hello world from a plain text mail body  "), "", "en")
	if rec.Text != "Hello world from a plain text mail body" {
		t.Fatalf("text = %q", rec.Text)
	}
	if rec.IsScanned || rec.Confidence <= 0.9 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestClassifyPagesRequiresInspector(t *testing.T) {
	a := NewAcquirer(Config{}, Deps{}, nil)
	if _, err := a.ClassifyPages(context.Background(), []byte("%PDF")); !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}

	a = NewAcquirer(Config{}, Deps{Inspector: &inspectorFake{pages: []domain.PageInfo{
		{Number: 1, FontCount: 3, TextBlockCount: 5},
		{Number: 2, Images: []domain.RasterImage{{Width: 10, Height: 10}}},
	}}}, nil)
	classes, err := a.ClassifyPages(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("ClassifyPages() error = %v", err)
	}
	if len(classes) != 2 || classes[0].IsScanned || !classes[1].IsScanned {
		t.Fatalf("unexpected classes %+v", classes)
	}
}
