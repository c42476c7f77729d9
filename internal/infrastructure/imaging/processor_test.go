package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func whiteCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestDimensions(t *testing.T) {
	p := New(DefaultConfig())
	w, h, err := p.Dimensions(pngBytes(t, whiteCanvas(12, 7)))
	if err != nil || w != 12 || h != 7 {
		t.Fatalf("Dimensions() = %d, %d, %v", w, h, err)
	}

	if _, _, err := p.Dimensions([]byte("garbage")); !domain.IsKind(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected unsupported media, got %v", err)
	}
}

func TestPreprocessBinarizes(t *testing.T) {
	src := whiteCanvas(40, 40)
	for y := 18; y <= 22; y++ {
		for x := 18; x <= 22; x++ {
			src.Set(x, y, color.Black)
		}
	}
	// isolated speck is removed by the median filter
	src.Set(5, 5, color.Black)

	out, err := New(DefaultConfig()).Preprocess(pngBytes(t, src))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	img := decodePNG(t, out)
	gray := func(x, y int) uint8 { return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y }

	if gray(20, 20) != 0 {
		t.Fatalf("expected block to stay black, got %d", gray(20, 20))
	}
	if gray(5, 5) != 255 {
		t.Fatalf("expected speck removed, got %d", gray(5, 5))
	}
	if gray(35, 35) != 255 {
		t.Fatalf("expected background white, got %d", gray(35, 35))
	}
}

func TestRotateRightAngles(t *testing.T) {
	src := whiteCanvas(4, 2)
	red := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, red)

	cases := []struct {
		degrees    int
		w, h, x, y int
	}{
		{degrees: 90, w: 2, h: 4, x: 1, y: 0},
		{degrees: 180, w: 4, h: 2, x: 3, y: 1},
		{degrees: 270, w: 2, h: 4, x: 0, y: 3},
		{degrees: -90, w: 2, h: 4, x: 0, y: 3},
	}
	p := New(DefaultConfig())
	for _, tc := range cases {
		out, err := p.Rotate(pngBytes(t, src), tc.degrees)
		if err != nil {
			t.Fatalf("Rotate(%d) error = %v", tc.degrees, err)
		}
		img := decodePNG(t, out)
		if img.Bounds().Dx() != tc.w || img.Bounds().Dy() != tc.h {
			t.Fatalf("Rotate(%d) bounds = %v", tc.degrees, img.Bounds())
		}
		r, g, _, _ := img.At(tc.x, tc.y).RGBA()
		if r != 0xffff || g != 0 {
			t.Fatalf("Rotate(%d) expected red at (%d,%d)", tc.degrees, tc.x, tc.y)
		}
	}
}

func TestRotateArbitraryGrowsCanvas(t *testing.T) {
	out, err := New(DefaultConfig()).Rotate(pngBytes(t, whiteCanvas(100, 50)), 45)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	b := decodePNG(t, out).Bounds()
	if b.Dx() <= 100 || b.Dy() <= 50 {
		t.Fatalf("expected larger canvas, got %v", b)
	}
}

func TestResample(t *testing.T) {
	p := New(DefaultConfig())
	out, err := p.Resample(pngBytes(t, whiteCanvas(10, 6)), 2.5)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	b := decodePNG(t, out).Bounds()
	if b.Dx() != 25 || b.Dy() != 15 {
		t.Fatalf("unexpected bounds %v", b)
	}

	if _, err := p.Resample(pngBytes(t, whiteCanvas(2, 2)), 0); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
