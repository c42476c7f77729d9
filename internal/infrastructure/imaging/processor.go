// Package imaging prepares page images for OCR.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"slices"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type Config struct {
	// ThresholdWindow is the side of the square neighbourhood used by the
	// adaptive threshold. Even values are rounded up.
	ThresholdWindow int
	// ThresholdOffset is subtracted from the local mean before comparing.
	ThresholdOffset int
	Denoise         bool
}

func DefaultConfig() Config {
	return Config{ThresholdWindow: 31, ThresholdOffset: 10, Denoise: true}
}

// Processor decodes PNG, JPEG, TIFF, BMP and WebP input and always emits PNG.
type Processor struct {
	cfg Config
}

func New(cfg Config) *Processor {
	if cfg.ThresholdWindow <= 1 {
		cfg.ThresholdWindow = DefaultConfig().ThresholdWindow
	}
	if cfg.ThresholdWindow%2 == 0 {
		cfg.ThresholdWindow++
	}
	return &Processor{cfg: cfg}
}

func (p *Processor) Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, domain.WrapError(domain.ErrUnsupportedMedia, "decode image config", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Preprocess converts to grayscale, removes salt-and-pepper noise and binarizes
// with a mean-based adaptive threshold.
func (p *Processor) Preprocess(data []byte) ([]byte, error) {
	src, err := decode(data)
	if err != nil {
		return nil, err
	}
	gray := toGray(src)
	if p.cfg.Denoise {
		gray = median3(gray)
	}
	return encode(adaptiveThreshold(gray, p.cfg.ThresholdWindow, p.cfg.ThresholdOffset))
}

// Rotate turns the image clockwise. Right angles are exact; other angles are
// resampled bilinearly onto a white canvas that fits the rotated bounds.
func (p *Processor) Rotate(data []byte, degrees int) ([]byte, error) {
	src, err := decode(data)
	if err != nil {
		return nil, err
	}
	degrees %= 360
	if degrees < 0 {
		degrees += 360
	}
	switch degrees {
	case 0:
		return encode(src)
	case 90, 180, 270:
		return encode(rotateRight(src, degrees))
	default:
		return encode(rotateArbitrary(src, float64(degrees)))
	}
}

func (p *Processor) Resample(data []byte, scale float64) ([]byte, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resample", fmt.Errorf("scale %v", scale))
	}
	src, err := decode(data)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return encode(dst)
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedMedia, "decode image", err)
	}
	return img, nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func median3(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	var window [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px := min(max(x+dx, b.Min.X), b.Max.X-1)
					py := min(max(y+dy, b.Min.Y), b.Max.Y-1)
					window[n] = src.GrayAt(px, py).Y
					n++
				}
			}
			s := window[:]
			slices.Sort(s)
			dst.SetGray(x, y, color.Gray{Y: s[4]})
		}
	}
	return dst
}

// adaptiveThreshold marks a pixel black when it is darker than the mean of its
// window minus offset. Window sums come from a summed-area table.
func adaptiveThreshold(src *image.Gray, window, offset int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + row
		}
	}

	half := window / 2
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h, y+half+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w, x+half+1)
			sum := integral[y1*(w+1)+x1] - integral[y0*(w+1)+x1] - integral[y1*(w+1)+x0] + integral[y0*(w+1)+x0]
			area := int64((x1 - x0) * (y1 - y0))
			v := int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			if v*area < sum-int64(offset)*area {
				dst.SetGray(x, y, color.Gray{Y: 0})
			} else {
				dst.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return dst
}

func rotateRight(src image.Image, degrees int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(b.Min.X+x, b.Min.Y+y)
			switch degrees {
			case 90:
				dst.Set(h-1-y, x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}

func rotateArbitrary(src image.Image, degrees float64) *image.RGBA {
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	nw := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin)))
	nh := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	// Maps source coordinates into the destination: translate the source
	// centre to the origin, rotate clockwise, then move to the new centre.
	cx, cy := w/2+float64(b.Min.X), h/2+float64(b.Min.Y)
	ncx, ncy := float64(nw)/2, float64(nh)/2
	m := f64.Aff3{
		cos, -sin, ncx - cos*cx + sin*cy,
		sin, cos, ncy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(dst, m, src, b, draw.Over, nil)
	return dst
}
