package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/cmdrunner"
)

type RendererConfig struct {
	PdftoppmBinary  string
	PdfimagesBinary string
	TempDir         string
}

// Renderer rasterizes pages with poppler and pulls embedded images with pdfcpu,
// falling back to pdfimages when pdfcpu cannot decode the image stream.
type Renderer struct {
	cfg    RendererConfig
	runner cmdrunner.Runner
	logger *slog.Logger
}

func NewRenderer(cfg RendererConfig, runner cmdrunner.Runner, logger *slog.Logger) *Renderer {
	if cfg.PdftoppmBinary == "" {
		cfg.PdftoppmBinary = "pdftoppm"
	}
	if cfg.PdfimagesBinary == "" {
		cfg.PdfimagesBinary = "pdfimages"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, runner: runner, logger: logger}
}

func (r *Renderer) RenderPage(ctx context.Context, data []byte, page, dpi int) ([]byte, error) {
	if page < 1 || dpi <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "render page", fmt.Errorf("page=%d dpi=%d", page, dpi))
	}
	dir, input, err := r.stage(data)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	p := strconv.Itoa(page)
	_, _, err = r.runner.Run(ctx, nil, r.cfg.PdftoppmBinary,
		"-f", p, "-l", p, "-r", strconv.Itoa(dpi), "-png", "-singlefile", input, prefix)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "pdftoppm", err)
	}
	out, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "read rendered page", err)
	}
	return out, nil
}

// ExtractImage returns the largest embedded raster image of a page.
func (r *Renderer) ExtractImage(ctx context.Context, data []byte, page int) ([]byte, error) {
	img, err := r.extractWithPdfcpu(data, page)
	if err == nil {
		return img, nil
	}
	r.logger.Warn("pdfcpu image extraction failed, trying pdfimages", "page", page, "error", err)
	return r.extractWithPdfimages(ctx, data, page)
}

func (r *Renderer) extractWithPdfcpu(data []byte, page int) ([]byte, error) {
	pctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	images, err := pdfcpu.ExtractPageImages(pctx, page, false)
	if err != nil {
		return nil, err
	}

	var (
		best     io.Reader
		bestArea int
	)
	for _, img := range images {
		if img.IsImgMask || img.Thumb || img.Reader == nil {
			continue
		}
		if area := img.Width * img.Height; area > bestArea {
			best, bestArea = img.Reader, area
		}
	}
	if best == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "extract image", fmt.Errorf("page %d has no raster image", page))
	}
	return io.ReadAll(best)
}

func (r *Renderer) extractWithPdfimages(ctx context.Context, data []byte, page int) ([]byte, error) {
	dir, input, err := r.stage(data)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	p := strconv.Itoa(page)
	_, _, err = r.runner.Run(ctx, nil, r.cfg.PdfimagesBinary,
		"-f", p, "-l", p, "-png", input, filepath.Join(dir, "img"))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "pdfimages", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "img-*.png"))
	var (
		best     []byte
		bestSize int64
	)
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil || st.Size() <= bestSize {
			continue
		}
		b, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		best, bestSize = b, st.Size()
	}
	if best == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "pdfimages", fmt.Errorf("page %d has no raster image", page))
	}
	return best, nil
}

func (r *Renderer) stage(data []byte) (string, string, error) {
	dir, err := os.MkdirTemp(r.cfg.TempDir, "docintel-pdf-")
	if err != nil {
		return "", "", fmt.Errorf("create temp dir: %w", err)
	}
	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("stage pdf: %w", err)
	}
	return dir, input, nil
}

