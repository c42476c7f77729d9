// Package pdf inspects PDF structure and rasterizes pages for OCR.
package pdf

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// Inspector reads page resources with pdfcpu and page text with ledongthuc/pdf.
type Inspector struct {
	logger *slog.Logger
}

func NewInspector(logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{logger: logger}
}

func (i *Inspector) Inspect(ctx context.Context, data []byte) ([]domain.PageInfo, error) {
	pctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	dims, err := pctx.PageDims()
	if err != nil {
		i.logger.Warn("pdf page dimensions unavailable", "error", err)
	}

	texts := i.pageTexts(data, pctx.PageCount)

	pages := make([]domain.PageInfo, 0, pctx.PageCount)
	for n := 1; n <= pctx.PageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info := domain.PageInfo{Number: n}
		if n-1 < len(dims) {
			info.WidthPt = dims[n-1].Width
			info.HeightPt = dims[n-1].Height
		}
		if pctx.Optimize != nil && n-1 < len(pctx.Optimize.PageFonts) {
			info.FontCount = len(pctx.Optimize.PageFonts[n-1])
		}
		if t, ok := texts[n]; ok {
			info.Text = t.text
			info.TextBlockCount = t.blocks
		}

		images, err := pdfcpu.ExtractPageImages(pctx, n, true)
		if err != nil {
			i.logger.Warn("pdf page images unavailable", "page", n, "error", err)
		}
		for objNr, img := range images {
			if img.IsImgMask || img.Thumb {
				continue
			}
			info.Images = append(info.Images, domain.RasterImage{ObjectNumber: objNr, Width: img.Width, Height: img.Height})
		}
		sortImages(info.Images)
		pages = append(pages, info)
	}
	return pages, nil
}

type pageText struct {
	text   string
	blocks int
}

// pageTexts extracts row-ordered text per page. ledongthuc/pdf panics on some
// malformed content streams, so each page is guarded.
func (i *Inspector) pageTexts(data []byte, pageCount int) map[int]pageText {
	out := map[int]pageText{}
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		i.logger.Warn("pdf text reader unavailable", "error", err)
		return out
	}
	for n := 1; n <= pageCount && n <= r.NumPage(); n++ {
		t, err := readPageText(r, n)
		if err != nil {
			i.logger.Warn("pdf page text unavailable", "page", n, "error", err)
			continue
		}
		out[n] = t
	}
	return out
}

func readPageText(r *lpdf.Reader, n int) (pt pageText, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read page %d: %v", n, rec)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return pageText{}, nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return pageText{}, err
	}

	var lines []string
	for _, row := range rows {
		var sb strings.Builder
		for _, word := range row.Content {
			sb.WriteString(word.S)
		}
		line := strings.TrimSpace(sb.String())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return pageText{text: strings.Join(lines, "\n"), blocks: len(lines)}, nil
}

func readContext(data []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read pdf", err)
	}
	return pctx, nil
}

func sortImages(images []domain.RasterImage) {
	slices.SortFunc(images, func(a, b domain.RasterImage) int {
		return cmp.Compare(a.ObjectNumber, b.ObjectNumber)
	})
}
