// Package xlsx renders analysis results as a spreadsheet for manual review.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

const (
	sheetEntities = "Entities"
	sheetKeywords = "Keywords"
	sheetOCR      = "OCR"
)

// Workbook returns XLSX bytes with one sheet each for entities, keywords and
// the acquisition record.
func Workbook(result domain.AnalysisResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetEntities); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetKeywords, sheetOCR} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	entityRows := make([][]any, 0, len(result.Entities))
	for _, e := range result.Entities {
		entityRows = append(entityRows, []any{string(e.Type), e.Value, e.NormalizedValue, e.Confidence, e.ExtractionMethod})
	}
	if err := writeTable(f, sheetEntities, []string{"Type", "Value", "Normalized", "Confidence", "Method"}, entityRows); err != nil {
		return nil, err
	}

	keywordRows := make([][]any, 0, len(result.Keywords))
	for _, k := range result.Keywords {
		keywordRows = append(keywordRows, []any{k.Term, k.Frequency, k.RelevanceScore, k.MustKeep, k.FromEntity})
	}
	if err := writeTable(f, sheetKeywords, []string{"Term", "Frequency", "Relevance", "Must keep", "From entity"}, keywordRows); err != nil {
		return nil, err
	}

	ocr := result.OCR
	ocrRows := [][]any{
		{"document", "", ocr.IsScanned, ocr.Confidence, ocr.RotationDegrees, ocr.Quality.Method, ocr.Quality.Score, len([]rune(ocr.Text))},
	}
	for _, p := range ocr.Pages {
		ocrRows = append(ocrRows, []any{p.Number, p.Route, p.IsScanned, p.Confidence, p.RotationDegrees, "", p.EffectiveDPI, p.Characters})
	}
	if err := writeTable(f, sheetOCR, []string{"Page", "Route", "Scanned", "Confidence", "Rotation", "Quality method", "Quality / DPI", "Characters"}, ocrRows); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(sheetEntities, "A", "A", 16)
	_ = f.SetColWidth(sheetEntities, "B", "C", 40)
	_ = f.SetColWidth(sheetKeywords, "A", "A", 28)
	_ = f.SetColWidth(sheetOCR, "B", "B", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return nil
}
