// Package tesseract implements OCR and orientation detection with the tesseract CLI.
package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/cmdrunner"
)

type Config struct {
	Binary      string // default "tesseract"
	TessdataDir string
	PSM         int // page segmentation mode for recognition, default 3
}

type Engine struct {
	cfg    Config
	runner cmdrunner.Runner
}

func New(cfg Config, runner cmdrunner.Runner) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 3
	}
	return &Engine{cfg: cfg, runner: runner}
}

var languageCodes = map[string]string{
	"de": "deu",
	"en": "eng",
	"fr": "fra",
	"es": "spa",
	"it": "ita",
	"nl": "nld",
}

// LanguageCode maps an ISO 639-1 code to a tesseract traineddata name.
func LanguageCode(lang string) string {
	if code, ok := languageCodes[strings.ToLower(lang)]; ok {
		return code
	}
	return "eng"
}

// Recognize runs tesseract in TSV mode once and derives both the text and the
// mean word confidence from it.
func (e *Engine) Recognize(ctx context.Context, image []byte, lang string) (domain.OCRText, error) {
	args := []string{"stdin", "stdout", "-l", LanguageCode(lang), "--psm", strconv.Itoa(e.cfg.PSM)}
	args = e.withTessdata(args)
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, image, e.cfg.Binary, args...)
	if err != nil {
		return domain.OCRText{}, domain.WrapError(domain.ErrCapabilityUnavailable, "tesseract recognize",
			fmt.Errorf("%w: %s", err, cmdrunner.Truncate(strings.TrimSpace(string(errb)), 512)))
	}
	return ParseTSV(out)
}

// DetectOrientation runs orientation and script detection (--psm 0).
func (e *Engine) DetectOrientation(ctx context.Context, image []byte) (domain.Orientation, error) {
	args := e.withTessdata([]string{"stdin", "stdout", "--psm", "0"})
	out, errb, err := e.runner.Run(ctx, image, e.cfg.Binary, args...)
	if err != nil {
		return domain.Orientation{}, domain.WrapError(domain.ErrCapabilityUnavailable, "tesseract osd",
			fmt.Errorf("%w: %s", err, cmdrunner.Truncate(strings.TrimSpace(string(errb)), 512)))
	}
	return ParseOSD(out)
}

func (e *Engine) withTessdata(args []string) []string {
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

// ParseTSV rebuilds line-structured text from tesseract TSV output and computes
// the mean confidence of recognized words in 0..1. Rows with conf -1 are layout rows.
func ParseTSV(out []byte) (domain.OCRText, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)

	var (
		text      strings.Builder
		sum       float64
		words     int
		lastBlock = ""
		lastLine  = ""
		header    = true
	)
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}

		block := cols[1] + "/" + cols[2] + "/" + cols[3]
		line := block + "/" + cols[4]
		switch {
		case text.Len() == 0:
		case block != lastBlock:
			text.WriteString("\n\n")
		case line != lastLine:
			text.WriteByte('\n')
		default:
			text.WriteByte(' ')
		}
		text.WriteString(word)
		lastBlock, lastLine = block, line

		sum += conf
		words++
	}
	if err := sc.Err(); err != nil {
		return domain.OCRText{}, fmt.Errorf("read tesseract tsv: %w", err)
	}
	if words == 0 {
		return domain.OCRText{}, nil
	}
	return domain.OCRText{Text: text.String(), Confidence: sum / float64(words) / 100}, nil
}

var errNoRotation = errors.New("osd output without rotation")

// ParseOSD reads the "Rotate:" and "Orientation confidence:" lines of --psm 0 output.
func ParseOSD(out []byte) (domain.Orientation, error) {
	var (
		o         domain.Orientation
		hasRotate bool
	)
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Rotate":
			deg, err := strconv.Atoi(value)
			if err != nil {
				return domain.Orientation{}, fmt.Errorf("parse osd rotate %q: %w", value, err)
			}
			o.RotateDegrees = deg
			hasRotate = true
		case "Orientation confidence":
			conf, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return domain.Orientation{}, fmt.Errorf("parse osd confidence %q: %w", value, err)
			}
			o.Confidence = conf
		}
	}
	if !hasRotate {
		return domain.Orientation{}, errNoRotation
	}
	return o, nil
}
