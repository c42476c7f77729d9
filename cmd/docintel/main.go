// Command docintel analyzes documents in-process or submits them to the
// worker queue.
//
//	docintel analyze [-lang de] [-user id] [-mime type] [-must-keep a,b] [-min-frequency n] [-xlsx out.xlsx] [-explain] <file>
//	docintel submit [-lang de] [-user id] [-mime type] [-must-keep a,b] <file>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/bootstrap"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/config"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/report/xlsx"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/observability/logging"
)

const usage = "usage: docintel <analyze|submit> [flags] <file>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.NewCLILogger(cfg.LogLevel)
	if err := run(ctx, cfg, os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "docintel:", err)
		os.Exit(1)
	}
}

type documentFlags struct {
	language     string
	userID       string
	mimeType     string
	mustKeep     string
	minFrequency int
	xlsxPath     string
	explain      bool
}

func run(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, args := args[0], args[1:]

	var df documentFlags
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&df.language, "lang", "", "document language (ISO 639-1)")
	fs.StringVar(&df.userID, "user", "", "user id for personalized corpus statistics")
	fs.StringVar(&df.mimeType, "mime", "", "mime type, detected from the file name when empty")
	fs.StringVar(&df.mustKeep, "must-keep", "", "comma separated keywords that are never filtered")
	switch cmd {
	case "analyze":
		fs.IntVar(&df.minFrequency, "min-frequency", 0, "minimum keyword frequency")
		fs.StringVar(&df.xlsxPath, "xlsx", "", "also write an XLSX report to this path")
		fs.BoolVar(&df.explain, "explain", false, "print scoring explanations instead of the result")
	case "submit":
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New(usage)
	}
	path := fs.Arg(0)
	if df.mimeType == "" {
		df.mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Service:   "docintel-cli",
		WithQueue: cmd == "submit",
	}, logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	if cmd == "submit" {
		return submit(ctx, app, path, df, stdout)
	}
	return analyze(ctx, app, path, df, stdout)
}

func analyze(ctx context.Context, app *bootstrap.App, path string, df documentFlags, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if app.Config.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.Config.PipelineTimeout)
		defer cancel()
	}
	req := domain.AnalyzeRequest{
		Data:         data,
		MimeType:     df.mimeType,
		Language:     df.language,
		UserID:       df.userID,
		MustKeep:     splitList(df.mustKeep),
		MinFrequency: df.minFrequency,
	}

	if df.explain {
		explained, err := app.AnalyzeUC.Explain(ctx, req)
		if err != nil {
			return err
		}
		return writeJSON(stdout, explained)
	}

	result, err := app.AnalyzeUC.Analyze(ctx, req)
	if err != nil {
		return err
	}
	if df.xlsxPath != "" {
		book, err := xlsx.Workbook(*result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(df.xlsxPath, book, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return writeJSON(stdout, result)
}

func submit(ctx context.Context, app *bootstrap.App, path string, df documentFlags, stdout io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	job, err := app.Submitter.Submit(ctx, ports.SubmitRequest{
		Filename: filepath.Base(path),
		MimeType: df.mimeType,
		Language: df.language,
		UserID:   df.userID,
		MustKeep: splitList(df.mustKeep),
	}, f)
	if err != nil {
		return err
	}
	return writeJSON(stdout, job)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
