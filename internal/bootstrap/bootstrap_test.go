package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/config"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

func TestNewWiresInProcessPipeline(t *testing.T) {
	app, err := New(context.Background(), config.Config{
		CorpusBackend:   "memory",
		DefaultLanguage: "de",
	}, Options{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Queue != nil || app.ProcessUC != nil || app.Submitter != nil {
		t.Fatal("queue surfaces must stay unwired without WithQueue")
	}
	if !app.Healthy() {
		t.Fatal("expected healthy app without queue")
	}

	text := "Grundsteuerbescheid\nKontakt: buchhaltung@muster.de\nGrundsteuer Grundsteuer Grundsteuer\n"
	res, err := app.AnalyzeUC.Analyze(context.Background(), domain.AnalyzeRequest{
		Data:     []byte(text),
		MimeType: "text/plain",
		UserID:   "u-1",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Language != "de" {
		t.Fatalf("expected default language de, got %q", res.Language)
	}
	if len(res.Keywords) == 0 || res.Keywords[0].Term != "grundsteuer" {
		t.Fatalf("expected grundsteuer as top keyword, got %+v", res.Keywords)
	}

	explained, err := app.AnalyzeUC.Explain(context.Background(), domain.AnalyzeRequest{Data: []byte(text), MimeType: "text/plain"})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	var email bool
	for _, ex := range explained {
		if ex.Entity.Type == domain.EntityEmail {
			email = true
		}
	}
	if !email {
		t.Fatalf("expected an explained email entity, got %+v", explained)
	}
}

func TestNewRejectsUnknownCorpusBackend(t *testing.T) {
	_, err := New(context.Background(), config.Config{CorpusBackend: "cassandra"}, Options{}, nil)
	if err == nil || !strings.Contains(err.Error(), "cassandra") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}
