package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/acquisition"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/entities"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/keywords"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/scoring"
)

type dictionaryFake struct {
	cfg *domain.ScoringConfig
	err error
}

func (f *dictionaryFake) Load(_ context.Context, lang string) (*domain.ScoringConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg == nil {
		return domain.NewScoringConfig(lang), nil
	}
	return f.cfg, nil
}

type callLog struct{ calls []string }

func (l *callLog) add(name string) { l.calls = append(l.calls, name) }

type acquirerFake struct {
	log    *callLog
	record domain.OCRRecord
	cancel context.CancelFunc
}

func (f *acquirerFake) Acquire(context.Context, []byte, string, string) domain.OCRRecord {
	f.log.add("acquire")
	if f.cancel != nil {
		f.cancel()
	}
	return f.record
}

type extractorFake struct {
	log      *callLog
	language string
	entities []domain.ExtractedEntity
}

func (f *extractorFake) Extract(_ context.Context, _ string, lang string, _ *domain.ScoringConfig) []domain.ExtractedEntity {
	f.log.add("extract")
	f.language = lang
	return f.entities
}

type scorerFake struct {
	log    *callLog
	scored domain.ScoredEntities
}

func (f *scorerFake) Score(context.Context, []domain.ExtractedEntity, *domain.ScoringConfig) domain.ScoredEntities {
	f.log.add("score")
	return f.scored
}

type keywordFake struct {
	log       *callLog
	request   keywords.Request
	result    keywords.Result
	commitErr error
	committed []string
}

func (f *keywordFake) Extract(_ context.Context, req keywords.Request, _ *domain.ScoringConfig) keywords.Result {
	f.log.add("keywords")
	f.request = req
	return f.result
}

func (f *keywordFake) CommitStatistics(_ context.Context, _, _ string, tokens []string, _ *domain.ScoringConfig) error {
	f.log.add("commit")
	f.committed = tokens
	return f.commitErr
}

func newAnalyzeFixture() (*AnalyzeDocumentUseCase, *callLog, *acquirerFake, *extractorFake, *keywordFake) {
	log := &callLog{}
	acq := &acquirerFake{log: log, record: domain.OCRRecord{Text: "Rechnung", Confidence: 0.9}}
	ext := &extractorFake{log: log, entities: []domain.ExtractedEntity{{Type: domain.EntityOrganization, Value: "PATIENT"}}}
	sc := &scorerFake{log: log, scored: domain.ScoredEntities{
		RejectedForKeywords: []domain.RejectedEntity{{Value: "PATIENT", Type: domain.EntityOrganization, Confidence: 0.3}},
	}}
	kw := &keywordFake{log: log, result: keywords.Result{
		Keywords: []domain.Keyword{{Term: "rechnung", Frequency: 1, RelevanceScore: 100}},
		Tokens:   []string{"rechnung"},
	}}
	uc := NewAnalyzeDocumentUseCase(&dictionaryFake{}, acq, ext, sc, kw, nil, "de", nil)
	return uc, log, acq, ext, kw
}

func TestAnalyzeRunsStagesInOrder(t *testing.T) {
	uc, log, _, ext, kw := newAnalyzeFixture()

	res, err := uc.Analyze(context.Background(), domain.AnalyzeRequest{
		Data:     []byte("Rechnung"),
		MimeType: "text/plain",
		Language: "de-AT",
		UserID:   "u1",
		MustKeep: []string{"rechnung"},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := []string{"acquire", "extract", "score", "keywords", "commit"}
	if !reflect.DeepEqual(log.calls, want) {
		t.Fatalf("calls = %v, want %v", log.calls, want)
	}
	if ext.language != "de" || res.Language != "de" {
		t.Fatalf("language not normalized: extractor=%q result=%q", ext.language, res.Language)
	}
	if len(kw.request.Rejected) != 1 || kw.request.UserID != "u1" || !reflect.DeepEqual(kw.request.MustKeep, []string{"rechnung"}) {
		t.Fatalf("unexpected keyword request %+v", kw.request)
	}
	if !reflect.DeepEqual(kw.committed, []string{"rechnung"}) {
		t.Fatalf("committed = %v", kw.committed)
	}
	if res.Entities == nil || len(res.Entities) != 0 {
		t.Fatalf("entities must be an empty list, got %#v", res.Entities)
	}
	if res.OCR.Confidence != 0.9 {
		t.Fatalf("ocr record not propagated: %+v", res.OCR)
	}
}

func TestAnalyzeIgnoresCorpusCommitFailure(t *testing.T) {
	uc, _, _, _, kw := newAnalyzeFixture()
	kw.commitErr = errors.New("store down")

	res, err := uc.Analyze(context.Background(), domain.AnalyzeRequest{Data: []byte("x")})
	if err != nil {
		t.Fatalf("commit failure must not fail the call: %v", err)
	}
	if len(res.Keywords) != 1 {
		t.Fatalf("keywords must be returned, got %+v", res.Keywords)
	}
}

func TestAnalyzeStopsOnCancellation(t *testing.T) {
	uc, log, acq, _, kw := newAnalyzeFixture()
	ctx, cancel := context.WithCancel(context.Background())
	acq.cancel = cancel

	_, err := uc.Analyze(ctx, domain.AnalyzeRequest{Data: []byte("x")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !reflect.DeepEqual(log.calls, []string{"acquire"}) {
		t.Fatalf("calls = %v, later stages must not run", log.calls)
	}
	if kw.committed != nil {
		t.Fatal("corpus must not be touched after cancellation")
	}
}

func TestAnalyzeFallsBackToDefaultConfig(t *testing.T) {
	uc, log, _, _, _ := newAnalyzeFixture()
	uc.dictionary = &dictionaryFake{err: errors.New("db down")}

	if _, err := uc.Analyze(context.Background(), domain.AnalyzeRequest{Data: []byte("x")}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(log.calls) != 5 {
		t.Fatalf("calls = %v", log.calls)
	}
}

type nerFake struct{ spans []domain.NERSpan }

func (f *nerFake) Detect(context.Context, string, string) ([]domain.NERSpan, error) {
	return f.spans, nil
}

func TestAnalyzeConvertsRejectedOrganizationEndToEnd(t *testing.T) {
	cfg := domain.NewScoringConfig("de")
	cfg.Stopwords = map[string]struct{}{"patient": {}}
	obs := &observerFake{}

	ner := &nerFake{spans: []domain.NERSpan{{Label: "ORG", Text: "PATIENT", Start: 0, End: 7, Confidence: 0.75}}}
	uc := NewAnalyzeDocumentUseCase(
		&dictionaryFake{cfg: cfg},
		acquisition.NewAcquirer(acquisition.Config{}, acquisition.Deps{Observer: obs}, nil),
		entities.NewExtractor(ner, nil, obs, nil),
		scoring.NewScorer(nil, nil, nil, obs, nil),
		keywords.NewExtractor(nil, nil, obs, nil),
		obs,
		"de",
		nil,
	)

	res, err := uc.Analyze(context.Background(), domain.AnalyzeRequest{Data: []byte("PATIENT\n"), MimeType: "text/plain", Language: "de"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Entities) != 0 {
		t.Fatalf("PATIENT must not be accepted, got %+v", res.Entities)
	}
	want := []domain.Keyword{{Term: "patient", Frequency: 1, RelevanceScore: 2.0993, FromEntity: true}}
	if !reflect.DeepEqual(res.Keywords, want) {
		t.Fatalf("keywords = %+v, want %+v", res.Keywords, want)
	}
	if res.OCR.Text != "PATIENT" || res.OCR.Pages[0].Route != domain.RoutePlainText {
		t.Fatalf("unexpected ocr record %+v", res.OCR)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"de-AT":      "de",
		"EN":         "en",
		"":           "de",
		"not a tag!": "de",
	}
	for in, want := range tests {
		if got := NormalizeLanguage(in, "de"); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExplainReportsCascadeWithoutCommit(t *testing.T) {
	obs := &observerFake{}
	kw := &keywordFake{log: &callLog{}}
	uc := NewAnalyzeDocumentUseCase(
		&dictionaryFake{},
		acquisition.NewAcquirer(acquisition.Config{}, acquisition.Deps{Observer: obs}, nil),
		entities.NewExtractor(nil, nil, obs, nil),
		scoring.NewScorer(nil, nil, nil, obs, nil),
		kw,
		obs,
		"de",
		nil,
	)

	explained, err := uc.Explain(context.Background(), domain.AnalyzeRequest{
		Data:     []byte("Kontakt: info@example.com\n"),
		MimeType: "text/plain",
	})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if len(explained) == 0 {
		t.Fatal("expected at least one explained entity")
	}
	for _, ex := range explained {
		if ex.Strategy == "" {
			t.Fatalf("missing strategy for %+v", ex.Entity)
		}
	}
	if len(kw.committed) != 0 || len(kw.log.calls) != 0 {
		t.Fatalf("explain must not touch keywords or corpus, got %v", kw.log.calls)
	}
}

func TestExplainRequiresExplainingScorer(t *testing.T) {
	uc, _, _, _, _ := newAnalyzeFixture()
	_, err := uc.Explain(context.Background(), domain.AnalyzeRequest{Data: []byte("x")})
	if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability unavailable, got %v", err)
	}
}
