package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type analyzerFake struct {
	req         domain.AnalyzeRequest
	hasDeadline bool
	result      *domain.AnalysisResult
	err         error
}

func (f *analyzerFake) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	f.req = req
	_, f.hasDeadline = ctx.Deadline()
	return f.result, f.err
}

func storedJob() (domain.DocumentJob, *storageFake) {
	storage := &storageFake{objects: map[string][]byte{"doc-1_a.txt": []byte("Rechnung")}}
	return domain.DocumentJob{
		JobID:        "job-1",
		DocumentID:   "doc-1",
		StorageKey:   "doc-1_a.txt",
		MimeType:     "text/plain",
		Language:     "de",
		UserID:       "u1",
		MustKeep:     []string{"rechnung"},
		MinFrequency: 2,
	}, storage
}

func TestProcessJobPublishesResult(t *testing.T) {
	job, storage := storedJob()
	analyzer := &analyzerFake{result: &domain.AnalysisResult{Language: "de", Keywords: []domain.Keyword{{Term: "rechnung", Frequency: 1}}}}
	queue := &queueFake{}
	uc := NewProcessJobUseCase(storage, analyzer, queue, time.Minute, nil)

	if err := uc.Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if string(analyzer.req.Data) != "Rechnung" || analyzer.req.MimeType != "text/plain" || analyzer.req.MinFrequency != 2 || analyzer.req.UserID != "u1" {
		t.Fatalf("unexpected analyze request %+v", analyzer.req)
	}
	if !analyzer.hasDeadline {
		t.Fatal("pipeline must run under the job timeout")
	}
	if len(queue.results) != 1 {
		t.Fatalf("expected one result, got %d", len(queue.results))
	}
	got := queue.results[0]
	if got.JobID != "job-1" || got.DocumentID != "doc-1" || got.Error != "" || got.Result == nil || len(got.Result.Keywords) != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestProcessJobPublishesFailure(t *testing.T) {
	job, storage := storedJob()
	queue := &queueFake{}
	uc := NewProcessJobUseCase(storage, &analyzerFake{err: context.DeadlineExceeded}, queue, time.Minute, nil)

	if err := uc.Handle(context.Background(), job); err != nil {
		t.Fatalf("analysis failures must be published, not returned: %v", err)
	}
	if len(queue.results) != 1 || !strings.Contains(queue.results[0].Error, "deadline exceeded") || queue.results[0].Result != nil {
		t.Fatalf("unexpected results %+v", queue.results)
	}
	if queue.results[0].ErrorKind != "timeout" {
		t.Fatalf("expected timeout error kind, got %q", queue.results[0].ErrorKind)
	}
}

func TestProcessJobMissingDocument(t *testing.T) {
	job, _ := storedJob()
	queue := &queueFake{}
	analyzer := &analyzerFake{}
	uc := NewProcessJobUseCase(&storageFake{}, analyzer, queue, 0, nil)

	if err := uc.Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(queue.results) != 1 || !strings.Contains(queue.results[0].Error, "open stored document") {
		t.Fatalf("unexpected results %+v", queue.results)
	}
	if analyzer.req.Data != nil {
		t.Fatal("analyzer must not run without document bytes")
	}
}

func TestProcessJobRequiresStorageKey(t *testing.T) {
	queue := &queueFake{}
	uc := NewProcessJobUseCase(&storageFake{}, &analyzerFake{}, queue, 0, nil)

	if err := uc.Handle(context.Background(), domain.DocumentJob{JobID: "job-2"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(queue.results) != 1 || !strings.Contains(queue.results[0].Error, domain.ErrInvalidInput.Error()) {
		t.Fatalf("unexpected results %+v", queue.results)
	}
	if queue.results[0].ErrorKind != "invalid_input" {
		t.Fatalf("expected invalid_input error kind, got %q", queue.results[0].ErrorKind)
	}
}

func TestProcessJobReturnsPublishError(t *testing.T) {
	job, storage := storedJob()
	uc := NewProcessJobUseCase(storage, &analyzerFake{result: &domain.AnalysisResult{}}, &queueFake{resultErr: errors.New("nats down")}, 0, nil)

	if err := uc.Handle(context.Background(), job); err == nil {
		t.Fatal("expected publish error")
	}
}
