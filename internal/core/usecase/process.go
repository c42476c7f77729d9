package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

// ProcessJobUseCase analyzes one queued document and publishes its result.
type ProcessJobUseCase struct {
	storage  ports.ObjectStorage
	analyzer ports.DocumentAnalyzer
	queue    ports.JobQueue
	timeout  time.Duration
	logger   *slog.Logger
}

func NewProcessJobUseCase(
	storage ports.ObjectStorage,
	analyzer ports.DocumentAnalyzer,
	queue ports.JobQueue,
	timeout time.Duration,
	logger *slog.Logger,
) *ProcessJobUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessJobUseCase{
		storage:  storage,
		analyzer: analyzer,
		queue:    queue,
		timeout:  timeout,
		logger:   logger,
	}
}

// Handle runs the whole pipeline under one timeout. Failures are published as
// error results; only a failed publish is returned for redelivery.
func (uc *ProcessJobUseCase) Handle(ctx context.Context, job domain.DocumentJob) error {
	started := time.Now()
	result := domain.JobResult{JobID: job.JobID, DocumentID: job.DocumentID}

	analysis, err := uc.process(ctx, job)
	result.DurationMS = time.Since(started).Milliseconds()
	if err != nil {
		uc.logger.Error("document job failed",
			"job_id", job.JobID,
			"document_id", job.DocumentID,
			"error_kind", domain.KindName(err),
			"error", err,
		)
		result.Error = err.Error()
		result.ErrorKind = domain.KindName(err)
	} else {
		result.Result = analysis
		uc.logger.Info("document job processed",
			"job_id", job.JobID,
			"document_id", job.DocumentID,
			"entities", len(analysis.Entities),
			"keywords", len(analysis.Keywords),
			"ocr_confidence", analysis.OCR.Confidence,
			"duration_ms", result.DurationMS,
		)
	}

	if err := uc.queue.PublishResult(ctx, result); err != nil {
		return fmt.Errorf("publish job result: %w", err)
	}
	return nil
}

func (uc *ProcessJobUseCase) process(ctx context.Context, job domain.DocumentJob) (*domain.AnalysisResult, error) {
	if job.StorageKey == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process job", errors.New("storage key is required"))
	}
	data, err := uc.load(ctx, job.StorageKey)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	analysis, err := uc.analyzer.Analyze(runCtx, domain.AnalyzeRequest{
		Data:         data,
		MimeType:     job.MimeType,
		Language:     job.Language,
		UserID:       job.UserID,
		MustKeep:     job.MustKeep,
		MinFrequency: job.MinFrequency,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze document: %w", err)
	}
	return analysis, nil
}

func (uc *ProcessJobUseCase) load(ctx context.Context, key string) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return data, nil
}
