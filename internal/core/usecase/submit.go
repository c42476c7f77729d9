package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

type SubmitDocumentUseCase struct {
	storage ports.ObjectStorage
	queue   ports.JobQueue
}

func NewSubmitDocumentUseCase(storage ports.ObjectStorage, queue ports.JobQueue) *SubmitDocumentUseCase {
	return &SubmitDocumentUseCase{
		storage: storage,
		queue:   queue,
	}
}

func (uc *SubmitDocumentUseCase) Submit(
	ctx context.Context,
	req ports.SubmitRequest,
	body io.Reader,
) (*domain.DocumentJob, error) {
	documentID := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", documentID, sanitizeFilename(req.Filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	job := &domain.DocumentJob{
		JobID:        uuid.NewString(),
		DocumentID:   documentID,
		StorageKey:   storageKey,
		Filename:     req.Filename,
		MimeType:     req.MimeType,
		Language:     req.Language,
		UserID:       req.UserID,
		MustKeep:     req.MustKeep,
		MinFrequency: req.MinFrequency,
		SubmittedAt:  time.Now().UTC(),
	}

	if err := uc.queue.PublishJob(ctx, *job); err != nil {
		return nil, fmt.Errorf("publish document job: %w", err)
	}

	return job, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
