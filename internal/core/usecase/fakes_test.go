package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type storageFake struct {
	objects map[string][]byte
	saveErr error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type queueFake struct {
	jobs       []domain.DocumentJob
	results    []domain.JobResult
	publishErr error
	resultErr  error
}

func (f *queueFake) PublishJob(_ context.Context, job domain.DocumentJob) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *queueFake) SubscribeJobs(context.Context, func(context.Context, domain.DocumentJob) error) error {
	return errors.New("not implemented")
}

func (f *queueFake) PublishResult(_ context.Context, result domain.JobResult) error {
	if f.resultErr != nil {
		return f.resultErr
	}
	f.results = append(f.results, result)
	return nil
}

type observerFake struct {
	stages    []string
	fallbacks map[string]int
}

func (o *observerFake) ObservePage(string) {}
func (o *observerFake) ObserveFallback(capability string) {
	if o.fallbacks == nil {
		o.fallbacks = map[string]int{}
	}
	o.fallbacks[capability]++
}
func (o *observerFake) ObserveStage(stage string, _ time.Duration) { o.stages = append(o.stages, stage) }
func (o *observerFake) ObserveEntities(int, int, int)              {}
func (o *observerFake) ObserveKeywords(int)                        {}
