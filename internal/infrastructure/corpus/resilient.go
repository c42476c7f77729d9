package corpus

import (
	"context"
	"errors"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/resilience"
)

// ResilientStore guards a backend with the shared retry and circuit-breaker
// executor. Reads retry; RecordDocument does not, since a retried increment
// after an ambiguous commit could count a document twice.
type ResilientStore struct {
	next     ports.CorpusStatsStore
	executor *resilience.Executor
	name     string
}

func NewResilientStore(next ports.CorpusStatsStore, executor *resilience.Executor, name string) *ResilientStore {
	if name == "" {
		name = "corpus"
	}
	return &ResilientStore{next: next, executor: executor, name: name}
}

func (s *ResilientStore) Lookup(ctx context.Context, scope domain.CorpusScope, words []string) (map[string]domain.CorpusStat, error) {
	out, err := resilience.Call(ctx, s.executor, s.name+".lookup", func(ctx context.Context) (map[string]domain.CorpusStat, error) {
		return s.next.Lookup(ctx, scope, words)
	}, classifyRead)
	return out, wrapTemporary(err, "corpus lookup")
}

func (s *ResilientStore) Totals(ctx context.Context, scope domain.CorpusScope) (int64, error) {
	out, err := resilience.Call(ctx, s.executor, s.name+".totals", func(ctx context.Context) (int64, error) {
		return s.next.Totals(ctx, scope)
	}, classifyRead)
	return out, wrapTemporary(err, "corpus totals")
}

func (s *ResilientStore) ActiveUsers(ctx context.Context) (int64, error) {
	out, err := resilience.Call(ctx, s.executor, s.name+".active_users", func(ctx context.Context) (int64, error) {
		return s.next.ActiveUsers(ctx)
	}, classifyRead)
	return out, wrapTemporary(err, "corpus active users")
}

func (s *ResilientStore) RecordDocument(ctx context.Context, scope domain.CorpusScope, words []string) error {
	_, err := resilience.Call(ctx, s.executor, s.name+".record", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.RecordDocument(ctx, scope, words)
	}, classifyWrite)
	return wrapTemporary(err, "corpus record")
}

func classifyRead(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	default:
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
}

func classifyWrite(err error) resilience.ErrorClassification {
	c := classifyRead(err)
	c.Retryable = false
	return c
}

func wrapTemporary(err error, op string) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	return domain.WrapError(domain.ErrTemporary, op, err)
}
