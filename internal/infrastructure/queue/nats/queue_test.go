package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

func TestDecodeJob(t *testing.T) {
	job, err := DecodeJob([]byte(`{"job_id":"j-1","document_id":"d-1","storage_key":"d-1_a.pdf","mime_type":"application/pdf","language":"de","must_keep":["Bank"],"min_frequency":2}`))
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if job.JobID != "j-1" || job.StorageKey != "d-1_a.pdf" || job.MinFrequency != 2 || len(job.MustKeep) != 1 {
		t.Fatalf("unexpected job %+v", job)
	}

	for _, raw := range []string{`not json`, `{"job_id":"j-1"}`, `{"storage_key":"k"}`} {
		if _, err := DecodeJob([]byte(raw)); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("DecodeJob(%q) expected invalid input, got %v", raw, err)
		}
	}
}

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{name: "timeout", err: fmt.Errorf("nats publish: %w", nats.ErrTimeout), retryable: true, recordFailure: true},
		{name: "disconnected", err: nats.ErrDisconnected, retryable: true, recordFailure: true},
		{name: "reconnecting", err: nats.ErrConnectionReconnecting, retryable: true, recordFailure: true},
		{name: "canceled", err: context.Canceled},
		{name: "circuit open", err: gobreaker.ErrOpenState},
		{name: "max payload", err: nats.ErrMaxPayload},
		{name: "other", err: errors.New("boom"), recordFailure: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyNATSError(tc.err)
			if got.Retryable != tc.retryable || got.RecordFailure != tc.recordFailure {
				t.Fatalf("classifyNATSError() = %+v", got)
			}
		})
	}
}

func TestWrapTemporary(t *testing.T) {
	if err := wrapTemporary("nats.publish_job", nats.ErrNoServers); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary, got %v", err)
	}
	if err := wrapTemporary("nats.publish_job", gobreaker.ErrOpenState); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary for open circuit, got %v", err)
	}
	plain := errors.New("boom")
	if err := wrapTemporary("nats.publish_job", plain); err != plain {
		t.Fatalf("expected passthrough, got %v", err)
	}
}
