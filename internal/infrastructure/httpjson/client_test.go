package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/resilience"
)

func TestPostJSONDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": payload["text"]})
	}))
	defer server.Close()

	client := New("ner", server.URL+"/", Options{RatePerSec: 100})
	var out struct {
		Echo string `json:"echo"`
	}
	if err := client.PostJSON(context.Background(), "/echo", map[string]string{"text": "hallo"}, &out, "echo"); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out.Echo != "hallo" {
		t.Fatalf("echo = %q", out.Echo)
	}
}

func TestGetJSONEncodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{r.URL.Query().Get("address")})
	}))
	defer server.Close()

	client := New("libpostal", server.URL, Options{})
	var out []string
	if err := client.GetJSON(context.Background(), "/parse", url.Values{"address": {"Hauptstraße 5"}}, &out, "parse"); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(out) != 1 || out[0] != "Hauptstraße 5" {
		t.Fatalf("out = %v", out)
	}
}

func TestRetryableStatusIsRetriedAndMarkedTemporary(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		BreakerEnabled:      false,
	}, nil)
	client := New("ner", server.URL, Options{Executor: exec})

	var out map[string]any
	err := client.PostJSON(context.Background(), "/ner", map[string]string{}, &out, "detect")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model loading") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestPermanentStatusIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown language", http.StatusBadRequest)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 3, RetryInitialBackoff: time.Millisecond}, nil)
	client := New("ner", server.URL, Options{Executor: exec})

	var out map[string]any
	err := client.PostJSON(context.Background(), "/ner", map[string]string{}, &out, "detect")
	if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability error, got %v", err)
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}
