package onnx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

func TestAvailableTracksModelFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "de.onnx"), []byte("stub"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "fr.onnx"), 0o700); err != nil {
		t.Fatal(err)
	}
	m := New(Config{ModelDir: dir}, nil)

	cases := map[string]bool{"de": true, "DE": true, "en": false, "fr": false, "": false}
	for lang, want := range cases {
		if got := m.Available(lang); got != want {
			t.Fatalf("Available(%q) = %v, want %v", lang, got, want)
		}
	}

	if New(Config{}, nil).Available("de") {
		t.Fatal("expected no model without a model dir")
	}
}

func TestPredictWithoutModel(t *testing.T) {
	m := New(Config{ModelDir: t.TempDir()}, nil)
	_, err := m.Predict(context.Background(), "de", []float32{1, 2})
	if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestPredictCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{}, nil).Predict(ctx, "de", []float32{1})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
