package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

func TestMisspelled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "de.txt"), []byte("# german\nRechnung\nbetrag\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(dir)

	got, err := c.Misspelled(context.Background(), []string{"rechnung", "Betrag", "xqzv", ""}, "DE")
	if err != nil {
		t.Fatalf("Misspelled() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one misspelled word, got %v", got)
	}
	if _, ok := got["xqzv"]; !ok {
		t.Fatalf("expected xqzv flagged, got %v", got)
	}
}

func TestMissingListIsCapabilityUnavailable(t *testing.T) {
	c := New(t.TempDir())
	for _, lang := range []string{"fr", "../de", ""} {
		_, err := c.Misspelled(context.Background(), []string{"bonjour"}, lang)
		if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
			t.Fatalf("%q: expected capability unavailable, got %v", lang, err)
		}
	}
}
