package hunspell

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type runnerFake struct {
	stdin [][]byte
	args  [][]string
	out   string
	err   error
}

func (r *runnerFake) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	r.stdin = append(r.stdin, stdin)
	r.args = append(r.args, append([]string{name}, args...))
	if r.err != nil {
		return nil, []byte("Can't open affix or dictionary files"), r.err
	}
	return []byte(r.out), nil, nil
}

func TestMisspelledCachesVerdicts(t *testing.T) {
	runner := &runnerFake{out: "Rechnunng\n"}
	c := New(Config{}, runner)

	got, err := c.Misspelled(context.Background(), []string{"Rechnung", "Rechnunng", "Rechnung"}, "de")
	if err != nil {
		t.Fatalf("Misspelled() error = %v", err)
	}
	if _, ok := got["Rechnunng"]; !ok || len(got) != 1 {
		t.Fatalf("unexpected result %v", got)
	}
	if string(runner.stdin[0]) != "Rechnung\nRechnunng\n" {
		t.Fatalf("unexpected stdin %q", runner.stdin[0])
	}
	if strings.Join(runner.args[0], " ") != "hunspell -l -i UTF-8 -d de_DE" {
		t.Fatalf("unexpected args %v", runner.args[0])
	}

	got, err = c.Misspelled(context.Background(), []string{"Rechnunng", "Rechnung"}, "de")
	if err != nil {
		t.Fatalf("second Misspelled() error = %v", err)
	}
	if len(runner.args) != 1 {
		t.Fatalf("expected cached verdicts, hunspell ran %d times", len(runner.args))
	}
	if _, ok := got["Rechnunng"]; !ok || len(got) != 1 {
		t.Fatalf("unexpected cached result %v", got)
	}
}

func TestMisspelledUnsupportedLanguage(t *testing.T) {
	_, err := New(Config{}, &runnerFake{}).Misspelled(context.Background(), []string{"hola"}, "es")
	if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestMisspelledRunnerFailure(t *testing.T) {
	_, err := New(Config{}, &runnerFake{err: errors.New("exit 1")}).Misspelled(context.Background(), []string{"Haus"}, "de")
	if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability error, got %v", err)
	}
}
