// Package wordlist checks spelling against plain word lists, one word per
// line in <dir>/<language>.txt. It serves hosts without hunspell.
package wordlist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type Checker struct {
	dir string

	mu    sync.Mutex
	lists map[string]map[string]struct{}
}

func New(dir string) *Checker {
	return &Checker{dir: dir, lists: make(map[string]map[string]struct{})}
}

func (c *Checker) Misspelled(ctx context.Context, words []string, language string) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	known, err := c.list(strings.ToLower(strings.TrimSpace(language)))
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := known[strings.ToLower(w)]; !ok {
			out[w] = struct{}{}
		}
	}
	return out, nil
}

func (c *Checker) list(lang string) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lists[lang]; ok {
		return l, nil
	}
	if lang == "" || strings.ContainsAny(lang, `/\.`) {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "wordlist", fmt.Errorf("invalid language %q", lang))
	}

	f, err := os.Open(filepath.Join(c.dir, lang+".txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "wordlist", fmt.Errorf("no word list for %q", lang))
		}
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "wordlist", err)
	}
	defer f.Close()

	l := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		l[strings.ToLower(w)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "wordlist", err)
	}
	c.lists[lang] = l
	return l, nil
}
