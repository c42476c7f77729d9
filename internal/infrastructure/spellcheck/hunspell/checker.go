// Package hunspell checks spelling with the hunspell CLI in list mode.
package hunspell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/cmdrunner"
)

type Config struct {
	Binary string // default "hunspell"
	// Dictionaries maps ISO 639-1 codes to hunspell dictionary names.
	Dictionaries map[string]string
	CacheTTL     time.Duration
}

func DefaultDictionaries() map[string]string {
	return map[string]string{
		"de": "de_DE",
		"en": "en_US",
		"fr": "fr_FR",
	}
}

// Checker remembers per-word verdicts so repeated vocabulary skips the process.
type Checker struct {
	cfg      Config
	runner   cmdrunner.Runner
	verdicts *cache.Cache
}

func New(cfg Config, runner cmdrunner.Runner) *Checker {
	if cfg.Binary == "" {
		cfg.Binary = "hunspell"
	}
	if len(cfg.Dictionaries) == 0 {
		cfg.Dictionaries = DefaultDictionaries()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &Checker{cfg: cfg, runner: runner, verdicts: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)}
}

func (c *Checker) Misspelled(ctx context.Context, words []string, language string) (map[string]struct{}, error) {
	dict, ok := c.cfg.Dictionaries[strings.ToLower(language)]
	if !ok {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "hunspell", fmt.Errorf("no dictionary for %q", language))
	}

	out := make(map[string]struct{})
	var pending []string
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if v, hit := c.verdicts.Get(dict + "\x00" + w); hit {
			if v.(bool) {
				out[w] = struct{}{}
			}
			continue
		}
		pending = append(pending, w)
	}
	if len(pending) == 0 {
		return out, nil
	}

	stdout, errb, err := c.runner.Run(ctx, []byte(strings.Join(pending, "\n")+"\n"), c.cfg.Binary, "-l", "-i", "UTF-8", "-d", dict)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "hunspell",
			fmt.Errorf("%w: %s", err, cmdrunner.Truncate(strings.TrimSpace(string(errb)), 512)))
	}

	bad := make(map[string]struct{})
	sc := bufio.NewScanner(bytes.NewReader(stdout))
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			bad[w] = struct{}{}
		}
	}
	for _, w := range pending {
		_, miss := bad[w]
		c.verdicts.SetDefault(dict+"\x00"+w, miss)
		if miss {
			out[w] = struct{}{}
		}
	}
	return out, nil
}
