// Package dictionary provides per-language scoring configuration: embedded
// defaults, an optional YAML override file and an external override store,
// served through a short-TTL read-through cache.
package dictionary

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

//go:embed data/*.yaml
var builtin embed.FS

const defaultTTL = 5 * time.Minute

type Options struct {
	// OverridePath is a YAML file keyed by language whose entries use the same
	// layout as the embedded dictionaries.
	OverridePath string

	// Values apply to every language, between the built-ins and the file.
	Values map[string]float64

	Store  ports.ScoringOverrideStore
	TTL    time.Duration
	Logger *slog.Logger
}

type Provider struct {
	builtin map[string]*domain.ScoringOverrides
	file    map[string]*domain.ScoringOverrides
	process *domain.ScoringOverrides
	store   ports.ScoringOverrideStore
	cache   *cache.Cache
	logger  *slog.Logger
}

func NewProvider(opts Options) (*Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	base, err := loadBuiltin()
	if err != nil {
		return nil, err
	}
	p := &Provider{
		builtin: base,
		file:    map[string]*domain.ScoringOverrides{},
		process: &domain.ScoringOverrides{Values: opts.Values},
		store:   opts.Store,
		cache:   cache.New(ttl, 2*ttl),
		logger:  logger,
	}

	if opts.OverridePath != "" {
		raw, err := os.ReadFile(opts.OverridePath)
		if err != nil {
			return nil, fmt.Errorf("read dictionary overrides: %w", err)
		}
		var docs map[string]document
		if err := yaml.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("parse dictionary overrides %s: %w", opts.OverridePath, err)
		}
		for lang, doc := range docs {
			o, warnings := doc.overrides()
			p.warn(lang, "override_file", warnings)
			p.file[strings.ToLower(lang)] = o
		}
	}
	return p, nil
}

// Languages lists the languages with an embedded dictionary.
func (p *Provider) Languages() []string {
	out := make([]string, 0, len(p.builtin))
	for lang := range p.builtin {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

// Load never fails on store problems: the snapshot then omits store overrides
// and is not cached, so the next call retries the store.
func (p *Provider) Load(ctx context.Context, language string) (*domain.ScoringConfig, error) {
	lang := strings.ToLower(strings.TrimSpace(language))
	if cached, ok := p.cache.Get(lang); ok {
		return cached.(*domain.ScoringConfig), nil
	}

	cfg := domain.NewScoringConfig(lang)
	if _, ok := p.builtin[lang]; !ok {
		p.logger.Warn("no built-in dictionary for language, using defaults", "language", lang)
	}
	p.warn(lang, "builtin", cfg.Apply(p.builtin[lang]))
	p.warn(lang, "process", cfg.Apply(p.process))
	p.warn(lang, "override_file", cfg.Apply(p.file[lang]))

	cacheable := true
	if p.store != nil {
		o, err := p.store.LoadOverrides(ctx, lang)
		switch {
		case err == nil:
			p.warn(lang, "store", cfg.Apply(o))
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			cacheable = false
			p.logger.Warn("dictionary store unavailable, using local dictionary",
				"language", lang,
				"error", err,
			)
		}
	}

	if cacheable {
		p.cache.SetDefault(lang, cfg)
	}
	return cfg, nil
}

// Invalidate drops a cached snapshot; an empty language drops all of them.
func (p *Provider) Invalidate(language string) {
	if language == "" {
		p.cache.Flush()
		return
	}
	p.cache.Delete(strings.ToLower(language))
}

func (p *Provider) warn(lang, source string, ignored []string) {
	if len(ignored) == 0 {
		return
	}
	p.logger.Warn("ignored dictionary entries",
		"language", lang,
		"source", source,
		"keys", strings.Join(ignored, ","),
	)
}

func loadBuiltin() (map[string]*domain.ScoringOverrides, error) {
	entries, err := fs.ReadDir(builtin, "data")
	if err != nil {
		return nil, fmt.Errorf("read embedded dictionaries: %w", err)
	}
	out := make(map[string]*domain.ScoringOverrides, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		raw, err := builtin.ReadFile(path.Join("data", name))
		if err != nil {
			return nil, fmt.Errorf("read embedded dictionary %s: %w", name, err)
		}
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse embedded dictionary %s: %w", name, err)
		}
		o, warnings := doc.overrides()
		if len(warnings) > 0 {
			return nil, fmt.Errorf("embedded dictionary %s: invalid entries %s", name, strings.Join(warnings, ","))
		}
		out[strings.TrimSuffix(name, ".yaml")] = o
	}
	return out, nil
}
