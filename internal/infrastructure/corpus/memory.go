// Package corpus holds corpus-store implementations that need no external
// service, plus the resilience decorator shared by all backends.
package corpus

import (
	"context"
	"sync"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

type scopeCounters struct {
	total int64
	words map[string]int64
}

// MemoryStore is a process-local corpus used by the CLI and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[domain.CorpusScope]*scopeCounters
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: map[domain.CorpusScope]*scopeCounters{}}
}

func (s *MemoryStore) Lookup(_ context.Context, scope domain.CorpusScope, words []string) (map[string]domain.CorpusStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.CorpusStat, len(words))
	c, ok := s.scopes[scope]
	if !ok {
		return out, nil
	}
	for _, w := range words {
		if n, ok := c.words[w]; ok {
			out[w] = domain.CorpusStat{Word: w, Language: scope.Language, DocumentCount: n, TotalDocuments: c.total}
		}
	}
	return out, nil
}

func (s *MemoryStore) Totals(_ context.Context, scope domain.CorpusScope) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.scopes[scope]; ok {
		return c.total, nil
	}
	return 0, nil
}

func (s *MemoryStore) RecordDocument(_ context.Context, scope domain.CorpusScope, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.scopes[scope]
	if !ok {
		c = &scopeCounters{words: map[string]int64{}}
		s.scopes[scope] = c
	}
	c.total++
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup || w == "" {
			continue
		}
		seen[w] = struct{}{}
		c.words[w]++
	}
	return nil
}

func (s *MemoryStore) ActiveUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := map[string]struct{}{}
	for scope, c := range s.scopes {
		if !scope.IsGlobal() && c.total > 0 {
			users[scope.UserID] = struct{}{}
		}
	}
	return int64(len(users)), nil
}
