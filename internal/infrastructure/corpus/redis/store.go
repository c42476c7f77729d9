// Package redis keeps corpus counters in Redis hashes so several workers can
// share one corpus without a SQL database.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

const defaultPrefix = "docintel:corpus"

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	client *goredis.Client
	prefix string
}

func New(cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

func NewWithClient(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) scopeKey(scope domain.CorpusScope) string {
	owner := "_global"
	if !scope.IsGlobal() {
		owner = "user:" + scope.UserID
	}
	return s.prefix + ":" + scope.Language + ":" + owner
}

func (s *Store) usersKey() string { return s.prefix + ":users" }

func (s *Store) Lookup(ctx context.Context, scope domain.CorpusScope, words []string) (map[string]domain.CorpusStat, error) {
	out := make(map[string]domain.CorpusStat, len(words))
	words = distinct(words)
	if len(words) == 0 {
		return out, nil
	}

	key := s.scopeKey(scope)
	var (
		totalCmd *goredis.StringCmd
		countCmd *goredis.SliceCmd
	)
	// MULTI/EXEC keeps the total and the counters from the same snapshot.
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		totalCmd = p.Get(ctx, key+":total")
		countCmd = p.HMGet(ctx, key+":words", words...)
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis corpus lookup: %w", err)
	}

	total, err := totalCmd.Int64()
	if errors.Is(err, goredis.Nil) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis corpus total: %w", err)
	}

	for i, raw := range countCmd.Val() {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse corpus count for %q: %w", words[i], err)
		}
		out[words[i]] = domain.CorpusStat{
			Word:           words[i],
			Language:       scope.Language,
			DocumentCount:  n,
			TotalDocuments: total,
		}
	}
	return out, nil
}

func (s *Store) Totals(ctx context.Context, scope domain.CorpusScope) (int64, error) {
	total, err := s.client.Get(ctx, s.scopeKey(scope)+":total").Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis corpus total: %w", err)
	}
	return total, nil
}

// RecordDocument runs in MULTI/EXEC so readers never see a word counter ahead
// of the document total.
func (s *Store) RecordDocument(ctx context.Context, scope domain.CorpusScope, words []string) error {
	key := s.scopeKey(scope)
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Incr(ctx, key+":total")
		for _, w := range distinct(words) {
			p.HIncrBy(ctx, key+":words", w, 1)
		}
		if !scope.IsGlobal() {
			p.SAdd(ctx, s.usersKey(), scope.UserID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis corpus record: %w", err)
	}
	return nil
}

func (s *Store) ActiveUsers(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, s.usersKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis active users: %w", err)
	}
	return n, nil
}

func distinct(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
