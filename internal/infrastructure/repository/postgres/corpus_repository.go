package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// CorpusRepository stores document-frequency counters. The global corpus of a
// language uses the empty user id.
type CorpusRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewCorpusRepository(db *sql.DB) *CorpusRepository {
	return &CorpusRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *CorpusRepository) Lookup(ctx context.Context, scope domain.CorpusScope, words []string) (map[string]domain.CorpusStat, error) {
	out := make(map[string]domain.CorpusStat, len(words))
	words = distinct(words)
	if len(words) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT w.word, w.document_count, t.total_documents
FROM corpus_words w
JOIN corpus_totals t ON t.language = w.language AND t.user_id = w.user_id
WHERE w.language = $1 AND w.user_id = $2 AND w.word = ANY($3)
`, scope.Language, scope.UserID, words)
	if err != nil {
		return nil, fmt.Errorf("query corpus words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		stat := domain.CorpusStat{Language: scope.Language}
		if err := rows.Scan(&stat.Word, &stat.DocumentCount, &stat.TotalDocuments); err != nil {
			return nil, fmt.Errorf("scan corpus word: %w", err)
		}
		out[stat.Word] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus words: %w", err)
	}
	return out, nil
}

func (r *CorpusRepository) Totals(ctx context.Context, scope domain.CorpusScope) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
SELECT total_documents FROM corpus_totals WHERE language = $1 AND user_id = $2
`, scope.Language, scope.UserID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query corpus totals: %w", err)
	}
	return total, nil
}

// RecordDocument counts one document in a single transaction so the total and
// every word counter move together.
func (r *CorpusRepository) RecordDocument(ctx context.Context, scope domain.CorpusScope, words []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO corpus_totals (language, user_id, total_documents, updated_at)
VALUES ($1, $2, 1, $3)
ON CONFLICT (language, user_id) DO UPDATE
SET total_documents = corpus_totals.total_documents + 1, updated_at = EXCLUDED.updated_at
`, scope.Language, scope.UserID, r.now())
	if err != nil {
		return fmt.Errorf("increment corpus total: %w", err)
	}

	if words = distinct(words); len(words) > 0 {
		_, err = tx.ExecContext(ctx, `
INSERT INTO corpus_words (language, user_id, word, document_count)
SELECT $1, $2, w, 1 FROM unnest($3::text[]) AS w
ON CONFLICT (language, user_id, word) DO UPDATE
SET document_count = corpus_words.document_count + 1
`, scope.Language, scope.UserID, words)
		if err != nil {
			return fmt.Errorf("increment corpus words: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus tx: %w", err)
	}
	return nil
}

func (r *CorpusRepository) ActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(DISTINCT user_id) FROM corpus_totals WHERE user_id <> '' AND total_documents > 0
`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
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
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
