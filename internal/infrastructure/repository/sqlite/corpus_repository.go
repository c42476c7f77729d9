// Package sqlite is a single-node corpus statistics store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// lookupChunk keeps IN lists well under SQLite's bound-parameter limit.
const lookupChunk = 500

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	// One writer keeps increments serialized without busy retries.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

type CorpusRepository struct {
	db *sql.DB
}

func NewCorpusRepository(db *sql.DB) *CorpusRepository {
	return &CorpusRepository{db: db}
}

func (r *CorpusRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS corpus_totals (
	language TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	total_documents INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (language, user_id)
);
CREATE TABLE IF NOT EXISTS corpus_words (
	language TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	word TEXT NOT NULL,
	document_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (language, user_id, word)
);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

// Lookup reads counts and the document total in one transaction, joined per
// row, so a concurrent RecordDocument never shows a count above its total.
func (r *CorpusRepository) Lookup(ctx context.Context, scope domain.CorpusScope, words []string) (map[string]domain.CorpusStat, error) {
	out := make(map[string]domain.CorpusStat, len(words))
	words = distinct(words)
	if len(words) == 0 {
		return out, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin corpus read: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(words); start += lookupChunk {
		chunk := words[start:min(start+lookupChunk, len(words))]
		args := make([]any, 0, len(chunk)+2)
		args = append(args, scope.Language, scope.UserID)
		for _, w := range chunk {
			args = append(args, w)
		}
		query := `
SELECT w.word, w.document_count, t.total_documents
FROM corpus_words w
JOIN corpus_totals t ON t.language = w.language AND t.user_id = w.user_id
WHERE w.language = ? AND w.user_id = ? AND w.word IN (` +
			strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",") + `)`

		if err := scanWords(ctx, tx, query, args, scope, out); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit corpus read: %w", err)
	}
	return out, nil
}

func scanWords(ctx context.Context, tx *sql.Tx, query string, args []any, scope domain.CorpusScope, out map[string]domain.CorpusStat) error {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query corpus words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		stat := domain.CorpusStat{Language: scope.Language}
		if err := rows.Scan(&stat.Word, &stat.DocumentCount, &stat.TotalDocuments); err != nil {
			return fmt.Errorf("scan corpus word: %w", err)
		}
		out[stat.Word] = stat
	}
	return rows.Err()
}

func (r *CorpusRepository) Totals(ctx context.Context, scope domain.CorpusScope) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT total_documents FROM corpus_totals WHERE language = ? AND user_id = ?`,
		scope.Language, scope.UserID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query corpus totals: %w", err)
	}
	return total, nil
}

func (r *CorpusRepository) RecordDocument(ctx context.Context, scope domain.CorpusScope, words []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO corpus_totals (language, user_id, total_documents, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT (language, user_id) DO UPDATE
SET total_documents = total_documents + 1, updated_at = excluded.updated_at
`, scope.Language, scope.UserID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("increment corpus total: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO corpus_words (language, user_id, word, document_count) VALUES (?, ?, ?, 1)
ON CONFLICT (language, user_id, word) DO UPDATE SET document_count = document_count + 1
`)
	if err != nil {
		return fmt.Errorf("prepare corpus word upsert: %w", err)
	}
	defer stmt.Close()

	for _, w := range distinct(words) {
		if _, err := stmt.ExecContext(ctx, scope.Language, scope.UserID, w); err != nil {
			return fmt.Errorf("increment corpus word %q: %w", w, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus tx: %w", err)
	}
	return nil
}

func (r *CorpusRepository) ActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM corpus_totals WHERE user_id <> '' AND total_documents > 0`).Scan(&n)
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
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
