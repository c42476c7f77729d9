package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS corpus_totals (
	language TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	total_documents BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (language, user_id)
);

CREATE TABLE IF NOT EXISTS corpus_words (
	language TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	word TEXT NOT NULL,
	document_count BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (language, user_id, word)
);

CREATE TABLE IF NOT EXISTS scoring_config (
	language TEXT NOT NULL,
	key TEXT NOT NULL,
	value DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (language, key)
);

CREATE TABLE IF NOT EXISTS dictionary_terms (
	language TEXT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT NOT NULL,
	entity_type TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (language, kind, value, entity_type)
);

CREATE TABLE IF NOT EXISTS entity_patterns (
	id BIGSERIAL PRIMARY KEY,
	language TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	pattern_value TEXT NOT NULL,
	pattern_type TEXT NOT NULL CHECK (pattern_type IN ('suffix', 'keyword')),
	weight_key TEXT NOT NULL DEFAULT '',
	priority INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entity_patterns_language ON entity_patterns(language, entity_type, priority DESC);
`

// EnsureSchema creates the corpus and dictionary tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
