package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// OverridesRepository serves per-language scoring values, dictionary terms and
// entity patterns managed outside the service.
type OverridesRepository struct {
	db *sql.DB
}

func NewOverridesRepository(db *sql.DB) *OverridesRepository {
	return &OverridesRepository{db: db}
}

func (r *OverridesRepository) LoadOverrides(ctx context.Context, language string) (*domain.ScoringOverrides, error) {
	out := &domain.ScoringOverrides{Values: map[string]float64{}}

	if err := r.loadValues(ctx, language, out); err != nil {
		return nil, err
	}
	if err := r.loadTerms(ctx, language, out); err != nil {
		return nil, err
	}
	if err := r.loadPatterns(ctx, language, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OverridesRepository) loadValues(ctx context.Context, language string, out *domain.ScoringOverrides) error {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM scoring_config WHERE language = $1`, language)
	if err != nil {
		return fmt.Errorf("query scoring config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan scoring config: %w", err)
		}
		out.Values[key] = value
	}
	return rows.Err()
}

func (r *OverridesRepository) loadTerms(ctx context.Context, language string, out *domain.ScoringOverrides) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT kind, value, entity_type FROM dictionary_terms WHERE language = $1 ORDER BY kind, value
`, language)
	if err != nil {
		return fmt.Errorf("query dictionary terms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var term domain.DictionaryTerm
		var entityType string
		if err := rows.Scan(&term.Kind, &term.Value, &entityType); err != nil {
			return fmt.Errorf("scan dictionary term: %w", err)
		}
		if term.Kind == domain.TermBlacklist {
			t, ok := domain.ParseEntityType(entityType)
			if !ok {
				continue
			}
			term.EntityType = t
		}
		out.Terms = append(out.Terms, term)
	}
	return rows.Err()
}

func (r *OverridesRepository) loadPatterns(ctx context.Context, language string, out *domain.ScoringOverrides) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT entity_type, pattern_value, pattern_type, weight_key
FROM entity_patterns
WHERE language = $1
ORDER BY priority DESC, id
`, language)
	if err != nil {
		return fmt.Errorf("query entity patterns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entityType string
			p          domain.EntityPattern
		)
		if err := rows.Scan(&entityType, &p.Value, &p.Type, &p.WeightKey); err != nil {
			return fmt.Errorf("scan entity pattern: %w", err)
		}
		t, ok := domain.ParseEntityType(entityType)
		if !ok {
			continue
		}
		out.Patterns = append(out.Patterns, domain.TypedPattern{EntityType: t, Pattern: p})
	}
	return rows.Err()
}
