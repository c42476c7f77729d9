package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

// arrayConverter lets []string reach the mock the way pgx accepts it natively.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestCorpusLookup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCorpusRepository(db)

	rows := sqlmock.NewRows([]string{"word", "document_count", "total_documents"}).
		AddRow("rechnung", int64(40), int64(100))
	mock.ExpectQuery("FROM corpus_words").
		WithArgs("de", "", []string{"rechnung", "konto"}).
		WillReturnRows(rows)

	got, err := repo.Lookup(context.Background(), domain.GlobalScope("de"), []string{"rechnung", "konto", "rechnung"})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	want := domain.CorpusStat{Word: "rechnung", Language: "de", DocumentCount: 40, TotalDocuments: 100}
	if len(got) != 1 || got["rechnung"] != want {
		t.Fatalf("unexpected stats %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCorpusLookupWithoutWordsSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	got, err := NewCorpusRepository(db).Lookup(context.Background(), domain.GlobalScope("de"), []string{"", ""})
	if err != nil || len(got) != 0 {
		t.Fatalf("Lookup() = %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCorpusTotalsMissingScopeIsZero(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT total_documents FROM corpus_totals").
		WithArgs("de", "u-1").
		WillReturnError(sql.ErrNoRows)

	total, err := NewCorpusRepository(db).Totals(context.Background(), domain.UserScope("de", "u-1"))
	if err != nil || total != 0 {
		t.Fatalf("Totals() = %d, %v", total, err)
	}
}

func TestCorpusRecordDocumentCountsDistinctWords(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCorpusRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO corpus_totals").
		WithArgs("de", "u-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO corpus_words").
		WithArgs("de", "u-1", []string{"konto", "bank"}).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.RecordDocument(context.Background(), domain.UserScope("de", "u-1"), []string{"konto", "bank", "konto"})
	if err != nil {
		t.Fatalf("RecordDocument() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCorpusRecordDocumentRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCorpusRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO corpus_totals").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO corpus_words").
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.RecordDocument(context.Background(), domain.GlobalScope("de"), []string{"konto"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCorpusActiveUsers(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("COUNT\\(DISTINCT user_id\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := NewCorpusRepository(db).ActiveUsers(context.Background())
	if err != nil || n != 12 {
		t.Fatalf("ActiveUsers() = %d, %v", n, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOverridesRepository(db)

	mock.ExpectQuery("FROM scoring_config").
		WithArgs("de").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).AddRow("threshold_organization", 0.7))
	mock.ExpectQuery("FROM dictionary_terms").
		WithArgs("de").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "value", "entity_type"}).
			AddRow(domain.TermBlacklist, "muster", "ORGANIZATION").
			AddRow(domain.TermBlacklist, "ghost", "SPACESHIP").
			AddRow(domain.TermFieldLabel, "az", ""))
	mock.ExpectQuery("FROM entity_patterns").
		WithArgs("de").
		WillReturnRows(sqlmock.NewRows([]string{"entity_type", "pattern_value", "pattern_type", "weight_key"}).
			AddRow("ORGANIZATION", "sparkasse", "keyword", "pattern_institution_multiplier"))

	got, err := repo.LoadOverrides(context.Background(), "de")
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if got.Values["threshold_organization"] != 0.7 {
		t.Fatalf("unexpected values %v", got.Values)
	}
	if len(got.Terms) != 2 || got.Terms[0].EntityType != domain.EntityOrganization || got.Terms[1].Kind != domain.TermFieldLabel {
		t.Fatalf("unexpected terms %+v", got.Terms)
	}
	if len(got.Patterns) != 1 || got.Patterns[0].Pattern.Value != "sparkasse" {
		t.Fatalf("unexpected patterns %+v", got.Patterns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadOverridesPropagatesQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM scoring_config").WillReturnError(errors.New("connection reset"))

	if _, err := NewOverridesRepository(db).LoadOverrides(context.Background(), "de"); err == nil {
		t.Fatal("expected error")
	}
}
