// Package postgres implements the word repository on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

// Querier is the subset of *pgxpool.Pool used by Repository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	columns       = []string{"id", "word", "pronunciation", "difficulty", "meanings", "origin", "usage_count", "created_at", "updated_at"}
	insertColumns = []string{"word", "pronunciation", "difficulty", "meanings", "origin", "usage_count"}
)

const statsQuery = `SELECT
	COUNT(*)::bigint,
	COUNT(*) FILTER (WHERE origin = 'generated')::bigint,
	COUNT(*) FILTER (WHERE origin = 'imported')::bigint,
	COUNT(*) FILTER (WHERE origin = 'manual')::bigint,
	COALESCE(SUM(usage_count), 0)::bigint
FROM words`

// Repository implements dictionary.Repository with pgx.
type Repository struct {
	q Querier
}

// New creates a new Repository.
func New(q Querier) *Repository {
	return &Repository{q: q}
}

// GetMany loads the records for keys in one query.
func (r *Repository) GetMany(ctx context.Context, keys []string) ([]dictionary.Record, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query, args, err := builder.Select(columns...).
		From("words").
		Where(squirrel.Eq{"word": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build words query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return records, nil
}

// InsertMany inserts records in a single transaction.
func (r *Repository) InsertMany(ctx context.Context, records []dictionary.Record) (_ []dictionary.Record, err error) {
	if len(records) == 0 {
		return nil, nil
	}

	insert := builder.Insert("words").Columns(insertColumns...)
	keys := make([]string, len(records))
	for i, rec := range records {
		meanings, err := json.Marshal(rec.Meanings)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal(%s meanings) > %w", rec.Word, err)
		}
		keys[i] = rec.Word
		insert = insert.Values(rec.Word, rec.Pronunciation, rec.Difficulty, string(meanings), string(rec.Origin), rec.UsageCount)
	}
	query, args, err := insert.Suffix("RETURNING " + strings.Join(columns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", dictionary.ErrStore, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	inserted, err := scanRecords(rows)
	if err != nil {
		return nil, mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %w", dictionary.ErrStore, err)
	}
	return orderByWords(inserted, keys), nil
}

// IncrementUsage bumps usage_count of every key by one in a single statement.
func (r *Repository) IncrementUsage(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := builder.Update("words").
		Set("usage_count", squirrel.Expr("usage_count + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"word": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build usage update query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// Stats aggregates counts over all stored words.
func (r *Repository) Stats(ctx context.Context) (dictionary.Stats, error) {
	var s dictionary.Stats
	if err := r.q.QueryRow(ctx, statsQuery).Scan(&s.TotalWords, &s.GeneratedWords, &s.ImportedWords, &s.ManualWords, &s.TotalUsage); err != nil {
		return dictionary.Stats{}, fmt.Errorf("load word stats: %w", err)
	}
	return s, nil
}

func scanRecords(rows pgx.Rows) ([]dictionary.Record, error) {
	defer rows.Close()

	var records []dictionary.Record
	for rows.Next() {
		var (
			rec      dictionary.Record
			meanings []byte
			origin   string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Word,
			&rec.Pronunciation,
			&rec.Difficulty,
			&meanings,
			&origin,
			&rec.UsageCount,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		if err := rec.Meanings.Scan(meanings); err != nil {
			return nil, fmt.Errorf("word %s: %w", rec.Word, err)
		}
		rec.Origin = dictionary.Origin(origin)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func orderByWords(records []dictionary.Record, keys []string) []dictionary.Record {
	byWord := make(map[string]dictionary.Record, len(records))
	for _, rec := range records {
		byWord[rec.Word] = rec
	}
	ordered := make([]dictionary.Record, 0, len(keys))
	for _, k := range keys {
		if rec, ok := byWord[k]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered
}

// mapError converts pgx errors into dictionary errors.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("insert words: %w: %w", dictionary.ErrDuplicateKey, err)
	}
	return fmt.Errorf("insert words: %w: %w", dictionary.ErrStore, err)
}
