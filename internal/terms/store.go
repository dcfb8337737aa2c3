// Package terms persists the Terminology Library in Postgres.
package terms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fireaid/internal/models"
)

var (
	ErrMissingField       = errors.New("MISSING_FIELD")
	ErrQueryExecutionFail = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout       = errors.New("QUERY_TIMEOUT")
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS terms (
		id          BIGSERIAL PRIMARY KEY,
		term        TEXT NOT NULL,
		definition  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const (
	listQuery = `
		SELECT id, term, definition, created_at
		FROM terms
		ORDER BY term ASC`

	searchQuery = `
		SELECT id, term, definition, created_at
		FROM terms
		WHERE term ILIKE $1
		ORDER BY term ASC
		LIMIT $2`

	insertQuery = `
		INSERT INTO terms (term, definition)
		VALUES ($1, $2)
		RETURNING id, created_at`
)

const DefaultSearchLimit = 25

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the terms table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return s.wrap(ctx, err)
	}
	return nil
}

// List returns every term ordered alphabetically.
func (s *Store) List(ctx context.Context) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, s.wrap(ctx, err)
	}
	return s.scan(ctx, rows)
}

// Search matches q case-insensitively as a substring of the term.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]models.Term, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q", ErrMissingField)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := s.db.QueryContext(ctx, searchQuery, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, s.wrap(ctx, err)
	}
	return s.scan(ctx, rows)
}

// Add inserts a term. Both fields are trimmed and required.
func (s *Store) Add(ctx context.Context, term, definition string) (*models.Term, error) {
	term = strings.TrimSpace(term)
	definition = strings.TrimSpace(definition)
	if term == "" {
		return nil, fmt.Errorf("%w: term", ErrMissingField)
	}
	if definition == "" {
		return nil, fmt.Errorf("%w: definition", ErrMissingField)
	}

	t := &models.Term{Term: term, Definition: definition}
	if err := s.db.QueryRowContext(ctx, insertQuery, term, definition).Scan(&t.ID, &t.CreatedAt); err != nil {
		return nil, s.wrap(ctx, err)
	}
	return t, nil
}

func (s *Store) scan(ctx context.Context, rows *sql.Rows) ([]models.Term, error) {
	defer rows.Close()

	results := []models.Term{}
	for rows.Next() {
		var t models.Term
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.Term, &t.Definition, &createdAt); err != nil {
			return nil, s.wrap(ctx, err)
		}
		t.CreatedAt = createdAt.UTC()
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, err)
	}
	return results, nil
}

func (s *Store) wrap(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrQueryTimeout
	}
	return fmt.Errorf("%w: %v", ErrQueryExecutionFail, err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
