package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store wraps the PostgreSQL connection pool.
type Store struct {
	db *sqlx.DB
}

// New connects to PostgreSQL and configures the pool.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, used for tests.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListIndustries returns all industries ordered by name.
func (s *Store) ListIndustries(ctx context.Context) ([]Industry, error) {
	var industries []Industry
	err := s.db.SelectContext(ctx, &industries,
		`SELECT id, name FROM industries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list industries: %w", err)
	}
	return industries, nil
}

// TermFilter narrows ListTerms. Nil fields are unconstrained.
type TermFilter struct {
	LevelID    *int64
	IndustryID *int64
}

// buildTermsQuery renders the filter into a query and its positional args.
func buildTermsQuery(f TermFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.LevelID != nil {
		args = append(args, *f.LevelID)
		conds = append(conds, fmt.Sprintf("level_id = $%d", len(args)))
	}
	if f.IndustryID != nil {
		args = append(args, *f.IndustryID)
		conds = append(conds, fmt.Sprintf("industry_id = $%d", len(args)))
	}

	query := `SELECT id, word, level_id, industry_id,
		definition_en, definition_es, definition_fr, definition_zh, created_at
		FROM terms`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY word"
	return query, args
}

// ListTerms returns terms matching the filter, ordered by word.
func (s *Store) ListTerms(ctx context.Context, f TermFilter) ([]Term, error) {
	query, args := buildTermsQuery(f)

	var terms []Term
	if err := s.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("store: list terms: %w", err)
	}
	return terms, nil
}

// GetTerm returns one term by ID, or ErrNotFound.
func (s *Store) GetTerm(ctx context.Context, id string) (*Term, error) {
	var term Term
	err := s.db.GetContext(ctx, &term,
		`SELECT id, word, level_id, industry_id,
		definition_en, definition_es, definition_fr, definition_zh, created_at
		FROM terms WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get term %s: %w", id, err)
	}
	return &term, nil
}

// ListTermRefs returns the id/partition projection of every term, for the
// random-selection index.
func (s *Store) ListTermRefs(ctx context.Context) ([]TermRef, error) {
	var refs []TermRef
	err := s.db.SelectContext(ctx, &refs,
		`SELECT id, industry_id, level_id FROM terms`)
	if err != nil {
		return nil, fmt.Errorf("store: list term refs: %w", err)
	}
	return refs, nil
}
