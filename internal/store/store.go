// Package store persists article records in a SQLite file that is recreated every run.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mostviewed/internal/formatter"
	"mostviewed/internal/models"
)

// Store errors.
var (
	ErrInit   = errors.New("store: initialize")
	ErrInsert = errors.New("store: insert article")
	ErrQuery  = errors.New("store: query articles")
)

// TimeLayout is the TEXT encoding of time_fetched.
const TimeLayout = "2006-01-02 15:04:05"

const createTableSQL = `
CREATE TABLE articles (
	article_title TEXT,
	views_count INTEGER,
	last_editor TEXT,
	article_url TEXT,
	time_fetched TEXT,
	markdown TEXT
);
`

const insertSQL = `
INSERT INTO articles (article_title, views_count, last_editor, article_url, time_fetched, markdown)
VALUES (?, ?, ?, ?, ?, ?)
`

// rowid breaks view count ties in insertion order.
const rankedSQL = `
SELECT
	ROW_NUMBER() OVER (ORDER BY views_count DESC, rowid ASC) AS article_rank,
	article_title,
	views_count,
	last_editor,
	article_url,
	time_fetched
FROM articles
%s
ORDER BY article_rank
`

// Store opens a fresh connection for every operation. It holds no handle between calls.
type Store struct {
	now  func() time.Time
	path string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New records the database path. Nothing is opened until the first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		now:  time.Now,
		path: path,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", s.path, err)
	}

	return db, nil
}

// Initialize deletes any existing file at the path and creates an empty articles table.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", ErrInit, s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create directory: %w", ErrInit, err)
		}
	}

	db, err := s.open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("%w: create table: %w", ErrInit, err)
	}

	return nil
}

// Insert appends one record. A zero FetchedAt is stamped with the store clock.
func (s *Store) Insert(ctx context.Context, article *models.Article) error {
	if article.FetchedAt.IsZero() {
		article.FetchedAt = s.now().Local().Truncate(time.Second)
	}

	db, err := s.open()
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInsert, article.Title, err)
	}
	defer db.Close()

	var editor sql.NullString
	if article.LastEditor != nil {
		editor = sql.NullString{String: *article.LastEditor, Valid: true}
	}

	_, err = db.ExecContext(ctx, insertSQL,
		article.Title,
		article.ViewsCount,
		editor,
		article.URL,
		article.FetchedAt.Format(TimeLayout),
		article.Content,
	)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInsert, article.Title, err)
	}

	return nil
}

// Ranked returns every row whose title is not excluded, ranked by view count.
func (s *Store) Ranked(ctx context.Context, excluded []string) ([]models.RankedArticle, error) {
	where := ""
	args := make([]any, 0, len(excluded))

	if len(excluded) > 0 {
		marks := make([]string, len(excluded))
		for i, title := range excluded {
			marks[i] = "?"
			args = append(args, title)
		}

		where = "WHERE article_title NOT IN (" + strings.Join(marks, ", ") + ")"
	}

	db, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(rankedSQL, where), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	var ranked []models.RankedArticle

	for rows.Next() {
		var (
			r       models.RankedArticle
			editor  sql.NullString
			fetched sql.NullString
		)

		if err := rows.Scan(&r.Rank, &r.Title, &r.ViewsCount, &editor, &r.URL, &fetched); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}

		if editor.Valid {
			name := editor.String
			r.LastEditor = &name
		}

		if fetched.Valid && fetched.String != "" {
			ts, err := time.ParseInLocation(TimeLayout, fetched.String, time.Local)
			if err != nil {
				return nil, fmt.Errorf("%w: time_fetched %q: %w", ErrQuery, fetched.String, err)
			}

			r.FetchedAt = ts
		}

		r.ViewsFormatted = formatter.FormatViews(r.ViewsCount)
		ranked = append(ranked, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	return ranked, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	db, err := s.open()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrQuery, err)
	}

	return n, nil
}

// Markdown returns the stored content for title, or sql.ErrNoRows wrapped in ErrQuery.
func (s *Store) Markdown(ctx context.Context, title string) (string, error) {
	db, err := s.open()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer db.Close()

	var md sql.NullString

	err = db.QueryRowContext(ctx, "SELECT markdown FROM articles WHERE article_title = ? ORDER BY rowid LIMIT 1", title).Scan(&md)
	if err != nil {
		return "", fmt.Errorf("%w: markdown for %q: %w", ErrQuery, title, err)
	}

	return md.String, nil
}
