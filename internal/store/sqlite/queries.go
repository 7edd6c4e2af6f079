package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
)

// ListBookTitles returns every title ordered alphabetically. The wizard
// flows use this for numbered selection lists.
func (s *Store) ListBookTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM books ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return titles, nil
}

// querySummaries runs the shared books-with-aggregated-authors query.
func (s *Store) querySummaries(ctx context.Context) ([]domain.BookSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, GROUP_CONCAT(a.name, ', ') AS authors
		FROM books b
		LEFT JOIN book_authors ba ON b.id = ba.book_id
		LEFT JOIN authors a ON ba.author_id = a.id
		GROUP BY b.id, b.title
		ORDER BY b.title`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var result []domain.BookSummary
	for rows.Next() {
		var (
			b       domain.BookSummary
			authors sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Title, &authors); err != nil {
			return nil, fmt.Errorf("scan book summary: %w", err)
		}
		b.Authors = authors.String
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// ListBooks returns every book with its authors aggregated, ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]domain.BookSummary, error) {
	return s.querySummaries(ctx)
}

// SearchBooks returns books whose title or any linked author name contains
// the term, deduplicated by book and ordered by title. Matching is
// case-insensitive under full Unicode casefolding; SQLite's LIKE only
// folds ASCII, which breaks for Cyrillic titles.
func (s *Store) SearchBooks(ctx context.Context, term string) ([]domain.BookSummary, error) {
	summaries, err := s.querySummaries(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(term)

	var result []domain.BookSummary
	for _, b := range summaries {
		if strings.Contains(fold.String(b.Title), needle) {
			result = append(result, b)
			continue
		}
		// Author names never contain commas: they were split on commas
		// at input time.
		for _, name := range strings.Split(b.Authors, ", ") {
			if name != "" && strings.Contains(fold.String(name), needle) {
				result = append(result, b)
				break
			}
		}
	}
	return result, nil
}

// ListBooksWithCovers returns the titles of books that have a stored cover.
func (s *Store) ListBooksWithCovers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title FROM books WHERE cover_image IS NOT NULL ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query covers: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return titles, nil
}

const detailColumns = `
	b.id, b.title, b.description, b.isbn, b.series_order,
	b.cover_image IS NOT NULL, b.cover_blur_hash,
	s.name AS series_name,
	GROUP_CONCAT(a.name, ', ') AS authors`

func scanDetail(scanner interface{ Scan(dest ...any) error }) (*domain.BookDetail, error) {
	var d domain.BookDetail

	var (
		description sql.NullString
		isbn        sql.NullString
		seriesOrder sql.NullInt64
		blurHash    sql.NullString
		seriesName  sql.NullString
		authors     sql.NullString
	)

	err := scanner.Scan(
		&d.ID,
		&d.Title,
		&description,
		&isbn,
		&seriesOrder,
		&d.HasCover,
		&blurHash,
		&seriesName,
		&authors,
	)
	if err != nil {
		return nil, err
	}

	d.Description = description.String
	d.ISBN = isbn.String
	d.SeriesOrder = intPtr(seriesOrder)
	d.BlurHash = blurHash.String
	d.SeriesName = seriesName.String
	if authors.Valid && authors.String != "" {
		d.Authors = strings.Split(authors.String, ", ")
	}

	return &d, nil
}

// GetBookDetail returns the denormalized single-book view: title,
// description, isbn, series name and order, aggregated authors, and
// cover presence.
func (s *Store) GetBookDetail(ctx context.Context, bookID int64) (*domain.BookDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+detailColumns+`
		FROM books b
		LEFT JOIN series s ON b.series_id = s.id
		LEFT JOIN book_authors ba ON b.id = ba.book_id
		LEFT JOIN authors a ON ba.author_id = a.id
		WHERE b.id = ?
		GROUP BY b.id`, bookID)

	d, err := scanDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book detail: %w", err)
	}
	return d, nil
}

// ExportRows returns the per-book detail rows for the text export,
// ordered by title.
func (s *Store) ExportRows(ctx context.Context) ([]domain.BookDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+detailColumns+`
		FROM books b
		LEFT JOIN series s ON b.series_id = s.id
		LEFT JOIN book_authors ba ON b.id = ba.book_id
		LEFT JOIN authors a ON ba.author_id = a.id
		GROUP BY b.id
		ORDER BY b.title`)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	var result []domain.BookDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// ComputeStatistics aggregates library totals, the acting user's per-status
// counts, and the five most prolific authors and largest series. Orphaned
// authors and series are never garbage collected, so the raw totals count
// them; the top lists only surface linked ones by construction.
func (s *Store) ComputeStatistics(ctx context.Context, userID int64) (*domain.Statistics, error) {
	stats := &domain.Statistics{
		ByStatus: make(map[domain.ReadingStatus]int),
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM books`, &stats.TotalBooks},
		{`SELECT COUNT(*) FROM series`, &stats.TotalSeries},
		{`SELECT COUNT(*) FROM authors`, &stats.TotalAuthors},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count query: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM user_books
		WHERE user_id = ?
		GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[domain.ReadingStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	stats.TopAuthors, err = s.topCounts(ctx, `
		SELECT a.name, COUNT(ba.book_id) AS n
		FROM authors a
		JOIN book_authors ba ON a.id = ba.author_id
		GROUP BY a.id, a.name
		ORDER BY n DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}

	stats.TopSeries, err = s.topCounts(ctx, `
		SELECT s.name, COUNT(b.id) AS n
		FROM series s
		JOIN books b ON s.id = b.series_id
		GROUP BY s.id, s.name
		ORDER BY n DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) topCounts(ctx context.Context, query string) ([]domain.NameCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query top counts: %w", err)
	}
	defer rows.Close()

	var result []domain.NameCount
	for rows.Next() {
		var nc domain.NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("scan top count: %w", err)
		}
		result = append(result, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}
