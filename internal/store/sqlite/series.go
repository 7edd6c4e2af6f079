package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
)

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// upsertSeriesTx resolves a series name to its id, creating the row if it
// does not exist. Matching is case-insensitive via the column collation.
func upsertSeriesTx(ctx context.Context, q execer, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM series WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query series: %w", err)
	}

	res, err := q.ExecContext(ctx, `INSERT INTO series (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert series: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpsertSeries resolves a series name to its id, creating it if needed.
func (s *Store) UpsertSeries(ctx context.Context, name string) (int64, error) {
	return upsertSeriesTx(ctx, s.db, name)
}

// SetBookSeries assigns a book to a series (created if missing) with an
// optional order within it.
func (s *Store) SetBookSeries(ctx context.Context, bookID int64, seriesName string, order *int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	seriesID, err := upsertSeriesTx(ctx, tx, seriesName)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE books SET series_id = ?, series_order = ? WHERE id = ?`,
		seriesID, nullIntPtr(order), bookID)
	if err != nil {
		return fmt.Errorf("update book series: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// ClearBookSeries detaches a book from its series. The order is cleared
// together with the series id; one is meaningless without the other.
func (s *Store) ClearBookSeries(ctx context.Context, bookID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET series_id = NULL, series_order = NULL WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("clear book series: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListSeries returns every series with its member titles ordered by their
// position in the series.
func (s *Store) ListSeries(ctx context.Context) ([]domain.SeriesWithBooks, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, b.title
		FROM series s
		LEFT JOIN books b ON b.series_id = s.id
		ORDER BY s.name, b.series_order`)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var (
		result []domain.SeriesWithBooks
		cur    *domain.SeriesWithBooks
	)
	for rows.Next() {
		var (
			id    int64
			name  string
			title sql.NullString
		)
		if err := rows.Scan(&id, &name, &title); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}

		if cur == nil || cur.ID != id {
			result = append(result, domain.SeriesWithBooks{ID: id, Name: name})
			cur = &result[len(result)-1]
		}
		if title.Valid {
			cur.Titles = append(cur.Titles, title.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}
