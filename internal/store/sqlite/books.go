package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, description, cover_image, cover_blur_hash, isbn, series_id, series_order`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		description sql.NullString
		blurHash    sql.NullString
		isbn        sql.NullString
		seriesID    sql.NullInt64
		seriesOrder sql.NullInt64
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&description,
		&b.CoverImage,
		&blurHash,
		&isbn,
		&seriesID,
		&seriesOrder,
	)
	if err != nil {
		return nil, err
	}

	b.Description = description.String
	b.BlurHash = blurHash.String
	b.ISBN = isbn.String
	b.SeriesID = int64Ptr(seriesID)
	b.SeriesOrder = intPtr(seriesOrder)

	return &b, nil
}

// FindBookByTitle returns the book with the exact title, or ErrNotFound.
// Title matching is deliberately case-sensitive, unlike series names.
func (s *Store) FindBookByTitle(ctx context.Context, title string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE title = ?`, title)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("book %q not found", title))
	}
	if err != nil {
		return nil, fmt.Errorf("query book by title: %w", err)
	}
	return b, nil
}

// GetBook returns the book with the given id, or ErrNotFound.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return b, nil
}

// CreateBook commits a finished draft in a single transaction: uniqueness
// check, book insert, series resolution, author upsert and linking.
// Returns ErrAlreadyExists without writing anything when the title is taken.
func (s *Store) CreateBook(ctx context.Context, draft *domain.BookDraft) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM books WHERE title = ?`, draft.Title).Scan(&existing)
	if err == nil {
		return 0, store.ErrAlreadyExists.WithMessage(fmt.Sprintf("book %q already exists", draft.Title))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check title: %w", err)
	}

	var seriesID sql.NullInt64
	var seriesOrder sql.NullInt64
	if draft.SeriesName != "" {
		id, err := upsertSeriesTx(ctx, tx, draft.SeriesName)
		if err != nil {
			return 0, err
		}
		seriesID = sql.NullInt64{Int64: id, Valid: true}
		seriesOrder = nullIntPtr(draft.SeriesOrder)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO books (title, description, cover_image, cover_blur_hash, isbn, series_id, series_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		draft.Title,
		nullString(draft.Description),
		draft.CoverImage,
		nullString(draft.BlurHash),
		nullString(draft.ISBN),
		seriesID,
		seriesOrder,
	)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}

	bookID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := linkAuthorsTx(ctx, tx, bookID, draft.Authors); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return bookID, nil
}

// DeleteBookCascade removes the user statuses, author links, and finally
// the book row itself, as one transaction.
func (s *Store) DeleteBookCascade(ctx context.Context, bookID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_books WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete user_books: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_authors: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// SetBookDescription updates the description of a single book.
func (s *Store) SetBookDescription(ctx context.Context, bookID int64, description string) error {
	return s.updateBookField(ctx, bookID,
		`UPDATE books SET description = ? WHERE id = ?`, nullString(description))
}

// SetBookISBN updates the ISBN of a single book. An empty string clears it.
func (s *Store) SetBookISBN(ctx context.Context, bookID int64, isbn string) error {
	return s.updateBookField(ctx, bookID,
		`UPDATE books SET isbn = ? WHERE id = ?`, nullString(isbn))
}

func (s *Store) updateBookField(ctx context.Context, bookID int64, query string, value any) error {
	res, err := s.db.ExecContext(ctx, query, value, bookID)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
