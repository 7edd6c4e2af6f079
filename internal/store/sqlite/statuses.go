package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
)

// UpsertUserStatus inserts or replaces one user's status for one book.
// Last write wins on the (user_id, book_id) composite key.
func (s *Store) UpsertUserStatus(ctx context.Context, userID, bookID int64, status domain.ReadingStatus) error {
	// The schema CHECK would reject this too; validating here keeps the
	// error typed instead of a bare constraint failure.
	if !status.Valid() {
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid reading status %q", status))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_books (user_id, book_id, status)
		VALUES (?, ?, ?)`,
		userID, bookID, string(status))
	if err != nil {
		return fmt.Errorf("upsert user status: %w", err)
	}
	return nil
}

// GetUserStatus returns a user's status for a book, or ErrNotFound when
// the user has never set one.
func (s *Store) GetUserStatus(ctx context.Context, userID, bookID int64) (domain.ReadingStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM user_books WHERE user_id = ? AND book_id = ?`,
		userID, bookID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user status: %w", err)
	}
	return domain.ReadingStatus(status), nil
}

// ListUserBooks returns the user's books joined with their statuses,
// ordered by title.
func (s *Store) ListUserBooks(ctx context.Context, userID int64) ([]domain.UserBook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, ub.status
		FROM books b
		JOIN user_books ub ON b.id = ub.book_id
		WHERE ub.user_id = ?
		ORDER BY b.title`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user books: %w", err)
	}
	defer rows.Close()

	var result []domain.UserBook
	for rows.Next() {
		var (
			ub     domain.UserBook
			status string
		)
		if err := rows.Scan(&ub.BookID, &ub.Title, &status); err != nil {
			return nil, fmt.Errorf("scan user book: %w", err)
		}
		ub.Status = domain.ReadingStatus(status)
		result = append(result, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}
