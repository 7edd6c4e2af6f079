package sqlite

import (
	"context"
	"fmt"
)

// linkAuthorsTx upserts each author by exact name and links it to the book.
// INSERT OR IGNORE on both statements makes the whole operation idempotent:
// re-linking an existing author never duplicates rows.
func linkAuthorsTx(ctx context.Context, q execer, bookID int64, authorNames []string) error {
	for _, name := range authorNames {
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO authors (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("insert author: %w", err)
		}

		var authorID int64
		if err := q.QueryRowContext(ctx,
			`SELECT id FROM authors WHERE name = ?`, name).Scan(&authorID); err != nil {
			return fmt.Errorf("query author: %w", err)
		}

		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO book_authors (book_id, author_id) VALUES (?, ?)`,
			bookID, authorID); err != nil {
			return fmt.Errorf("insert book_author: %w", err)
		}
	}
	return nil
}

// UpsertAuthor resolves an author name to its id, creating it if needed.
func (s *Store) UpsertAuthor(ctx context.Context, name string) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO authors (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("insert author: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM authors WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("query author: %w", err)
	}
	return id, nil
}

// LinkBookAuthors creates any missing authors and links them all to the
// book. Existing links are not duplicated.
func (s *Store) LinkBookAuthors(ctx context.Context, bookID int64, authorNames []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := linkAuthorsTx(ctx, tx, bookID, authorNames); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceBookAuthors replaces the full author set of a book in a single
// transaction. Previous authors stay in the authors table even when no
// longer linked to anything.
func (s *Store) ReplaceBookAuthors(ctx context.Context, bookID int64, authorNames []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM book_authors WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_authors: %w", err)
	}

	if err := linkAuthorsTx(ctx, tx, bookID, authorNames); err != nil {
		return err
	}
	return tx.Commit()
}
