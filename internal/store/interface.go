package store

import (
	"context"

	"github.com/bookdenapp/bookden-bot/internal/domain"
)

// Store defines the interface for all persistence operations. It is the
// only component with write access to the library; the wizard flows and
// query handlers all go through it.
type Store interface {
	// Lifecycle
	Close() error

	// Books
	FindBookByTitle(ctx context.Context, title string) (*domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	// CreateBook commits a finished draft: title-uniqueness check, book
	// insert, author upsert and linking, all in one transaction. Returns
	// ErrAlreadyExists without writing anything when the title is taken.
	CreateBook(ctx context.Context, draft *domain.BookDraft) (int64, error)
	DeleteBookCascade(ctx context.Context, bookID int64) error

	// Single-field edits
	SetBookDescription(ctx context.Context, bookID int64, description string) error
	SetBookISBN(ctx context.Context, bookID int64, isbn string) error
	ReplaceBookAuthors(ctx context.Context, bookID int64, authorNames []string) error
	SetBookSeries(ctx context.Context, bookID int64, seriesName string, order *int) error
	ClearBookSeries(ctx context.Context, bookID int64) error

	// Series and authors
	UpsertSeries(ctx context.Context, name string) (int64, error)
	UpsertAuthor(ctx context.Context, name string) (int64, error)
	LinkBookAuthors(ctx context.Context, bookID int64, authorNames []string) error

	// Reading status
	UpsertUserStatus(ctx context.Context, userID int64, bookID int64, status domain.ReadingStatus) error
	GetUserStatus(ctx context.Context, userID int64, bookID int64) (domain.ReadingStatus, error)

	// Queries
	ListBookTitles(ctx context.Context) ([]string, error)
	ListBooks(ctx context.Context) ([]domain.BookSummary, error)
	SearchBooks(ctx context.Context, term string) ([]domain.BookSummary, error)
	ListSeries(ctx context.Context) ([]domain.SeriesWithBooks, error)
	ListUserBooks(ctx context.Context, userID int64) ([]domain.UserBook, error)
	ListBooksWithCovers(ctx context.Context) ([]string, error)
	GetBookDetail(ctx context.Context, bookID int64) (*domain.BookDetail, error)
	ComputeStatistics(ctx context.Context, userID int64) (*domain.Statistics, error)
	ExportRows(ctx context.Context) ([]domain.BookDetail, error)
}
