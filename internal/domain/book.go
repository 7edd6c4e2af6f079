// Package domain contains the core business entities for the BookDen library bot.
package domain

// Book represents a book row as persisted.
type Book struct {
	ID          int64
	Title       string
	Description string
	ISBN        string
	CoverImage  []byte
	BlurHash    string
	SeriesID    *int64
	SeriesOrder *int
}

// HasSeries reports whether the book belongs to a series.
func (b *Book) HasSeries() bool {
	return b.SeriesID != nil
}

// Author represents an author row. Authors are created lazily on first
// reference and never deleted, even when their last book is removed.
type Author struct {
	ID   int64
	Name string
}

// BookDetail is the denormalized view of a single book used for the
// book-info reply and the export report.
type BookDetail struct {
	ID          int64
	Title       string
	Description string
	ISBN        string
	Authors     []string
	SeriesName  string
	SeriesOrder *int
	HasCover    bool
	BlurHash    string
}

// BookSummary is a book row with its authors aggregated into a single
// comma-joined string, as produced by search and list queries.
type BookSummary struct {
	ID      int64
	Title   string
	Authors string
}

// UserBook pairs a book title with one user's reading status.
type UserBook struct {
	BookID int64
	Title  string
	Status ReadingStatus
}
